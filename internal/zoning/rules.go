// Package zoning is the pure computation engine behind feasibility reports:
// per-lot FAR resolution, assemblage density caps, cross-lot consistency,
// and contamination risk. Nothing in this package performs I/O; the
// derivation rules (FAR table, DUF constants, profile normalization) are
// supplied as configuration.
package zoning

import (
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules holds the configurable derivation rules. Values absent from a loaded
// rules file fall back to the defaults.
type Rules struct {
	// FarTable maps a zoning district code to its tabulated maximum FAR.
	FarTable map[string]float64 `yaml:"far_table"`

	// DufDivisor is the dwelling unit factor in sq ft per unit.
	DufDivisor float64 `yaml:"duf_divisor"`

	// RoundUpThreshold is the fractional remainder at or above which a
	// unit count rounds up instead of down.
	RoundUpThreshold float64 `yaml:"round_up_threshold"`

	// MultipleDwellingClasses lists building-class prefixes treated as
	// multiple dwellings for DUF applicability.
	MultipleDwellingClasses []string `yaml:"multiple_dwelling_classes"`

	// ProfilePattern is a regex whose first capture group is the
	// normalized district profile (e.g. R7-2 -> R7).
	ProfilePattern string `yaml:"profile_pattern"`

	profileRe *regexp.Regexp
}

const (
	defaultDufDivisor       = 680.0
	defaultRoundUpThreshold = 0.75
	defaultProfilePattern   = `^([A-Z]+\d+)`
)

// DefaultRules returns the built-in derivation rules.
func DefaultRules() *Rules {
	r := &Rules{
		FarTable: map[string]float64{
			"R1-2": 0.5, "R2": 0.5, "R3-1": 0.5, "R3-2": 0.5,
			"R4": 0.75, "R4A": 0.75, "R5": 1.25, "R5B": 1.35,
			"R6": 2.43, "R6A": 3.0, "R6B": 2.0,
			"R7-1": 3.44, "R7-2": 3.44, "R7A": 4.0, "R7B": 3.0, "R7X": 5.0,
			"R8": 6.02, "R8A": 6.02, "R8B": 4.0, "R8X": 6.02,
			"R9": 7.52, "R9A": 7.52, "R10": 10.0, "R10A": 10.0,
			"C1-6": 2.0, "C1-7": 2.0, "C2-6": 2.0, "C4-2": 3.4,
			"C4-4": 3.4, "C4-5": 3.4, "C5-1": 4.0, "C6-1": 6.0,
			"C6-2": 6.0, "C6-4": 10.0,
			"M1-1": 1.0, "M1-2": 2.0, "M1-4": 2.0, "M1-5": 5.0,
			"M2-1": 2.0, "M3-1": 2.0,
		},
		DufDivisor:              defaultDufDivisor,
		RoundUpThreshold:        defaultRoundUpThreshold,
		MultipleDwellingClasses: []string{"C", "D"},
		ProfilePattern:          defaultProfilePattern,
	}
	r.profileRe = regexp.MustCompile(r.ProfilePattern)
	return r
}

// LoadRules reads a yaml rules file and overlays it on the defaults.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "zoning: read rules file")
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, eris.Wrap(err, "zoning: parse rules file")
	}

	r := DefaultRules()
	if len(loaded.FarTable) > 0 {
		r.FarTable = loaded.FarTable
	}
	if loaded.DufDivisor > 0 {
		r.DufDivisor = loaded.DufDivisor
	}
	if loaded.RoundUpThreshold > 0 {
		r.RoundUpThreshold = loaded.RoundUpThreshold
	}
	if len(loaded.MultipleDwellingClasses) > 0 {
		r.MultipleDwellingClasses = loaded.MultipleDwellingClasses
	}
	if loaded.ProfilePattern != "" {
		re, reErr := regexp.Compile(loaded.ProfilePattern)
		if reErr != nil {
			return nil, eris.Wrap(reErr, "zoning: compile profile pattern")
		}
		r.ProfilePattern = loaded.ProfilePattern
		r.profileRe = re
	}
	return r, nil
}

// TabulatedFar returns the tabulated maximum FAR for a district, or nil when
// the district is not in the table.
func (r *Rules) TabulatedFar(district string) *float64 {
	district = strings.ToUpper(strings.TrimSpace(district))
	if district == "" {
		return nil
	}
	if far, ok := r.FarTable[district]; ok {
		return &far
	}
	return nil
}

// NormalizeDistrict maps a district code to its normalized profile
// (e.g. R7-2 -> R7, R7A -> R7). Unmatched codes normalize to themselves.
func (r *Rules) NormalizeDistrict(district string) string {
	district = strings.ToUpper(strings.TrimSpace(district))
	if district == "" {
		return ""
	}
	if m := r.profileRe.FindStringSubmatch(district); len(m) > 1 {
		return m[1]
	}
	return district
}

// IsMultipleDwelling reports whether a building class counts as a multiple
// dwelling under the configured class prefixes.
func (r *Rules) IsMultipleDwelling(buildingClass string) bool {
	buildingClass = strings.ToUpper(strings.TrimSpace(buildingClass))
	if buildingClass == "" {
		return false
	}
	for _, prefix := range r.MultipleDwellingClasses {
		if strings.HasPrefix(buildingClass, strings.ToUpper(prefix)) {
			return true
		}
	}
	return false
}

// RoundUnits applies the configured rounding rule to a raw unit count:
// a fractional remainder at or above the threshold rounds up, else down.
func (r *Rules) RoundUnits(raw float64) int {
	if raw <= 0 {
		return 0
	}
	whole := math.Floor(raw)
	if raw-whole >= r.RoundUpThreshold {
		return int(whole) + 1
	}
	return int(whole)
}
