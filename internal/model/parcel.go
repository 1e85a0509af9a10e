package model

import "encoding/json"

// GeoLookup is the typed payload of the geoservice provider: address
// normalization plus the BBL parcel key and coordinates.
type GeoLookup struct {
	BBL               string   `json:"bbl"`
	NormalizedAddress string   `json:"normalized_address"`
	Borough           string   `json:"borough,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
}

// ParcelAttributes is the typed payload of the zola provider: the raw zoning
// and tax-lot attributes the computation engine consumes. Slices keep the
// provider's ordering; ZoningDistricts lists the primary district first.
type ParcelAttributes struct {
	BBL              string   `json:"bbl"`
	Block            string   `json:"block,omitempty"`
	Lot              string   `json:"lot,omitempty"`
	ZoningDistricts  []string `json:"zoning_districts,omitempty"`
	Overlays         []string `json:"overlays,omitempty"`
	SpecialDistricts []string `json:"special_districts,omitempty"`
	// LandmarkRaw is passed through untyped; providers return booleans,
	// 0/1 numerics, and free-form strings for the same field.
	LandmarkRaw      any      `json:"landmark,omitempty"`
	HistoricDistrict string   `json:"historic_district,omitempty"`
	LotAreaSqft      *float64 `json:"lot_area_sqft,omitempty"`
	BuildingClass    string   `json:"building_class,omitempty"`
	LandUse          string   `json:"land_use,omitempty"`
	ResidentialUnits int      `json:"residential_units,omitempty"`
	// Footprint is the parcel geometry as GeoJSON, when the provider
	// returns one. Used as a lot-area fallback.
	Footprint json.RawMessage `json:"footprint,omitempty"`
}

// PrimaryDistrict returns the lot's primary zoning district, or "".
func (p *ParcelAttributes) PrimaryDistrict() string {
	if p == nil || len(p.ZoningDistricts) == 0 {
		return ""
	}
	return p.ZoningDistricts[0]
}

// SecondaryDistricts returns any districts beyond the primary.
func (p *ParcelAttributes) SecondaryDistricts() []string {
	if p == nil || len(p.ZoningDistricts) < 2 {
		return nil
	}
	return p.ZoningDistricts[1:]
}

// LotContext is the transient in-memory state for one address within a
// report. Parcel is nil when the non-critical zola stage failed for the lot.
type LotContext struct {
	ChildIndex int               `json:"child_index"`
	Address    string            `json:"address"`
	Geo        *GeoLookup        `json:"geo,omitempty"`
	Parcel     *ParcelAttributes `json:"parcel,omitempty"`
}
