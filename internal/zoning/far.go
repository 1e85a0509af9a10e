package zoning

import (
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/zoning-cli/internal/model"
)

// ResolveFar derives the controlling FAR for one lot from its raw zoning
// attributes. A single-district lot takes that district's tabulated maximum.
// When multiple districts apply, the controlling FAR is the minimum of the
// candidates and the result is flagged for manual review, since the
// applicable portion geometry needs a human to confirm.
func ResolveFar(rules *Rules, p *model.ParcelAttributes) model.FarCandidate {
	if p == nil || len(p.ZoningDistricts) == 0 {
		return model.FarCandidate{
			FarMethod:            model.FarMethodUnknown,
			RequiresManualReview: true,
		}
	}

	candidates := make([]model.DistrictFar, 0, len(p.ZoningDistricts))
	for _, d := range p.ZoningDistricts {
		candidates = append(candidates, model.DistrictFar{
			District: d,
			MaxFar:   rules.TabulatedFar(d),
		})
	}

	fc := model.FarCandidate{
		FarCandidates:   candidates,
		ZoningDistricts: append([]string(nil), p.ZoningDistricts...),
	}

	if len(candidates) == 1 {
		fc.MaxFar = candidates[0].MaxFar
		if fc.MaxFar == nil {
			fc.FarMethod = model.FarMethodUnknown
			fc.RequiresManualReview = true
		} else {
			fc.FarMethod = model.FarMethodSingleDistrict
		}
	} else {
		// Conservative choice: the minimum of the known candidates.
		var min *float64
		for _, c := range candidates {
			if c.MaxFar == nil {
				continue
			}
			if min == nil || *c.MaxFar < *min {
				v := *c.MaxFar
				min = &v
			}
		}
		fc.MaxFar = min
		if min == nil {
			fc.FarMethod = model.FarMethodUnknown
		} else {
			fc.FarMethod = model.FarMethodMultiDistrictMin
		}
		fc.RequiresManualReview = true
	}

	if area, _ := LotArea(p); area != nil && fc.MaxFar != nil {
		buildable := *fc.MaxFar * *area
		fc.LotBuildableSqft = &buildable
	}

	return fc
}

// LotArea returns the usable lot area in sq ft, preferring the provider's
// tabulated lot area and falling back to the planar area of the parcel
// footprint. Footprints are expected in a projected, foot-based coordinate
// system (EPSG:2263 for the source data). The second return reports whether
// the value was derived from geometry.
func LotArea(p *model.ParcelAttributes) (*float64, bool) {
	if p == nil {
		return nil, false
	}
	if p.LotAreaSqft != nil && *p.LotAreaSqft > 0 {
		return p.LotAreaSqft, false
	}
	if len(p.Footprint) == 0 {
		return nil, false
	}

	var g geom.T
	if err := geojson.Unmarshal(p.Footprint, &g); err != nil {
		return nil, false
	}

	var area float64
	switch shape := g.(type) {
	case *geom.Polygon:
		area = shape.Area()
	case *geom.MultiPolygon:
		area = shape.Area()
	default:
		return nil, false
	}

	if area <= 0 {
		return nil, false
	}
	return &area, true
}
