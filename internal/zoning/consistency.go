package zoning

import "github.com/sells-group/zoning-cli/internal/model"

// EvaluateConsistency checks whether N lots form a coherent assemblage:
// shared primary district, shared normalized zoning profile, shared tax
// block. Lot order follows the input slice; a nil entry means parcel data
// is missing for that lot. Pure function, no I/O.
//
// Confidence is decided by the first matching row:
//
//	any lot missing a primary district            -> low, review
//	same primary, no overlays/specials/secondary  -> high, no review
//	same normalized profile or overlays/specials  -> medium, review
//	otherwise                                     -> low, review
func EvaluateConsistency(rules *Rules, lots []*model.ParcelAttributes) model.ConsistencySummary {
	summary := model.ConsistencySummary{
		Lots: make([]model.LotZoningProfile, 0, len(lots)),
	}

	var (
		missingPrimary bool
		anySecondary   bool
		missingBlock   bool
	)

	for i, p := range lots {
		profile := model.LotZoningProfile{ChildIndex: i}
		if p != nil {
			profile.BBL = p.BBL
			profile.PrimaryDistrict = p.PrimaryDistrict()
			profile.NormalizedProfile = rules.NormalizeDistrict(p.PrimaryDistrict())
			profile.Overlays = p.Overlays
			profile.SpecialDistricts = p.SpecialDistricts
			profile.Block = p.Block
			profile.Lot = p.Lot

			if len(p.Overlays) > 0 {
				summary.AnyOverlay = true
			}
			if len(p.SpecialDistricts) > 0 {
				summary.AnySpecialDistrict = true
			}
			if len(p.SecondaryDistricts()) > 0 {
				anySecondary = true
			}
		}
		if profile.PrimaryDistrict == "" {
			missingPrimary = true
		}
		if profile.Block == "" {
			missingBlock = true
		}
		summary.Lots = append(summary.Lots, profile)
	}

	summary.SamePrimaryDistrict = !missingPrimary && allEqual(summary.Lots, func(l model.LotZoningProfile) string { return l.PrimaryDistrict })
	summary.SameNormalizedProfile = !missingPrimary && allEqual(summary.Lots, func(l model.LotZoningProfile) string { return l.NormalizedProfile })
	summary.SameBlock = !missingBlock && allEqual(summary.Lots, func(l model.LotZoningProfile) string { return l.Block })

	switch {
	case missingPrimary:
		summary.Confidence = model.ConfidenceLow
		summary.RequiresManualReview = true
	case summary.SamePrimaryDistrict && !summary.AnyOverlay && !summary.AnySpecialDistrict && !anySecondary:
		summary.Confidence = model.ConfidenceHigh
	case (summary.SameNormalizedProfile && !summary.SamePrimaryDistrict) || summary.AnyOverlay || summary.AnySpecialDistrict:
		summary.Confidence = model.ConfidenceMedium
		summary.RequiresManualReview = true
	default:
		summary.Confidence = model.ConfidenceLow
		summary.RequiresManualReview = true
	}

	return summary
}

// allEqual reports whether key() returns the same non-ambiguous value for
// every lot. An empty slice is not considered consistent.
func allEqual(lots []model.LotZoningProfile, key func(model.LotZoningProfile) string) bool {
	if len(lots) == 0 {
		return false
	}
	first := key(lots[0])
	for _, l := range lots[1:] {
		if key(l) != first {
			return false
		}
	}
	return true
}
