package zoning

import "github.com/sells-group/zoning-cli/internal/model"

// DensityLot is one lot's input to the assemblage density computation.
// Parcel is nil when parcel data is missing for the lot.
type DensityLot struct {
	ChildIndex int
	BBL        string
	Parcel     *model.ParcelAttributes
	Far        model.FarCandidate
}

// ComputeDensity derives the assemblage dwelling-unit cap under the DUF and
// wraps it as exactly two scenarios (duf_applies, duf_not_applicable) so the
// consumer can toggle between standard and affordable/senior/conversion
// treatment without re-querying. Exactly one scenario is marked Default.
//
// combined_area_then_duf sums buildable residential area across lots before
// applying the divisor once; it is used only when the assemblage FAR method
// is shared_district, no lot requires manual review, no lot carries an
// overlay or special district, and no lot has missing inputs. Every other
// case uses per_lot_duf_sum and is flagged for manual review.
func ComputeDensity(rules *Rules, lots []DensityLot, assemblageFarMethod string) []model.DensityCandidate {
	var (
		anyReview         bool
		anyOverlaySpecial bool
		anyMissing        bool
		anyGoverned       bool
	)

	perLot := make([]model.LotDensity, 0, len(lots))
	for _, lot := range lots {
		ld := model.LotDensity{
			ChildIndex:    lot.ChildIndex,
			BBL:           lot.BBL,
			BuildableSqft: lot.Far.LotBuildableSqft,
		}

		if lot.Far.RequiresManualReview {
			anyReview = true
		}

		if lot.Parcel == nil {
			anyMissing = true
			ld.ExclusionReason = "parcel_data_missing"
			perLot = append(perLot, ld)
			continue
		}
		if len(lot.Parcel.Overlays) > 0 || len(lot.Parcel.SpecialDistricts) > 0 {
			anyOverlaySpecial = true
		}

		ld.DufGoverned = dufGoverned(rules, lot.Parcel)
		if !ld.DufGoverned {
			ld.ExclusionReason = "not_duf_governed"
		} else if lot.Far.LotBuildableSqft == nil {
			anyMissing = true
			ld.ExclusionReason = "buildable_area_unknown"
		} else {
			anyGoverned = true
		}
		if lot.Far.LotBuildableSqft == nil {
			anyMissing = true
		}
		perLot = append(perLot, ld)
	}

	useCombined := assemblageFarMethod == model.AssemblageFarSharedDistrict &&
		!anyReview && !anyOverlaySpecial && !anyMissing

	applies := model.DensityCandidate{
		Scenario: model.ScenarioDufApplies,
		PerLot:   perLot,
	}

	if useCombined {
		applies.Method = model.DensityMethodCombinedArea
		var total float64
		for i, ld := range perLot {
			if !ld.DufGoverned || ld.BuildableSqft == nil {
				continue
			}
			total += *ld.BuildableSqft
			units := rules.RoundUnits(*ld.BuildableSqft / rules.DufDivisor)
			perLot[i].Units = &units
		}
		if total > 0 {
			applies.UnitCap = nonZero(rules.RoundUnits(total / rules.DufDivisor))
		}
	} else {
		applies.Method = model.DensityMethodPerLotSum
		applies.RequiresManualReview = true
		var sum int
		var counted bool
		for i, ld := range perLot {
			if !ld.DufGoverned || ld.BuildableSqft == nil {
				continue
			}
			units := rules.RoundUnits(*ld.BuildableSqft / rules.DufDivisor)
			perLot[i].Units = &units
			sum += units
			counted = true
		}
		if counted {
			applies.UnitCap = nonZero(sum)
		}
	}

	// The alternate scenario carries its own copy of the breakdown with no
	// cap and no per-lot units: under affordable/senior/conversion treatment
	// the DUF does not govern, so DUF-derived counts must not appear.
	naPerLot := make([]model.LotDensity, len(perLot))
	copy(naPerLot, perLot)
	for i := range naPerLot {
		naPerLot[i].Units = nil
	}
	notApplicable := model.DensityCandidate{
		Scenario: model.ScenarioDufNotApplicable,
		Method:   model.DensityMethodNotApplicable,
		PerLot:   naPerLot,
	}

	if anyGoverned {
		applies.Default = true
	} else {
		notApplicable.Default = true
	}

	return []model.DensityCandidate{applies, notApplicable}
}

// dufGoverned reports whether a lot counts toward DUF-governed housing:
// a multiple-dwelling building class, or more than two residential units.
func dufGoverned(rules *Rules, p *model.ParcelAttributes) bool {
	return rules.IsMultipleDwelling(p.BuildingClass) || p.ResidentialUnits > 2
}

// nonZero reports a unit cap, mapping a computed zero to nil so an
// all-excluded assemblage never shows a misleading cap of 0.
func nonZero(units int) *int {
	if units <= 0 {
		return nil
	}
	return &units
}
