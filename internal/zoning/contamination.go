package zoning

import (
	"strings"

	"github.com/sells-group/zoning-cli/internal/model"
)

// advisoryNotes is boilerplate attached to every contamination summary.
// Static text, not derived from inputs.
var advisoryNotes = []string{
	"Landmark and historic-district status can change; confirm with the Landmarks Preservation Commission before filing.",
	"Special-district and overlay requirements may impose use, bulk, or design controls beyond the base district.",
	"This screen covers zoning-layer exposure only; it is not an environmental site assessment.",
}

// EvaluateContamination screens N lots for landmark, historic-district,
// special-district, and overlay exposure. A nil entry means parcel data is
// missing for that lot. Pure function, no I/O.
func EvaluateContamination(lots []*model.ParcelAttributes) model.ContaminationSummary {
	summary := model.ContaminationSummary{
		Lots:          make([]model.LotRisk, 0, len(lots)),
		AdvisoryNotes: advisoryNotes,
	}

	var (
		missingCount    int
		sparseData      bool
		anyUnrecognized bool
	)

	for i, p := range lots {
		risk := model.LotRisk{ChildIndex: i}
		if p == nil {
			risk.DataMissing = true
			missingCount++
			summary.Lots = append(summary.Lots, risk)
			continue
		}

		risk.BBL = p.BBL
		risk.Landmarked = NormalizeLandmark(p.LandmarkRaw)
		risk.HistoricDistrict = p.HistoricDistrict
		risk.SpecialDistricts = p.SpecialDistricts
		risk.Overlays = p.Overlays

		if risk.Landmarked == nil && !isEmptyLandmark(p.LandmarkRaw) {
			risk.LandmarkUnrecognized = true
			anyUnrecognized = true
		}

		if risk.Landmarked != nil && *risk.Landmarked {
			summary.AnyLandmark = true
		}
		if p.HistoricDistrict != "" {
			summary.AnyHistoricDistrict = true
		}
		if len(p.SpecialDistricts) > 0 {
			summary.AnySpecialDistrict = true
		}
		if len(p.Overlays) > 0 {
			summary.AnyOverlay = true
		}

		// A lot with data present but none of the key risk fields
		// populated gives no basis for a clean reading.
		if isEmptyLandmark(p.LandmarkRaw) && p.HistoricDistrict == "" &&
			len(p.SpecialDistricts) == 0 && len(p.Overlays) == 0 &&
			len(p.ZoningDistricts) == 0 {
			sparseData = true
		}

		summary.Lots = append(summary.Lots, risk)
	}

	switch {
	case summary.AnyLandmark:
		summary.RiskLevel = model.RiskHigh
	case summary.AnyHistoricDistrict || summary.AnySpecialDistrict || summary.AnyOverlay:
		summary.RiskLevel = model.RiskModerate
	default:
		summary.RiskLevel = model.RiskNone
	}

	switch {
	case missingCount >= 2 || (len(lots) > 0 && missingCount == len(lots)):
		summary.Confidence = model.ConfidenceLow
	case missingCount == 1 || sparseData || anyUnrecognized:
		summary.Confidence = model.ConfidenceMedium
	default:
		summary.Confidence = model.ConfidenceHigh
	}

	summary.RequiresManualReview = summary.RiskLevel != model.RiskNone ||
		summary.Confidence != model.ConfidenceHigh

	return summary
}

// NormalizeLandmark parses the landmark flag as returned by providers:
// booleans, 0/1 numerics, and case-insensitive strings. An unrecognized
// non-empty value yields nil, which lowers confidence but is never treated
// as flagged.
func NormalizeLandmark(raw any) *bool {
	switch v := raw.(type) {
	case nil:
		return boolPtr(false)
	case bool:
		return boolPtr(v)
	case int:
		return numericLandmark(float64(v))
	case int64:
		return numericLandmark(float64(v))
	case float64:
		return numericLandmark(v)
	case string:
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "", "N", "NO", "0", "FALSE":
			return boolPtr(false)
		case "Y", "YES", "LANDMARK", "1", "TRUE":
			return boolPtr(true)
		default:
			return nil
		}
	default:
		return nil
	}
}

func numericLandmark(v float64) *bool {
	switch v {
	case 0:
		return boolPtr(false)
	case 1:
		return boolPtr(true)
	default:
		return nil
	}
}

func isEmptyLandmark(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func boolPtr(b bool) *bool { return &b }
