package model

// Confidence is a coarse reliability rating attached to derived results.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FAR resolution methods.
const (
	FarMethodSingleDistrict   = "single_district"
	FarMethodMultiDistrictMin = "multi_district_min"
	FarMethodUnknown          = "unknown"
)

// Assemblage-level FAR aggregation methods.
const (
	AssemblageFarSharedDistrict = "shared_district"
	AssemblageFarPerLotSum      = "per_lot_sum"
)

// DistrictFar is one tabulated FAR candidate for a zoning district.
type DistrictFar struct {
	District string   `json:"district"`
	MaxFar   *float64 `json:"max_far"`
}

// FarCandidate is the per-lot FAR resolution result. It is never persisted
// on its own, only embedded in stage and aggregation payloads.
type FarCandidate struct {
	MaxFar               *float64      `json:"max_far"`
	FarMethod            string        `json:"far_method"`
	RequiresManualReview bool          `json:"requires_manual_review"`
	FarCandidates        []DistrictFar `json:"far_candidates,omitempty"`
	ZoningDistricts      []string      `json:"zoning_district_candidates,omitempty"`
	LotBuildableSqft     *float64      `json:"lot_buildable_sqft"`
}

// Density scenarios and computation methods.
const (
	ScenarioDufApplies       = "duf_applies"
	ScenarioDufNotApplicable = "duf_not_applicable"

	DensityMethodCombinedArea  = "combined_area_then_duf"
	DensityMethodPerLotSum     = "per_lot_duf_sum"
	DensityMethodNotApplicable = "not_applicable"
)

// LotDensity is the per-lot breakdown inside a density candidate.
type LotDensity struct {
	ChildIndex      int      `json:"child_index"`
	BBL             string   `json:"bbl,omitempty"`
	DufGoverned     bool     `json:"duf_governed"`
	BuildableSqft   *float64 `json:"buildable_sqft"`
	Units           *int     `json:"units"`
	ExclusionReason string   `json:"exclusion_reason,omitempty"`
}

// DensityCandidate is one of the two toggleable planning scenarios. A nil
// UnitCap means no cap could be computed; a cap of zero is never reported.
type DensityCandidate struct {
	Scenario             string       `json:"scenario"`
	UnitCap              *int         `json:"unit_cap"`
	Method               string       `json:"method"`
	PerLot               []LotDensity `json:"per_lot,omitempty"`
	RequiresManualReview bool         `json:"requires_manual_review"`
	Default              bool         `json:"default"`
}

// LotZoningProfile is the per-lot view computed by the consistency evaluator.
type LotZoningProfile struct {
	ChildIndex        int      `json:"child_index"`
	BBL               string   `json:"bbl,omitempty"`
	PrimaryDistrict   string   `json:"primary_district,omitempty"`
	NormalizedProfile string   `json:"normalized_profile,omitempty"`
	Overlays          []string `json:"overlays,omitempty"`
	SpecialDistricts  []string `json:"special_districts,omitempty"`
	Block             string   `json:"block,omitempty"`
	Lot               string   `json:"lot,omitempty"`
}

// ConsistencySummary is the cross-lot zoning consistency result.
// RequiresManualReview is true whenever Confidence is not high or any
// inconsistency flag is set.
type ConsistencySummary struct {
	SamePrimaryDistrict   bool               `json:"same_primary_district"`
	SameNormalizedProfile bool               `json:"same_normalized_profile"`
	SameBlock             bool               `json:"same_block"`
	AnyOverlay            bool               `json:"any_overlay"`
	AnySpecialDistrict    bool               `json:"any_special_district"`
	Lots                  []LotZoningProfile `json:"lots"`
	Confidence            Confidence         `json:"confidence"`
	RequiresManualReview  bool               `json:"requires_manual_review"`
}

// Contamination risk levels.
const (
	RiskNone     = "none"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

// LotRisk is the per-lot view computed by the contamination evaluator.
type LotRisk struct {
	ChildIndex           int      `json:"child_index"`
	BBL                  string   `json:"bbl,omitempty"`
	DataMissing          bool     `json:"data_missing"`
	Landmarked           *bool    `json:"landmarked"`
	HistoricDistrict     string   `json:"historic_district,omitempty"`
	SpecialDistricts     []string `json:"special_districts,omitempty"`
	Overlays             []string `json:"overlays,omitempty"`
	LandmarkUnrecognized bool     `json:"landmark_unrecognized,omitempty"`
}

// ContaminationSummary is the cross-lot contamination/approval-risk result.
type ContaminationSummary struct {
	RiskLevel            string     `json:"risk_level"`
	AnyLandmark          bool       `json:"any_landmark"`
	AnyHistoricDistrict  bool       `json:"any_historic_district"`
	AnySpecialDistrict   bool       `json:"any_special_district"`
	AnyOverlay           bool       `json:"any_overlay"`
	Lots                 []LotRisk  `json:"lots"`
	Confidence           Confidence `json:"confidence"`
	RequiresManualReview bool       `json:"requires_manual_review"`
	AdvisoryNotes        []string   `json:"advisory_notes"`
}
