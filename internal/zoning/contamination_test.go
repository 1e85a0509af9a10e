package zoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zoning-cli/internal/model"
)

func cleanLot(bbl string) *model.ParcelAttributes {
	return &model.ParcelAttributes{
		BBL:             bbl,
		ZoningDistricts: []string{"R6B"},
		LandmarkRaw:     "N",
	}
}

func TestEvaluateContamination_CleanLots(t *testing.T) {
	s := EvaluateContamination([]*model.ParcelAttributes{cleanLot("b0"), cleanLot("b1")})

	assert.Equal(t, model.RiskNone, s.RiskLevel)
	assert.Equal(t, model.ConfidenceHigh, s.Confidence)
	assert.False(t, s.RequiresManualReview)
	assert.False(t, s.AnyLandmark)
	assert.False(t, s.AnyHistoricDistrict)
	assert.NotEmpty(t, s.AdvisoryNotes)
}

func TestEvaluateContamination_HistoricDistrictIsModerate(t *testing.T) {
	lots := []*model.ParcelAttributes{cleanLot("b0"), cleanLot("b1")}
	lots[1].HistoricDistrict = "Park Slope Historic District"

	s := EvaluateContamination(lots)
	assert.Equal(t, model.RiskModerate, s.RiskLevel)
	assert.True(t, s.AnyHistoricDistrict)
	assert.True(t, s.RequiresManualReview)
}

func TestEvaluateContamination_LandmarkIsHigh(t *testing.T) {
	lots := []*model.ParcelAttributes{cleanLot("b0"), cleanLot("b1")}
	lots[1].LandmarkRaw = "Y"

	s := EvaluateContamination(lots)
	assert.Equal(t, model.RiskHigh, s.RiskLevel)
	assert.True(t, s.AnyLandmark)
	assert.True(t, s.RequiresManualReview)
}

func TestEvaluateContamination_OverlayAndSpecialDistrict(t *testing.T) {
	lots := []*model.ParcelAttributes{cleanLot("b0")}
	lots[0].Overlays = []string{"C1-4"}
	lots[0].SpecialDistricts = []string{"MX-8"}

	s := EvaluateContamination(lots)
	assert.Equal(t, model.RiskModerate, s.RiskLevel)
	assert.True(t, s.AnyOverlay)
	assert.True(t, s.AnySpecialDistrict)
}

func TestEvaluateContamination_MissingDataConfidence(t *testing.T) {
	// Exactly one lot missing parcel data: medium.
	s := EvaluateContamination([]*model.ParcelAttributes{cleanLot("b0"), nil})
	assert.Equal(t, model.ConfidenceMedium, s.Confidence)
	assert.True(t, s.RequiresManualReview)
	assert.True(t, s.Lots[1].DataMissing)

	// Two lots missing: low.
	s = EvaluateContamination([]*model.ParcelAttributes{cleanLot("b0"), nil, nil})
	assert.Equal(t, model.ConfidenceLow, s.Confidence)

	// All lots missing: low.
	s = EvaluateContamination([]*model.ParcelAttributes{nil})
	assert.Equal(t, model.ConfidenceLow, s.Confidence)
}

func TestEvaluateContamination_SparseLotIsMedium(t *testing.T) {
	// Data present, but no key risk field populated.
	s := EvaluateContamination([]*model.ParcelAttributes{{BBL: "b0"}})
	assert.Equal(t, model.ConfidenceMedium, s.Confidence)
	assert.Equal(t, model.RiskNone, s.RiskLevel)
	assert.True(t, s.RequiresManualReview)

	// An empty-string landmark field is just as empty as a nil one.
	s = EvaluateContamination([]*model.ParcelAttributes{{BBL: "b0", LandmarkRaw: ""}})
	assert.Equal(t, model.ConfidenceMedium, s.Confidence)
	assert.True(t, s.RequiresManualReview)

	// An explicit "N" is a real reading, not sparse data.
	s = EvaluateContamination([]*model.ParcelAttributes{{BBL: "b0", LandmarkRaw: "N"}})
	assert.Equal(t, model.ConfidenceHigh, s.Confidence)
}

func TestEvaluateContamination_UnrecognizedLandmarkLowersConfidence(t *testing.T) {
	lots := []*model.ParcelAttributes{cleanLot("b0")}
	lots[0].LandmarkRaw = "PENDING"

	s := EvaluateContamination(lots)
	assert.Equal(t, model.RiskNone, s.RiskLevel, "unrecognized is not treated as flagged")
	assert.Equal(t, model.ConfidenceMedium, s.Confidence)
	assert.True(t, s.Lots[0].LandmarkUnrecognized)
	assert.Nil(t, s.Lots[0].Landmarked)
}

func TestEvaluateContamination_Idempotent(t *testing.T) {
	lots := []*model.ParcelAttributes{cleanLot("b0"), nil, {BBL: "b2", LandmarkRaw: 1}}
	first := EvaluateContamination(lots)
	second := EvaluateContamination(lots)
	require.Equal(t, first, second)
}

func TestNormalizeLandmark(t *testing.T) {
	truthy := []any{"Y", "y", "YES", "yes", "LANDMARK", "landmark", 1, int64(1), 1.0, true}
	for _, v := range truthy {
		got := NormalizeLandmark(v)
		require.NotNil(t, got, "value %v", v)
		assert.True(t, *got, "value %v", v)
	}

	falsy := []any{"N", "no", "", "  ", 0, int64(0), 0.0, false, nil}
	for _, v := range falsy {
		got := NormalizeLandmark(v)
		require.NotNil(t, got, "value %v", v)
		assert.False(t, *got, "value %v", v)
	}

	unrecognized := []any{"MAYBE", "2", 2, 0.5, []string{"Y"}}
	for _, v := range unrecognized {
		assert.Nil(t, NormalizeLandmark(v), "value %v", v)
	}
}
