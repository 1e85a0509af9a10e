package zoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zoning-cli/internal/model"
)

func TestEvaluateConsistency_SharedDistrictHighConfidence(t *testing.T) {
	rules := DefaultRules()
	lots := []*model.ParcelAttributes{
		{BBL: "3012340001", ZoningDistricts: []string{"R6B"}, Block: "1234", Lot: "1"},
		{BBL: "3012340002", ZoningDistricts: []string{"R6B"}, Block: "1234", Lot: "2"},
	}

	s := EvaluateConsistency(rules, lots)
	assert.True(t, s.SamePrimaryDistrict)
	assert.True(t, s.SameNormalizedProfile)
	assert.True(t, s.SameBlock)
	assert.Equal(t, model.ConfidenceHigh, s.Confidence)
	assert.False(t, s.RequiresManualReview)
}

func TestEvaluateConsistency_MissingPrimaryDistrictIsLow(t *testing.T) {
	rules := DefaultRules()
	lots := []*model.ParcelAttributes{
		{ZoningDistricts: []string{"R6B"}, Block: "1234"},
		{Block: "1234"},
	}

	s := EvaluateConsistency(rules, lots)
	assert.False(t, s.SamePrimaryDistrict)
	assert.Equal(t, model.ConfidenceLow, s.Confidence)
	assert.True(t, s.RequiresManualReview)
}

func TestEvaluateConsistency_MissingParcelIsLow(t *testing.T) {
	s := EvaluateConsistency(DefaultRules(), []*model.ParcelAttributes{
		{ZoningDistricts: []string{"R6B"}},
		nil,
	})
	assert.Equal(t, model.ConfidenceLow, s.Confidence)
	assert.True(t, s.RequiresManualReview)
	assert.True(t, s.Lots[1].PrimaryDistrict == "")
}

func TestEvaluateConsistency_NormalizedProfileMatchIsMedium(t *testing.T) {
	rules := DefaultRules()
	lots := []*model.ParcelAttributes{
		{ZoningDistricts: []string{"R7-2"}, Block: "1234"},
		{ZoningDistricts: []string{"R7A"}, Block: "1234"},
	}

	s := EvaluateConsistency(rules, lots)
	assert.False(t, s.SamePrimaryDistrict)
	assert.True(t, s.SameNormalizedProfile)
	assert.Equal(t, "R7", s.Lots[0].NormalizedProfile)
	assert.Equal(t, "R7", s.Lots[1].NormalizedProfile)
	assert.Equal(t, model.ConfidenceMedium, s.Confidence)
	assert.True(t, s.RequiresManualReview)
}

func TestEvaluateConsistency_OverlayDowngradesToMedium(t *testing.T) {
	rules := DefaultRules()
	lots := []*model.ParcelAttributes{
		{ZoningDistricts: []string{"R6B"}, Overlays: []string{"C1-3"}},
		{ZoningDistricts: []string{"R6B"}},
	}

	s := EvaluateConsistency(rules, lots)
	assert.True(t, s.SamePrimaryDistrict)
	assert.True(t, s.AnyOverlay)
	assert.Equal(t, model.ConfidenceMedium, s.Confidence)
	assert.True(t, s.RequiresManualReview)
}

func TestEvaluateConsistency_UnrelatedDistrictsAreLow(t *testing.T) {
	rules := DefaultRules()
	lots := []*model.ParcelAttributes{
		{ZoningDistricts: []string{"R6B"}},
		{ZoningDistricts: []string{"M1-1"}},
	}

	s := EvaluateConsistency(rules, lots)
	assert.False(t, s.SamePrimaryDistrict)
	assert.False(t, s.SameNormalizedProfile)
	assert.Equal(t, model.ConfidenceLow, s.Confidence)
	assert.True(t, s.RequiresManualReview)
}

func TestEvaluateConsistency_MissingBlockBreaksSameBlock(t *testing.T) {
	rules := DefaultRules()
	lots := []*model.ParcelAttributes{
		{ZoningDistricts: []string{"R6B"}, Block: "1234"},
		{ZoningDistricts: []string{"R6B"}},
	}

	s := EvaluateConsistency(rules, lots)
	assert.False(t, s.SameBlock)
}

func TestEvaluateConsistency_Idempotent(t *testing.T) {
	rules := DefaultRules()
	lots := []*model.ParcelAttributes{
		{ZoningDistricts: []string{"R7-2"}, Overlays: []string{"C2-4"}, Block: "88"},
		{ZoningDistricts: []string{"R7A"}, Block: "88"},
	}

	first := EvaluateConsistency(rules, lots)
	second := EvaluateConsistency(rules, lots)
	require.Equal(t, first, second)
}

func TestEvaluateConsistency_ChildIndexFollowsInputOrder(t *testing.T) {
	lots := []*model.ParcelAttributes{
		{BBL: "b0", ZoningDistricts: []string{"R6B"}},
		{BBL: "b1", ZoningDistricts: []string{"R6B"}},
		{BBL: "b2", ZoningDistricts: []string{"R6B"}},
	}
	s := EvaluateConsistency(DefaultRules(), lots)
	require.Len(t, s.Lots, 3)
	for i, l := range s.Lots {
		assert.Equal(t, i, l.ChildIndex)
	}
}
