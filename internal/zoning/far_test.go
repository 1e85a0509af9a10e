package zoning

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zoning-cli/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestResolveFar_SingleDistrict(t *testing.T) {
	rules := DefaultRules()
	p := &model.ParcelAttributes{
		BBL:             "3012340056",
		ZoningDistricts: []string{"R6B"},
		LotAreaSqft:     fptr(2500),
	}

	fc := ResolveFar(rules, p)
	require.NotNil(t, fc.MaxFar)
	assert.Equal(t, 2.0, *fc.MaxFar)
	assert.Equal(t, model.FarMethodSingleDistrict, fc.FarMethod)
	assert.False(t, fc.RequiresManualReview)
	require.NotNil(t, fc.LotBuildableSqft)
	assert.Equal(t, 5000.0, *fc.LotBuildableSqft)
}

func TestResolveFar_MultiDistrictTakesMinimum(t *testing.T) {
	rules := DefaultRules()
	p := &model.ParcelAttributes{
		ZoningDistricts: []string{"R6", "M1-1"},
		LotAreaSqft:     fptr(1000),
	}

	fc := ResolveFar(rules, p)
	require.NotNil(t, fc.MaxFar)
	assert.Equal(t, 1.0, *fc.MaxFar)
	assert.Equal(t, model.FarMethodMultiDistrictMin, fc.FarMethod)
	assert.True(t, fc.RequiresManualReview)
	assert.Len(t, fc.FarCandidates, 2)
	require.NotNil(t, fc.LotBuildableSqft)
	assert.Equal(t, 1000.0, *fc.LotBuildableSqft)
}

func TestResolveFar_UnknownDistrict(t *testing.T) {
	rules := DefaultRules()
	p := &model.ParcelAttributes{
		ZoningDistricts: []string{"X9-9"},
		LotAreaSqft:     fptr(1000),
	}

	fc := ResolveFar(rules, p)
	assert.Nil(t, fc.MaxFar)
	assert.Equal(t, model.FarMethodUnknown, fc.FarMethod)
	assert.True(t, fc.RequiresManualReview)
	assert.Nil(t, fc.LotBuildableSqft)
}

func TestResolveFar_NoParcelData(t *testing.T) {
	fc := ResolveFar(DefaultRules(), nil)
	assert.Nil(t, fc.MaxFar)
	assert.Equal(t, model.FarMethodUnknown, fc.FarMethod)
	assert.True(t, fc.RequiresManualReview)
}

func TestResolveFar_MissingLotAreaExcludesBuildable(t *testing.T) {
	fc := ResolveFar(DefaultRules(), &model.ParcelAttributes{
		ZoningDistricts: []string{"R6B"},
	})
	require.NotNil(t, fc.MaxFar)
	assert.Nil(t, fc.LotBuildableSqft)
}

func TestLotArea_FootprintFallback(t *testing.T) {
	// 100ft x 100ft square in a projected foot-based CRS.
	footprint := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[100,0],[100,100],[0,100],[0,0]]]}`)
	p := &model.ParcelAttributes{
		ZoningDistricts: []string{"R6B"},
		Footprint:       footprint,
	}

	area, derived := LotArea(p)
	require.NotNil(t, area)
	assert.True(t, derived)
	assert.InDelta(t, 10000.0, *area, 0.01)

	fc := ResolveFar(DefaultRules(), p)
	require.NotNil(t, fc.LotBuildableSqft)
	assert.InDelta(t, 20000.0, *fc.LotBuildableSqft, 0.01)
}

func TestLotArea_PrefersTabulatedArea(t *testing.T) {
	p := &model.ParcelAttributes{
		LotAreaSqft: fptr(3000),
		Footprint:   json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`),
	}
	area, derived := LotArea(p)
	require.NotNil(t, area)
	assert.False(t, derived)
	assert.Equal(t, 3000.0, *area)
}

func TestLotArea_MalformedFootprint(t *testing.T) {
	p := &model.ParcelAttributes{Footprint: json.RawMessage(`{"type":"bogus"`)}
	area, derived := LotArea(p)
	assert.Nil(t, area)
	assert.False(t, derived)
}
