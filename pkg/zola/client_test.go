package zola

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParcel_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lots/3001230045", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"bbl": "3001230045",
			"block": "123",
			"lot": "45",
			"zoning_districts": ["R6B", "R7A"],
			"overlays": ["C1-4"],
			"landmark": "N",
			"lot_area_sqft": 2500,
			"building_class": "C1",
			"residential_units": 6,
			"footprint": {"type": "Polygon", "coordinates": [[[0,0],[100,0],[100,100],[0,100],[0,0]]]}
		}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))

	p, err := c.Parcel(context.Background(), "3001230045")
	require.NoError(t, err)
	assert.Equal(t, "3001230045", p.BBL)
	assert.Equal(t, []string{"R6B", "R7A"}, p.ZoningDistricts)
	assert.Equal(t, "R6B", p.PrimaryDistrict())
	assert.Equal(t, []string{"C1-4"}, p.Overlays)
	assert.Equal(t, "N", p.LandmarkRaw)
	require.NotNil(t, p.LotAreaSqft)
	assert.Equal(t, 2500.0, *p.LotAreaSqft)
	assert.Equal(t, 6, p.ResidentialUnits)
	assert.NotNil(t, p.Footprint, "valid footprint is kept")
}

func TestParcel_MalformedFootprintDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"bbl": "3001230045",
			"zoning_districts": ["R6B"],
			"footprint": {"type": "Polygon", "coordinates": "garbage"}
		}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))

	p, err := c.Parcel(context.Background(), "3001230045")
	require.NoError(t, err)
	assert.Nil(t, p.Footprint, "malformed footprint is dropped, not fatal")
}

func TestParcel_NullFootprint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"bbl": "3001230045", "footprint": null}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))

	p, err := c.Parcel(context.Background(), "3001230045")
	require.NoError(t, err)
	assert.Nil(t, p.Footprint)
}

func TestParcel_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))

	_, err := c.Parcel(context.Background(), "9999999999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestParcel_EmptyBBL(t *testing.T) {
	c := NewClient()

	_, err := c.Parcel(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty bbl")
}
