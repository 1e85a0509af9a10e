// Package zola fetches tax-lot zoning attributes by BBL. It is a
// non-critical provider: a failed fetch leaves the lot data-missing but
// the report still completes.
package zola

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/time/rate"

	"github.com/sells-group/zoning-cli/internal/model"
)

// Client fetches parcel attributes for a BBL.
type Client interface {
	Parcel(ctx context.Context, bbl string) (*model.ParcelAttributes, error)
}

// Option configures the zola client.
type Option func(*client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

const defaultBaseURL = "https://zola.planning.nyc.gov/api/v1"

// NewClient creates a zola Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// parcelResponse mirrors the provider's lot payload. Landmark stays untyped:
// the upstream data mixes booleans, 0/1 numerics, and strings.
type parcelResponse struct {
	BBL              string          `json:"bbl"`
	Block            string          `json:"block"`
	Lot              string          `json:"lot"`
	ZoningDistricts  []string        `json:"zoning_districts"`
	Overlays         []string        `json:"overlays"`
	SpecialDistricts []string        `json:"special_districts"`
	Landmark         any             `json:"landmark"`
	HistoricDistrict string          `json:"historic_district"`
	LotAreaSqft      *float64        `json:"lot_area_sqft"`
	BuildingClass    string          `json:"building_class"`
	LandUse          string          `json:"land_use"`
	ResidentialUnits int             `json:"residential_units"`
	Footprint        json.RawMessage `json:"footprint"`
}

func (c *client) Parcel(ctx context.Context, bbl string) (*model.ParcelAttributes, error) {
	if strings.TrimSpace(bbl) == "" {
		return nil, eris.New("zola: empty bbl")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "zola: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/lots/"+bbl, nil)
	if err != nil {
		return nil, eris.Wrap(err, "zola: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "zola: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("zola: returned status %d for bbl %s", resp.StatusCode, bbl)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "zola: read body")
	}

	var pr parcelResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, eris.Wrap(err, "zola: parse response")
	}

	return &model.ParcelAttributes{
		BBL:              pr.BBL,
		Block:            pr.Block,
		Lot:              pr.Lot,
		ZoningDistricts:  pr.ZoningDistricts,
		Overlays:         pr.Overlays,
		SpecialDistricts: pr.SpecialDistricts,
		LandmarkRaw:      pr.Landmark,
		HistoricDistrict: pr.HistoricDistrict,
		LotAreaSqft:      pr.LotAreaSqft,
		BuildingClass:    pr.BuildingClass,
		LandUse:          pr.LandUse,
		ResidentialUnits: pr.ResidentialUnits,
		Footprint:        validFootprint(pr.Footprint),
	}, nil
}

// validFootprint keeps the raw geometry only when it decodes as GeoJSON.
// A malformed footprint is dropped rather than failing the whole fetch;
// the area computation falls back to the tabulated lot area.
func validFootprint(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var g geojson.Geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil
	}
	if _, err := g.Decode(); err != nil {
		return nil
	}
	return raw
}
