// Package geoservice provides the address-to-parcel lookup client. It is
// the critical provider: a report cannot proceed without a resolved BBL.
package geoservice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/zoning-cli/internal/model"
)

// Client resolves a street address to its borough-block-lot identifier
// and normalized form.
type Client interface {
	// Lookup resolves a single address. A 200 response without a BBL is
	// an error: nothing downstream can run without one.
	Lookup(ctx context.Context, address string) (*model.GeoLookup, error)
}

// Option configures the geoservice client.
type Option func(*client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIKey sets the API key sent on each request.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
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
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

const defaultBaseURL = "https://geoservice.planninglabs.nyc/v1"

// NewClient creates a geoservice Client with the given options.
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

// lookupResponse is the JSON body of a successful address search.
type lookupResponse struct {
	BBL               string   `json:"bbl"`
	NormalizedAddress string   `json:"normalized_address"`
	Borough           string   `json:"borough"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
}

func (c *client) Lookup(ctx context.Context, address string) (*model.GeoLookup, error) {
	if strings.TrimSpace(address) == "" {
		return nil, eris.New("geoservice: empty address")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geoservice: rate limit")
	}

	params := url.Values{"address": {address}}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/lookup?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geoservice: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geoservice: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geoservice: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geoservice: read body")
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, eris.Wrap(err, "geoservice: parse response")
	}

	if strings.TrimSpace(lr.BBL) == "" {
		return nil, eris.Errorf("geoservice: no BBL resolved for address %q", address)
	}

	return &model.GeoLookup{
		BBL:               lr.BBL,
		NormalizedAddress: lr.NormalizedAddress,
		Borough:           lr.Borough,
		Latitude:          lr.Latitude,
		Longitude:         lr.Longitude,
	}, nil
}
