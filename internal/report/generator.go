// Package report orchestrates feasibility report generation: it sequences
// provider calls with critical/non-critical failure isolation, runs the
// zoning computation engine, and records every stage outcome as an
// append-only ResultRecord.
package report

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zoning-cli/internal/model"
	"github.com/sells-group/zoning-cli/internal/store"
	"github.com/sells-group/zoning-cli/internal/zoning"
	"github.com/sells-group/zoning-cli/pkg/geoservice"
	"github.com/sells-group/zoning-cli/pkg/zola"
)

// Generator produces single-lot and assemblage feasibility reports.
type Generator struct {
	store    store.Store
	geo      geoservice.Client
	zola     zola.Client
	rules    *zoning.Rules
	validate *validator.Validate
}

// NewGenerator creates a Generator with all dependencies.
func NewGenerator(st store.Store, geo geoservice.Client, zolaClient zola.Client, rules *zoning.Rules) *Generator {
	return &Generator{
		store:    st,
		geo:      geo,
		zola:     zolaClient,
		rules:    rules,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// GenerateRequest is the input for a single-lot report.
type GenerateRequest struct {
	Address  string `json:"address" validate:"required"`
	OrgID    string `json:"org_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`
	ClientID string `json:"client_id"`
}

// AssemblageRequest is the input for a 2-3 lot assemblage report.
type AssemblageRequest struct {
	Addresses []string `json:"addresses" validate:"required,min=2,max=3,dive,required"`
	OrgID     string   `json:"org_id" validate:"required"`
	UserID    string   `json:"user_id" validate:"required"`
	ClientID  string   `json:"client_id"`
}

// Result is the single-lot report outcome. Error is set only when the
// critical stage failed; the report is then marked failed and no further
// providers were called.
type Result struct {
	ReportID          string               `json:"report_id"`
	Status            model.ReportStatus   `json:"status"`
	BBL               string               `json:"bbl,omitempty"`
	NormalizedAddress string               `json:"normalized_address,omitempty"`
	Results           []model.ResultRecord `json:"results,omitempty"`
	Error             string               `json:"error,omitempty"`
}

// AssemblageResult is the assemblage report outcome. Aggregation is nil
// when the report failed.
type AssemblageResult struct {
	ReportID    string               `json:"report_id"`
	Status      model.ReportStatus   `json:"status"`
	Aggregation *AssemblagePayload   `json:"aggregation,omitempty"`
	Results     []model.ResultRecord `json:"results,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// AssemblageFlags marks partial aggregation results.
type AssemblageFlags struct {
	MissingLotArea bool `json:"missing_lot_area"`
	PartialTotal   bool `json:"partial_total"`
}

// AssemblageLot is the per-lot slice of the aggregation payload. ChildIndex
// preserves input address order across all output arrays. Building-class and
// land-use codes are carried alongside their dictionary descriptions.
type AssemblageLot struct {
	ChildIndex        int                `json:"child_index"`
	Address           string             `json:"address"`
	BBL               string             `json:"bbl,omitempty"`
	NormalizedAddress string             `json:"normalized_address,omitempty"`
	DataMissing       bool               `json:"data_missing"`
	LotAreaSqft       *float64           `json:"lot_area_sqft"`
	AreaFromFootprint bool               `json:"area_from_footprint,omitempty"`
	BuildingClass     string             `json:"building_class,omitempty"`
	BuildingClassDesc string             `json:"building_class_description,omitempty"`
	LandUse           string             `json:"land_use,omitempty"`
	LandUseDesc       string             `json:"land_use_description,omitempty"`
	Far               model.FarCandidate `json:"far"`
}

// AssemblagePayload is the persisted assemblage_aggregation fact and the
// value returned to the caller. Manual-review flags from the density,
// consistency, and contamination evaluators are carried on their own
// records and are not folded into RequiresManualReview here.
type AssemblagePayload struct {
	Lots                 []AssemblageLot          `json:"lots"`
	CombinedLotAreaSqft  *float64                 `json:"combined_lot_area_sqft"`
	TotalBuildableSqft   *float64                 `json:"total_buildable_sqft"`
	FarMethod            string                   `json:"far_method"`
	RequiresManualReview bool                     `json:"requires_manual_review"`
	DensityCandidates    []model.DensityCandidate `json:"density_candidates"`
	Flags                AssemblageFlags          `json:"flags"`
	Assumptions          []string                 `json:"assumptions,omitempty"`
}

// IsValidationError reports whether err stems from request validation
// rather than orchestration, letting callers map it to a 4xx response.
func IsValidationError(err error) bool {
	var verr validator.ValidationErrors
	return errors.As(err, &verr)
}

// abandon best-effort marks the report failed after an unexpected store
// failure, then re-raises. The secondary failure is logged, not retried.
func (g *Generator) abandon(ctx context.Context, reportID string, err error) error {
	if statusErr := g.store.UpdateStatus(ctx, reportID, model.ReportStatusFailed); statusErr != nil {
		zap.L().Warn("report: failed to mark report failed",
			zap.String("report_id", reportID),
			zap.Error(statusErr),
		)
	}
	return eris.Wrap(err, "report: orchestration")
}

// markFailed sets the failed status, logging rather than raising on a
// secondary store failure so the caller still gets the result object.
func (g *Generator) markFailed(ctx context.Context, reportID string) {
	if err := g.store.UpdateStatus(ctx, reportID, model.ReportStatusFailed); err != nil {
		zap.L().Warn("report: failed to mark report failed",
			zap.String("report_id", reportID),
			zap.Error(err),
		)
	}
}
