package report

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zoning-cli/internal/model"
	"github.com/sells-group/zoning-cli/internal/store"
	"github.com/sells-group/zoning-cli/internal/zoning"
)

// GenerateReport runs the single-lot pipeline: critical geoservice lookup,
// then the non-critical zola and zoning-resolution stages. Only the critical
// stage can fail the report; it then returns a Result carrying a
// human-readable Error and a nil Go error.
func (g *Generator) GenerateReport(ctx context.Context, req GenerateRequest) (*Result, error) {
	if err := g.validate.Struct(req); err != nil {
		return nil, eris.Wrap(err, "report: invalid request")
	}

	log := zap.L().With(zap.String("address", req.Address))
	log.Info("report: starting single-lot report")

	rep, err := g.store.CreateReport(ctx, store.NewReport{
		Type:      model.ReportTypeSingle,
		Addresses: []string{req.Address},
		OrgID:     req.OrgID,
		UserID:    req.UserID,
		ClientID:  req.ClientID,
	})
	if err != nil {
		return nil, eris.Wrap(err, "report: create report")
	}

	res := &Result{ReportID: rep.ID, Status: model.ReportStatusPending}

	var geo *model.GeoLookup
	out, err := g.runStage(ctx, rep.ID, stageRef{Source: model.SourceGeoservice, Policy: Critical},
		func(ctx context.Context) (any, error) {
			lookup, lookupErr := g.geo.Lookup(ctx, req.Address)
			if lookupErr != nil {
				return nil, lookupErr
			}
			geo = lookup
			return lookup, nil
		})
	if err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	res.Results = append(res.Results, *out.record)

	if out.failed() {
		g.markFailed(ctx, rep.ID)
		res.Status = model.ReportStatusFailed
		res.Error = "address could not be resolved to a parcel: " + out.err.Error()
		return res, nil
	}

	if err := g.store.UpdateParcelFields(ctx, rep.ID, model.ParcelRef{
		BBL:               geo.BBL,
		NormalizedAddress: geo.NormalizedAddress,
		Latitude:          geo.Latitude,
		Longitude:         geo.Longitude,
	}); err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	res.BBL = geo.BBL
	res.NormalizedAddress = geo.NormalizedAddress

	var parcel *model.ParcelAttributes
	out, err = g.runStage(ctx, rep.ID, stageRef{Source: model.SourceZola, Policy: NonCritical},
		func(ctx context.Context) (any, error) {
			p, parcelErr := g.zola.Parcel(ctx, geo.BBL)
			if parcelErr != nil {
				return nil, parcelErr
			}
			parcel = p
			return p, nil
		})
	if err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	res.Results = append(res.Results, *out.record)

	out, err = g.runStage(ctx, rep.ID, stageRef{Source: model.SourceZoningResolution, Policy: NonCritical},
		func(ctx context.Context) (any, error) {
			if parcel == nil {
				return nil, eris.New("parcel attributes unavailable")
			}
			return zoning.ResolveFar(g.rules, parcel), nil
		})
	if err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	res.Results = append(res.Results, *out.record)

	if err := g.store.UpdateStatus(ctx, rep.ID, model.ReportStatusReady); err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	res.Status = model.ReportStatusReady

	log.Info("report: single-lot report ready",
		zap.String("report_id", rep.ID),
		zap.String("bbl", geo.BBL),
	)
	return res, nil
}
