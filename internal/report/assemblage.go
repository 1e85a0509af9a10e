package report

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zoning-cli/internal/lookup"
	"github.com/sells-group/zoning-cli/internal/model"
	"github.com/sells-group/zoning-cli/internal/store"
	"github.com/sells-group/zoning-cli/internal/zoning"
)

// GenerateAssemblageReport runs the 2-3 lot assemblage pipeline. Provider
// calls for the lots are issued sequentially in input address order so
// ResultRecord positions and lot indices stay aligned. A single lot's
// critical geoservice failure fails the whole report and short-circuits
// the remaining lots; zola failures are isolated per lot.
func (g *Generator) GenerateAssemblageReport(ctx context.Context, req AssemblageRequest) (*AssemblageResult, error) {
	if err := g.validate.Struct(req); err != nil {
		return nil, eris.Wrap(err, "report: invalid request")
	}

	log := zap.L().With(zap.Int("lots", len(req.Addresses)))
	log.Info("report: starting assemblage report")

	rep, err := g.store.CreateReport(ctx, store.NewReport{
		Type:      model.ReportTypeAssemblage,
		Addresses: req.Addresses,
		OrgID:     req.OrgID,
		UserID:    req.UserID,
		ClientID:  req.ClientID,
	})
	if err != nil {
		return nil, eris.Wrap(err, "report: create report")
	}

	res := &AssemblageResult{ReportID: rep.ID, Status: model.ReportStatusPending}

	record := func(out stageOutcome) {
		res.Results = append(res.Results, *out.record)
	}

	out, err := g.runStage(ctx, rep.ID, stageRef{Source: model.SourceAssemblageInput, Policy: NonCritical},
		func(context.Context) (any, error) {
			return map[string]any{"addresses": req.Addresses}, nil
		})
	if err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	record(out)

	lots := make([]model.LotContext, len(req.Addresses))
	for i, addr := range req.Addresses {
		lots[i] = model.LotContext{ChildIndex: i, Address: addr}
	}

	// Critical per-lot lookups, in input order, short-circuiting on the
	// first failure.
	for i := range lots {
		idx := i
		out, err := g.runStage(ctx, rep.ID, stageRef{Source: model.SourceGeoservice, LotIndex: &idx, Policy: Critical},
			func(ctx context.Context) (any, error) {
				lookup, lookupErr := g.geo.Lookup(ctx, lots[idx].Address)
				if lookupErr != nil {
					return nil, lookupErr
				}
				lots[idx].Geo = lookup
				return lookup, nil
			})
		if err != nil {
			return nil, g.abandon(ctx, rep.ID, err)
		}
		record(out)

		if out.failed() {
			g.markFailed(ctx, rep.ID)
			res.Status = model.ReportStatusFailed
			res.Error = fmt.Sprintf("lot %d (%s) could not be resolved to a parcel: %s",
				idx, lots[idx].Address, out.err.Error())
			return res, nil
		}
	}

	// The report row carries the first lot's parcel identity.
	first := lots[0].Geo
	if err := g.store.UpdateParcelFields(ctx, rep.ID, model.ParcelRef{
		BBL:               first.BBL,
		NormalizedAddress: first.NormalizedAddress,
		Latitude:          first.Latitude,
		Longitude:         first.Longitude,
	}); err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}

	// Non-critical per-lot attribute fetches. A failed lot stays
	// data-missing downstream.
	for i := range lots {
		idx := i
		out, err := g.runStage(ctx, rep.ID, stageRef{Source: model.SourceZola, LotIndex: &idx, Policy: NonCritical},
			func(ctx context.Context) (any, error) {
				p, parcelErr := g.zola.Parcel(ctx, lots[idx].Geo.BBL)
				if parcelErr != nil {
					return nil, parcelErr
				}
				lots[idx].Parcel = p
				return p, nil
			})
		if err != nil {
			return nil, g.abandon(ctx, rep.ID, err)
		}
		record(out)
	}

	// Per-lot FAR resolution.
	fars := make([]model.FarCandidate, len(lots))
	for i := range lots {
		idx := i
		out, err := g.runStage(ctx, rep.ID, stageRef{Source: model.SourceZoningResolution, LotIndex: &idx, Policy: NonCritical},
			func(context.Context) (any, error) {
				if lots[idx].Parcel == nil {
					fars[idx] = model.FarCandidate{
						FarMethod:            model.FarMethodUnknown,
						RequiresManualReview: true,
					}
					return nil, eris.New("parcel attributes unavailable")
				}
				fars[idx] = zoning.ResolveFar(g.rules, lots[idx].Parcel)
				return fars[idx], nil
			})
		if err != nil {
			return nil, g.abandon(ctx, rep.ID, err)
		}
		record(out)
	}

	payload := g.aggregate(lots, fars)

	// Cross-lot evaluators, each wrapped so a failure yields a failed
	// record without aborting the report.
	parcels := make([]*model.ParcelAttributes, len(lots))
	for i := range lots {
		parcels[i] = lots[i].Parcel
	}

	out, err = g.runStage(ctx, rep.ID, stageRef{Source: model.SourceZoningConsistency, Policy: NonCritical},
		func(context.Context) (any, error) {
			return zoning.EvaluateConsistency(g.rules, parcels), nil
		})
	if err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	record(out)

	out, err = g.runStage(ctx, rep.ID, stageRef{Source: model.SourceContaminationRisk, Policy: NonCritical},
		func(context.Context) (any, error) {
			return zoning.EvaluateContamination(parcels), nil
		})
	if err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	record(out)

	out, err = g.runStage(ctx, rep.ID, stageRef{Source: model.SourceAssemblageAggregation, Policy: NonCritical},
		func(context.Context) (any, error) {
			return payload, nil
		})
	if err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	record(out)

	if err := g.store.UpdateStatus(ctx, rep.ID, model.ReportStatusReady); err != nil {
		return nil, g.abandon(ctx, rep.ID, err)
	}
	res.Status = model.ReportStatusReady
	res.Aggregation = payload

	log.Info("report: assemblage report ready",
		zap.String("report_id", rep.ID),
		zap.String("far_method", payload.FarMethod),
	)
	return res, nil
}

// aggregate computes the combined assemblage metrics: lot areas, total
// buildable area, FAR method selection, and the density candidates.
func (g *Generator) aggregate(lots []model.LotContext, fars []model.FarCandidate) *AssemblagePayload {
	payload := &AssemblagePayload{
		Lots: make([]AssemblageLot, 0, len(lots)),
	}

	var (
		combinedArea  float64
		totalBuild    float64
		anyArea       bool
		anyBuild      bool
		anyFootprint  bool
		sharedProfile = true
		anyFarReview  bool
	)

	firstProfile := ""
	for i, lot := range lots {
		al := AssemblageLot{
			ChildIndex: lot.ChildIndex,
			Address:    lot.Address,
			Far:        fars[i],
		}
		if lot.Geo != nil {
			al.BBL = lot.Geo.BBL
			al.NormalizedAddress = lot.Geo.NormalizedAddress
		}

		if fars[i].RequiresManualReview {
			anyFarReview = true
		}

		if lot.Parcel == nil {
			al.DataMissing = true
			sharedProfile = false
			payload.Flags.MissingLotArea = true
			payload.Flags.PartialTotal = true
			payload.Lots = append(payload.Lots, al)
			continue
		}

		profile := g.rules.NormalizeDistrict(lot.Parcel.PrimaryDistrict())
		if profile == "" {
			sharedProfile = false
		} else if firstProfile == "" {
			firstProfile = profile
		} else if profile != firstProfile {
			sharedProfile = false
		}

		al.BuildingClass = lot.Parcel.BuildingClass
		al.BuildingClassDesc = lookup.BuildingClass(lot.Parcel.BuildingClass)
		al.LandUse = lot.Parcel.LandUse
		al.LandUseDesc = lookup.LandUse(lot.Parcel.LandUse)

		area, fromFootprint := zoning.LotArea(lot.Parcel)
		al.LotAreaSqft = area
		al.AreaFromFootprint = fromFootprint
		if fromFootprint {
			anyFootprint = true
		}
		if area != nil {
			combinedArea += *area
			anyArea = true
		} else {
			// Missing area contributes zero; the flags signal a partial total.
			payload.Flags.MissingLotArea = true
			payload.Flags.PartialTotal = true
		}

		if fars[i].LotBuildableSqft != nil {
			totalBuild += *fars[i].LotBuildableSqft
			anyBuild = true
		}

		payload.Lots = append(payload.Lots, al)
	}

	if anyArea {
		payload.CombinedLotAreaSqft = &combinedArea
	}
	if anyBuild {
		payload.TotalBuildableSqft = &totalBuild
	}

	if sharedProfile && !anyFarReview {
		payload.FarMethod = model.AssemblageFarSharedDistrict
	} else {
		payload.FarMethod = model.AssemblageFarPerLotSum
		payload.RequiresManualReview = true
	}

	densityLots := make([]zoning.DensityLot, 0, len(lots))
	for i, lot := range lots {
		dl := zoning.DensityLot{
			ChildIndex: lot.ChildIndex,
			Parcel:     lot.Parcel,
			Far:        fars[i],
		}
		if lot.Geo != nil {
			dl.BBL = lot.Geo.BBL
		}
		densityLots = append(densityLots, dl)
	}
	payload.DensityCandidates = zoning.ComputeDensity(g.rules, densityLots, payload.FarMethod)

	if anyFootprint {
		payload.Assumptions = append(payload.Assumptions,
			"lot areas without a tabulated value are derived from footprint geometry, assumed to be in a foot-based projected coordinate system")
	}
	if payload.Flags.MissingLotArea {
		payload.Assumptions = append(payload.Assumptions,
			"lots with missing or zero area contribute 0 to the combined total")
	}

	return payload
}
