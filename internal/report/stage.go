package report

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zoning-cli/internal/model"
	"github.com/sells-group/zoning-cli/internal/store"
)

// StagePolicy controls how a stage failure affects the report: a Critical
// failure is fatal to the whole report, a NonCritical one is recorded and
// the pipeline continues.
type StagePolicy int

const (
	NonCritical StagePolicy = iota
	Critical
)

// stageRef identifies one pipeline stage: its result source key, the lot
// it applies to (nil outside assemblage per-lot fan-out), and its policy.
type stageRef struct {
	Source   string
	LotIndex *int
	Policy   StagePolicy
}

// stageFunc produces the stage payload or an error.
type stageFunc func(ctx context.Context) (any, error)

// stageOutcome is the recorded result of one stage execution.
type stageOutcome struct {
	record *model.ResultRecord
	err    error
}

// failed reports whether the stage itself failed.
func (o stageOutcome) failed() bool { return o.err != nil }

// runStage executes one pipeline stage and appends exactly one ResultRecord:
// succeeded with the stage payload, or failed with the error message. A panic
// inside the stage is recovered into a failed record. The second return is
// non-nil only for store append failures, which the caller must treat as
// unexpected and abandon the report.
func (g *Generator) runStage(ctx context.Context, reportID string, ref stageRef, fn stageFunc) (stageOutcome, error) {
	log := zap.L().With(
		zap.String("report_id", reportID),
		zap.String("source", ref.Source),
	)
	if ref.LotIndex != nil {
		log = log.With(zap.Int("lot_index", *ref.LotIndex))
	}

	payload, stageErr := safeCall(ctx, fn)

	in := store.AppendInput{
		Source:   ref.Source,
		LotIndex: ref.LotIndex,
	}
	if stageErr != nil {
		in.Status = model.ResultFailed
		in.Error = stageErr.Error()
		if ref.Policy == Critical {
			log.Error("report: critical stage failed", zap.Error(stageErr))
		} else {
			log.Warn("report: stage failed", zap.Error(stageErr))
		}
	} else {
		in.Status = model.ResultSucceeded
		in.Payload = payload
		log.Info("report: stage complete")
	}

	rec, appendErr := g.store.AppendResult(ctx, reportID, in)
	if appendErr != nil {
		return stageOutcome{}, eris.Wrapf(appendErr, "report: append %s result", ref.Source)
	}
	return stageOutcome{record: rec, err: stageErr}, nil
}

// safeCall invokes fn, converting a panic into an error.
func safeCall(ctx context.Context, fn stageFunc) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("stage panic: %v", r)
		}
	}()
	return fn(ctx)
}
