// Package store persists feasibility reports and their append-only result
// records. Two backends exist: Postgres (pgxpool) for deployments and
// SQLite (modernc) for local runs.
package store

import (
	"context"
	"encoding/json"

	"github.com/sells-group/zoning-cli/internal/model"
)

// NewReport carries the fields set at report creation time.
type NewReport struct {
	Type      model.ReportType
	Addresses []string
	OrgID     string
	UserID    string
	ClientID  string
}

// AppendInput is one result record to append. Payload is marshaled to JSON
// by the store; a nil payload stores NULL.
type AppendInput struct {
	Source   string
	LotIndex *int
	Status   model.ResultStatus
	Payload  any
	Error    string
}

// Store defines the persistence interface consumed by the report
// orchestrators. Records are append-only; the orchestrator issues each
// append exactly once, so no uniqueness constraint is needed on
// (report, source, lot_index).
type Store interface {
	CreateReport(ctx context.Context, fields NewReport) (*model.Report, error)
	AppendResult(ctx context.Context, reportID string, in AppendInput) (*model.ResultRecord, error)
	UpdateStatus(ctx context.Context, reportID string, status model.ReportStatus) error
	UpdateParcelFields(ctx context.Context, reportID string, ref model.ParcelRef) error
	GetReport(ctx context.Context, reportID string) (*model.Report, error)
	ListResults(ctx context.Context, reportID string) ([]model.ResultRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}

// marshalPayload converts an append payload to JSON, treating nil as absent.
func marshalPayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	return json.Marshal(payload)
}
