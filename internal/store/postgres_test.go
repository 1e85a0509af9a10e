package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zoning-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_GetReport_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, type, status, addresses`).
		WithArgs("nonexistent-report").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetReport(context.Background(), "nonexistent-report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateReport(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO reports`).
		WithArgs(pgxmock.AnyArg(), "single", "pending", pgxmock.AnyArg(),
			"org-1", "user-1", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	report, err := s.CreateReport(context.Background(), NewReport{
		Type:      model.ReportTypeSingle,
		Addresses: []string{"123 Main St"},
		OrgID:     "org-1",
		UserID:    "user-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, model.ReportStatusPending, report.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendResult_AssignsPosition(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO report_results`).
		WithArgs(pgxmock.AnyArg(), "report-1", model.SourceGeoservice, (*int)(nil),
			"succeeded", pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"position"}).AddRow(2))

	rec, err := s.AppendResult(context.Background(), "report-1", AppendInput{
		Source:  model.SourceGeoservice,
		Status:  model.ResultSucceeded,
		Payload: map[string]string{"bbl": "3001230045"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Position)
	assert.JSONEq(t, `{"bbl":"3001230045"}`, string(rec.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE reports SET status`).
		WithArgs("failed", pgxmock.AnyArg(), "nonexistent").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateStatus(context.Background(), "nonexistent", model.ReportStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateParcelFields(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	lat, lng := 40.6892, -73.9857
	mock.ExpectExec(`UPDATE reports SET bbl`).
		WithArgs("3001230045", "123 MAIN STREET", &lat, &lng, pgxmock.AnyArg(), "report-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateParcelFields(context.Background(), "report-1", model.ParcelRef{
		BBL:               "3001230045",
		NormalizedAddress: "123 MAIN STREET",
		Latitude:          &lat,
		Longitude:         &lng,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListResults(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	lotIdx := 1
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "report_id", "source", "lot_index", "status", "payload", "error", "position", "created_at",
	}).
		AddRow("rec-1", "report-1", model.SourceAssemblageInput, (*int)(nil), "succeeded",
			[]byte(`{"addresses":["a","b"]}`), "", 0, now).
		AddRow("rec-2", "report-1", model.SourceGeoservice, &lotIdx, "failed",
			[]byte(nil), "geoservice lookup failed", 1, now)

	mock.ExpectQuery(`SELECT id, report_id, source`).
		WithArgs("report-1").
		WillReturnRows(rows)

	records, err := s.ListResults(context.Background(), "report-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.SourceAssemblageInput, records[0].Source)
	assert.Nil(t, records[0].LotIndex)
	assert.Equal(t, model.SourceGeoservice, records[1].Source)
	require.NotNil(t, records[1].LotIndex)
	assert.Equal(t, 1, *records[1].LotIndex)
	assert.Nil(t, records[1].Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}
