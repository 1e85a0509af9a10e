package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/zoning-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id                 TEXT PRIMARY KEY,
	type               TEXT NOT NULL,
	status             TEXT NOT NULL DEFAULT 'pending',
	addresses          TEXT NOT NULL,
	org_id             TEXT NOT NULL DEFAULT '',
	user_id            TEXT NOT NULL DEFAULT '',
	client_id          TEXT NOT NULL DEFAULT '',
	bbl                TEXT NOT NULL DEFAULT '',
	normalized_address TEXT NOT NULL DEFAULT '',
	latitude           REAL,
	longitude          REAL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS report_results (
	id         TEXT PRIMARY KEY,
	report_id  TEXT NOT NULL REFERENCES reports(id),
	source     TEXT NOT NULL,
	lot_index  INTEGER,
	status     TEXT NOT NULL,
	payload    TEXT,
	error      TEXT NOT NULL DEFAULT '',
	position   INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
CREATE INDEX IF NOT EXISTS idx_report_results_report_id ON report_results(report_id);
CREATE INDEX IF NOT EXISTS idx_report_results_source ON report_results(report_id, source);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateReport(ctx context.Context, fields NewReport) (*model.Report, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	addressesJSON, err := json.Marshal(fields.Addresses)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal addresses")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, type, status, addresses, org_id, user_id, client_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(fields.Type), string(model.ReportStatusPending), string(addressesJSON),
		fields.OrgID, fields.UserID, fields.ClientID, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert report")
	}

	return &model.Report{
		ID:        id,
		Type:      fields.Type,
		Status:    model.ReportStatusPending,
		Addresses: fields.Addresses,
		OrgID:     fields.OrgID,
		UserID:    fields.UserID,
		ClientID:  fields.ClientID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) AppendResult(ctx context.Context, reportID string, in AppendInput) (*model.ResultRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	payload, err := marshalPayload(in.Payload)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal payload")
	}

	var payloadArg any
	if payload != nil {
		payloadArg = string(payload)
	}

	// Position is assigned from the current record count so append order is
	// recoverable even if the backend does not guarantee read order.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_results (id, report_id, source, lot_index, status, payload, error, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?,
		         (SELECT COUNT(*) FROM report_results WHERE report_id = ?), ?)`,
		id, reportID, in.Source, in.LotIndex, string(in.Status), payloadArg, in.Error, reportID, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: append result for report %s", reportID)
	}

	rec := &model.ResultRecord{
		ID:        id,
		ReportID:  reportID,
		Source:    in.Source,
		LotIndex:  in.LotIndex,
		Status:    in.Status,
		Payload:   payload,
		Error:     in.Error,
		CreatedAt: now,
	}
	row := s.db.QueryRowContext(ctx, `SELECT position FROM report_results WHERE id = ?`, id)
	if err := row.Scan(&rec.Position); err != nil {
		return nil, eris.Wrap(err, "sqlite: read position")
	}
	return rec, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, reportID string, status model.ReportStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), reportID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", reportID)
	}
	return checkRowsAffected(res, "report", reportID)
}

func (s *SQLiteStore) UpdateParcelFields(ctx context.Context, reportID string, ref model.ParcelRef) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET bbl = ?, normalized_address = ?, latitude = ?, longitude = ?, updated_at = ? WHERE id = ?`,
		ref.BBL, ref.NormalizedAddress, ref.Latitude, ref.Longitude, time.Now().UTC(), reportID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update parcel fields %s", reportID)
	}
	return checkRowsAffected(res, "report", reportID)
}

func (s *SQLiteStore) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, status, addresses, org_id, user_id, client_id, bbl, normalized_address,
		        latitude, longitude, created_at, updated_at
		 FROM reports WHERE id = ?`,
		reportID,
	)

	var r model.Report
	var addressesJSON string
	err := row.Scan(&r.ID, &r.Type, &r.Status, &addressesJSON, &r.OrgID, &r.UserID, &r.ClientID,
		&r.BBL, &r.NormalizedAddress, &r.Latitude, &r.Longitude, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("report not found: %s", reportID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan report")
	}
	if err := json.Unmarshal([]byte(addressesJSON), &r.Addresses); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal addresses")
	}
	return &r, nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, reportID string) ([]model.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, source, lot_index, status, payload, error, position, created_at
		 FROM report_results WHERE report_id = ? ORDER BY position`,
		reportID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()

	var records []model.ResultRecord
	for rows.Next() {
		var rec model.ResultRecord
		var payload sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ReportID, &rec.Source, &rec.LotIndex, &rec.Status,
			&payload, &rec.Error, &rec.Position, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		if payload.Valid {
			rec.Payload = json.RawMessage(payload.String)
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

// checkRowsAffected turns a zero-row update into a not-found error.
func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
