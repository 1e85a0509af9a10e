package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/zoning-cli/internal/db"
	"github.com/sells-group/zoning-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_report": `INSERT INTO reports (id, type, status, addresses, org_id, user_id, client_id, created_at, updated_at)
	                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"update_report_status": `UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3`,
	"get_report": `SELECT id, type, status, addresses, org_id, user_id, client_id, bbl, normalized_address,
	               latitude, longitude, created_at, updated_at FROM reports WHERE id = $1`,
	"list_results": `SELECT id, report_id, source, lot_index, status, payload, error, position, created_at
	                 FROM report_results WHERE report_id = $1 ORDER BY position`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	type               TEXT NOT NULL,
	status             TEXT NOT NULL DEFAULT 'pending',
	addresses          JSONB NOT NULL,
	org_id             TEXT NOT NULL DEFAULT '',
	user_id            TEXT NOT NULL DEFAULT '',
	client_id          TEXT NOT NULL DEFAULT '',
	bbl                TEXT NOT NULL DEFAULT '',
	normalized_address TEXT NOT NULL DEFAULT '',
	latitude           DOUBLE PRECISION,
	longitude          DOUBLE PRECISION,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS report_results (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	report_id  TEXT NOT NULL REFERENCES reports(id),
	source     TEXT NOT NULL,
	lot_index  INTEGER,
	status     TEXT NOT NULL,
	payload    JSONB,
	error      TEXT NOT NULL DEFAULT '',
	position   INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
CREATE INDEX IF NOT EXISTS idx_report_results_report_id ON report_results(report_id);
CREATE INDEX IF NOT EXISTS idx_report_results_source ON report_results(report_id, source);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateReport(ctx context.Context, fields NewReport) (*model.Report, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	addressesJSON, err := json.Marshal(fields.Addresses)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal addresses")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO reports (id, type, status, addresses, org_id, user_id, client_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, string(fields.Type), string(model.ReportStatusPending), addressesJSON,
		fields.OrgID, fields.UserID, fields.ClientID, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert report")
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

func (s *PostgresStore) AppendResult(ctx context.Context, reportID string, in AppendInput) (*model.ResultRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	payload, err := marshalPayload(in.Payload)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal payload")
	}

	var payloadArg any
	if payload != nil {
		payloadArg = []byte(payload)
	}

	var position int
	err = s.pool.QueryRow(ctx,
		`INSERT INTO report_results (id, report_id, source, lot_index, status, payload, error, position, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7,
		         (SELECT COUNT(*) FROM report_results WHERE report_id = $2), $8)
		 RETURNING position`,
		id, reportID, in.Source, in.LotIndex, string(in.Status), payloadArg, in.Error, now,
	).Scan(&position)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: append result for report %s", reportID)
	}

	return &model.ResultRecord{
		ID:        id,
		ReportID:  reportID,
		Source:    in.Source,
		LotIndex:  in.LotIndex,
		Status:    in.Status,
		Payload:   payload,
		Error:     in.Error,
		Position:  position,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, reportID string, status model.ReportStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), reportID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", reportID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("report not found: %s", reportID)
	}
	return nil
}

func (s *PostgresStore) UpdateParcelFields(ctx context.Context, reportID string, ref model.ParcelRef) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET bbl = $1, normalized_address = $2, latitude = $3, longitude = $4, updated_at = $5 WHERE id = $6`,
		ref.BBL, ref.NormalizedAddress, ref.Latitude, ref.Longitude, time.Now().UTC(), reportID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update parcel fields %s", reportID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("report not found: %s", reportID)
	}
	return nil
}

func (s *PostgresStore) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	var r model.Report
	var addressesJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, type, status, addresses, org_id, user_id, client_id, bbl, normalized_address,
		        latitude, longitude, created_at, updated_at
		 FROM reports WHERE id = $1`,
		reportID,
	).Scan(&r.ID, &r.Type, &r.Status, &addressesJSON, &r.OrgID, &r.UserID, &r.ClientID,
		&r.BBL, &r.NormalizedAddress, &r.Latitude, &r.Longitude, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("report not found: %s", reportID)
		}
		return nil, eris.Wrapf(err, "postgres: get report %s", reportID)
	}

	if err := json.Unmarshal(addressesJSON, &r.Addresses); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal addresses")
	}
	return &r, nil
}

func (s *PostgresStore) ListResults(ctx context.Context, reportID string) ([]model.ResultRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, report_id, source, lot_index, status, payload, error, position, created_at
		 FROM report_results WHERE report_id = $1 ORDER BY position`,
		reportID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var records []model.ResultRecord
	for rows.Next() {
		var rec model.ResultRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.ReportID, &rec.Source, &rec.LotIndex, &rec.Status,
			&payload, &rec.Error, &rec.Position, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		if payload != nil {
			rec.Payload = json.RawMessage(payload)
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list results iterate")
}
