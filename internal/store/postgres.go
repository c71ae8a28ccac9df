package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobradar-automation/internal/jobs"
)

// PostgresStore keeps seen jobs in a seen_jobs table keyed by (source, job_id).
type PostgresStore struct {
	connString string
	db         *pgxpool.Pool
}

func NewPostgresStore(connString string) *PostgresStore {
	return &PostgresStore{connString: connString}
}

func (s *PostgresStore) Connect(ctx context.Context) error {
	config, err := pgxpool.ParseConfig(s.connString)
	if err != nil {
		return fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// IMPORTANT: connection poolers in transaction mode (PgBouncer) do not
	// support prepared statements easily. We MUST disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("database unreachable: %w", err)
	}

	s.db = pool

	ddl := `CREATE TABLE IF NOT EXISTS seen_jobs (
		source     TEXT NOT NULL,
		job_id     TEXT NOT NULL,
		title      TEXT,
		company    TEXT,
		url        TEXT,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (source, job_id)
	)`
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		s.db.Close()
		s.db = nil
		return fmt.Errorf("failed to ensure seen_jobs table: %w", err)
	}

	return nil
}

func (s *PostgresStore) LoadAll(ctx context.Context) (map[string]map[string]struct{}, error) {
	if s.db == nil {
		return nil, fmt.Errorf("postgres store is not connected")
	}
	rows, err := s.db.Query(ctx, "SELECT source, job_id FROM seen_jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to load seen jobs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]struct{})
	for rows.Next() {
		var source, id string
		if err := rows.Scan(&source, &id); err != nil {
			return nil, fmt.Errorf("failed to scan seen job: %w", err)
		}
		if out[source] == nil {
			out[source] = make(map[string]struct{})
		}
		out[source][id] = struct{}{}
	}
	return out, rows.Err()
}

// Insert writes the batch in one transaction so a partial write can never
// survive an interrupt. ON CONFLICT DO NOTHING keeps re-inserts no-ops.
func (s *PostgresStore) Insert(ctx context.Context, source string, records []jobs.Record) error {
	if len(records) == 0 {
		return nil
	}
	if s.db == nil {
		return fmt.Errorf("postgres store is not connected")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO seen_jobs (source, job_id, title, company, url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, job_id) DO NOTHING`
	for _, r := range records {
		if _, err := tx.Exec(ctx, query, source, r.ID, r.Title, r.Company, r.URL); err != nil {
			return fmt.Errorf("failed to insert job %s: %w", r.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
