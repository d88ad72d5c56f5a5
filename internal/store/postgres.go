package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/stonebridge/assess-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY,
	deal_id    TEXT NOT NULL DEFAULT '',
	score      INTEGER NOT NULL,
	grade      TEXT NOT NULL,
	readiness  TEXT NOT NULL,
	status     TEXT NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_deal ON assessments(deal_id, created_at);
`

// Migrate creates the schema if needed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// SaveAssessment stores one assessment result.
func (s *PostgresStore) SaveAssessment(ctx context.Context, result *model.AssessmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal assessment")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO assessments (id, deal_id, score, grade, readiness, status, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.ID, result.DealID, result.OverallScore, result.Grade,
		string(result.Readiness), string(result.Status), payload, result.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert assessment %s", result.ID)
	}
	return nil
}

// GetAssessment loads one assessment by ID. Returns nil when not found.
func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*model.AssessmentResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT result FROM assessments WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get assessment %s", id)
	}
	return unmarshalResult(string(payload))
}

// LatestAssessment loads the most recent assessment for a deal.
func (s *PostgresStore) LatestAssessment(ctx context.Context, dealID string) (*model.AssessmentResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT result FROM assessments WHERE deal_id = $1
		ORDER BY created_at DESC LIMIT 1`, dealID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest assessment for %s", dealID)
	}
	return unmarshalResult(string(payload))
}

// ListAssessments returns stored assessments, newest first.
func (s *PostgresStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.AssessmentResult, error) {
	query := `SELECT result FROM assessments`
	var args []any
	argNum := 1
	if filter.DealID != "" {
		query += fmt.Sprintf(` WHERE deal_id = $%d`, argNum)
		args = append(args, filter.DealID)
		argNum++
	}
	query += ` ORDER BY created_at DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(` LIMIT $%d`, argNum)
	args = append(args, limit)
	argNum++
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argNum)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments")
	}
	defer rows.Close()

	var results []model.AssessmentResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assessment")
		}
		r, err := unmarshalResult(string(payload))
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate assessments")
	}
	return results, nil
}

// ScoreHistory returns a deal's score trajectory in ascending time order.
func (s *PostgresStore) ScoreHistory(ctx context.Context, dealID string) ([]ScorePoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, deal_id, score, grade, readiness, created_at
		FROM assessments WHERE deal_id = $1
		ORDER BY created_at ASC`, dealID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: score history for %s", dealID)
	}
	defer rows.Close()

	var points []ScorePoint
	for rows.Next() {
		var p ScorePoint
		var readiness string
		if err := rows.Scan(&p.AssessmentID, &p.DealID, &p.Score, &p.Grade, &readiness, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score point")
		}
		p.Readiness = model.Readiness(readiness)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate score history")
	}
	return points, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
