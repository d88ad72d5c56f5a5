package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/stonebridge/assess-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY,
	deal_id    TEXT NOT NULL DEFAULT '',
	score      INTEGER NOT NULL,
	grade      TEXT NOT NULL,
	readiness  TEXT NOT NULL,
	status     TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_deal ON assessments(deal_id, created_at);
`

// Migrate creates the schema if needed.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// SaveAssessment stores one assessment result. The full result is kept as a
// JSON payload; the indexed columns exist for listing and history queries.
func (s *SQLiteStore) SaveAssessment(ctx context.Context, result *model.AssessmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal assessment")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, deal_id, score, grade, readiness, status, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.DealID, result.OverallScore, result.Grade,
		string(result.Readiness), string(result.Status), string(payload), result.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert assessment %s", result.ID)
	}
	return nil
}

// GetAssessment loads one assessment by ID. Returns nil when not found.
func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*model.AssessmentResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT result FROM assessments WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get assessment %s", id)
	}
	return unmarshalResult(payload)
}

// LatestAssessment loads the most recent assessment for a deal. Returns nil
// when the deal has none.
func (s *SQLiteStore) LatestAssessment(ctx context.Context, dealID string) (*model.AssessmentResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT result FROM assessments WHERE deal_id = ?
		ORDER BY created_at DESC LIMIT 1`, dealID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest assessment for %s", dealID)
	}
	return unmarshalResult(payload)
}

// ListAssessments returns stored assessments, newest first.
func (s *SQLiteStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.AssessmentResult, error) {
	query := `SELECT result FROM assessments`
	var args []any
	if filter.DealID != "" {
		query += ` WHERE deal_id = ?`
		args = append(args, filter.DealID)
	}
	query += ` ORDER BY created_at DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments")
	}
	defer rows.Close()

	var results []model.AssessmentResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assessment")
		}
		r, err := unmarshalResult(payload)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate assessments")
	}
	return results, nil
}

// ScoreHistory returns a deal's score trajectory in ascending time order.
func (s *SQLiteStore) ScoreHistory(ctx context.Context, dealID string) ([]ScorePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, deal_id, score, grade, readiness, created_at
		FROM assessments WHERE deal_id = ?
		ORDER BY created_at ASC`, dealID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: score history for %s", dealID)
	}
	defer rows.Close()

	var points []ScorePoint
	for rows.Next() {
		var p ScorePoint
		var readiness string
		if err := rows.Scan(&p.AssessmentID, &p.DealID, &p.Score, &p.Grade, &readiness, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score point")
		}
		p.Readiness = model.Readiness(readiness)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate score history")
	}
	return points, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func unmarshalResult(payload string) (*model.AssessmentResult, error) {
	var r model.AssessmentResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal assessment payload")
	}
	return &r, nil
}
