package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"curaframe/internal/evaluation"
	txcontext "curaframe/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// PostgresHistoryStore persists evaluation results in PostgreSQL.
// Violations and warnings are stored as JSONB.
type PostgresHistoryStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed history store.
func NewPostgres(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execer joins the caller's transaction when ctx carries one.
func (s *PostgresHistoryStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Migrate creates the evaluation_results table and its indexes if missing.
func (s *PostgresHistoryStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate evaluation_results: %w", err)
	}
	return nil
}

func (s *PostgresHistoryStore) Save(ctx context.Context, result *evaluation.Result) error {
	if result == nil {
		return ErrNilResult
	}
	violations, err := json.Marshal(nonNilViolations(result.Violations))
	if err != nil {
		return fmt.Errorf("marshal violations: %w", err)
	}
	warnings, err := json.Marshal(nonNilStrings(result.Warnings))
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	query := `
		INSERT INTO evaluation_results (id, candidate_name, population, status, strict, notes, violations, warnings, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			violations = EXCLUDED.violations,
			warnings = EXCLUDED.warnings
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		result.ID, result.CandidateName, result.Population, string(result.Status), result.Strict,
		result.Notes, violations, warnings, result.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("save evaluation result: %w", err)
	}
	return nil
}

// SaveAll persists results atomically: either every result is stored or
// none is.
func (s *PostgresHistoryStore) SaveAll(ctx context.Context, results []*evaluation.Result) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		for _, r := range results {
			if err := s.Save(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

const selectColumns = `SELECT id, candidate_name, population, status, strict, notes, violations, warnings, evaluated_at FROM evaluation_results`

func (s *PostgresHistoryStore) ListByCandidate(ctx context.Context, candidateName string, limit int) ([]*evaluation.Result, error) {
	query := selectColumns + ` WHERE candidate_name = $1 ORDER BY evaluated_at DESC`
	args := []any{candidateName}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

func (s *PostgresHistoryStore) ListRecent(ctx context.Context, limit int) ([]*evaluation.Result, error) {
	query := selectColumns + ` ORDER BY evaluated_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

func (s *PostgresHistoryStore) query(ctx context.Context, query string, args ...any) ([]*evaluation.Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list evaluation results: %w", err)
	}
	defer rows.Close()

	out := make([]*evaluation.Result, 0)
	for rows.Next() {
		var (
			r          evaluation.Result
			id         uuid.UUID
			status     string
			violations []byte
			warnings   []byte
		)
		if err := rows.Scan(&id, &r.CandidateName, &r.Population, &status, &r.Strict,
			&r.Notes, &violations, &warnings, &r.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("scan evaluation result: %w", err)
		}
		r.ID = id
		r.Status = evaluation.Status(status)
		if err := json.Unmarshal(violations, &r.Violations); err != nil {
			return nil, fmt.Errorf("decode violations for %s: %w", id, err)
		}
		if err := json.Unmarshal(warnings, &r.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings for %s: %w", id, err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation results: %w", err)
	}
	return out, nil
}

func nonNilViolations(v []evaluation.Violation) []evaluation.Violation {
	if v == nil {
		return []evaluation.Violation{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
