package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/shopfloor/internal/logging"
	"github.com/me/shopfloor/pkg/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by DeleteRun when no run has the given id.
var ErrNotFound = errors.New("not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Every connection to ":memory:" is a separate database.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logging.ForComponent(logger, "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Run CRUD ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	problemJSON, err := json.Marshal(run.Problem)
	if err != nil {
		return fmt.Errorf("marshal problem: %w", err)
	}
	outcomeJSON, err := json.Marshal(run.Outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	violations := run.Violations
	if violations == nil {
		violations = []string{}
	}
	violationsJSON, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("marshal violations: %w", err)
	}

	sum := run.Summary()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, algorithm, problem, outcome, violations, task_count, makespan, infeasible, violation_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, string(run.Algorithm),
		string(problemJSON), string(outcomeJSON), string(violationsJSON),
		sum.TaskCount, sum.Makespan, boolToInt(sum.Infeasible), len(violations),
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns the run with the given id, or nil if it does not exist.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	var run model.Run
	var algorithm, problemJSON, outcomeJSON, violationsJSON, createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, algorithm, problem, outcome, violations, created_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Name, &algorithm, &problemJSON, &outcomeJSON, &violationsJSON, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.Algorithm = model.Algorithm(algorithm)
	if err := json.Unmarshal([]byte(problemJSON), &run.Problem); err != nil {
		return nil, fmt.Errorf("unmarshal problem: %w", err)
	}
	if err := json.Unmarshal([]byte(outcomeJSON), &run.Outcome); err != nil {
		return nil, fmt.Errorf("unmarshal outcome: %w", err)
	}
	if err := json.Unmarshal([]byte(violationsJSON), &run.Violations); err != nil {
		return nil, fmt.Errorf("unmarshal violations: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &run, nil
}

// ListRuns returns run summaries, newest first, and the total number of
// runs matching opts.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]model.RunSummary, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var whereClauses []string
	var countArgs []any
	if opts.Algorithm != "" {
		whereClauses = append(whereClauses, "algorithm = ?")
		countArgs = append(countArgs, opts.Algorithm)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+whereSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT id, name, algorithm, task_count, makespan, infeasible, created_at
		FROM runs` + whereSQL + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	runs := []model.RunSummary{}
	for rows.Next() {
		var sum model.RunSummary
		var algorithm, createdAt string
		var infeasible int
		if err := rows.Scan(&sum.ID, &sum.Name, &algorithm, &sum.TaskCount, &sum.Makespan, &infeasible, &createdAt); err != nil {
			return nil, 0, err
		}
		sum.Algorithm = model.Algorithm(algorithm)
		sum.Infeasible = infeasible != 0
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, sum)
	}
	return runs, total, rows.Err()
}

// DeleteRun removes a run. It returns an error wrapping ErrNotFound when
// no such run exists.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
