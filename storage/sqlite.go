package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dheerajsharma2399/ai-task-planning-agent/planner"
)

// SqliteStorage implements PlanStorage using SQLite.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStorage struct {
	db    *sql.DB
	goals *goalIndex
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return newStorage(db)
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	return newStorage(db)
}

func newStorage(db *sql.DB) (*SqliteStorage, error) {
	storage := &SqliteStorage{db: db, goals: newGoalIndex()}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := storage.rebuildGoalIndex(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build goal index: %w", err)
	}
	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS plans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			goal TEXT NOT NULL,
			created_at TEXT NOT NULL,
			total_days INTEGER NOT NULL,
			location TEXT,
			plan_data TEXT NOT NULL,
			metadata TEXT NOT NULL,
			content_hash TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_plans_created
		ON plans(created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_plans_hash
		ON plans(content_hash);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// rebuildGoalIndex loads all goals into the prefix index on open.
func (s *SqliteStorage) rebuildGoalIndex() error {
	rows, err := s.db.Query("SELECT id, goal FROM plans")
	if err != nil {
		return fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var goal string
		if err := rows.Scan(&id, &goal); err != nil {
			return fmt.Errorf("failed to scan goal: %w", err)
		}
		s.goals.Insert(goal, id)
	}
	return rows.Err()
}

// contentHash fingerprints the serialized plan for change detection.
func contentHash(planJSON []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(planJSON))
}

// SavePlan persists a plan and returns its assigned ID.
func (s *SqliteStorage) SavePlan(ctx context.Context, plan *planner.TaskPlan) (int64, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize plan: %w", err)
	}
	metadataJSON, err := json.Marshal(plan.Metadata)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize metadata: %w", err)
	}

	createdAt := plan.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().Format(time.RFC3339)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO plans (goal, created_at, total_days, location, plan_data, metadata, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plan.Goal,
		createdAt,
		plan.TotalDays,
		plan.Metadata.Location,
		string(planJSON),
		string(metadataJSON),
		contentHash(planJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert plan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted plan ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit plan: %w", err)
	}

	// Index only after the row is durable
	s.goals.Insert(plan.Goal, id)
	return id, nil
}

// GetPlan returns a plan by ID. Returns nil, nil if not found.
func (s *SqliteStorage) GetPlan(ctx context.Context, id int64) (*StoredPlan, error) {
	var stored StoredPlan
	var planJSON string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, goal, created_at, plan_data, content_hash FROM plans WHERE id = ?",
		id).Scan(&stored.ID, &stored.Goal, &stored.CreatedAt, &planJSON, &stored.ContentHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	var plan planner.TaskPlan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, fmt.Errorf("stored plan %d is corrupt: %w", id, err)
	}
	stored.Plan = &plan

	return &stored, nil
}

// ListPlans returns plan summaries, newest first.
func (s *SqliteStorage) ListPlans(ctx context.Context, limit int) ([]PlanSummary, error) {
	query := "SELECT id, goal, created_at, total_days, location, content_hash FROM plans ORDER BY id DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.querySummaries(ctx, query, args...)
}

// SearchByGoalPrefix returns summaries of plans whose goal starts with
// the given prefix, newest first.
func (s *SqliteStorage) SearchByGoalPrefix(ctx context.Context, prefix string) ([]PlanSummary, error) {
	ids := s.goals.Search(prefix)
	if len(ids) == 0 {
		return []PlanSummary{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		"SELECT id, goal, created_at, total_days, location, content_hash FROM plans WHERE id IN (%s) ORDER BY id DESC",
		strings.Join(placeholders, ", "))
	return s.querySummaries(ctx, query, args...)
}

func (s *SqliteStorage) querySummaries(ctx context.Context, query string, args ...interface{}) ([]PlanSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	summaries := []PlanSummary{} // Start with empty slice, not nil
	for rows.Next() {
		var summary PlanSummary
		var location sql.NullString
		err := rows.Scan(
			&summary.ID,
			&summary.Goal,
			&summary.CreatedAt,
			&summary.TotalDays,
			&location,
			&summary.ContentHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if location.Valid {
			summary.Location = location.String
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}
	return summaries, nil
}

// DeletePlan removes a plan. Deleting a missing plan is not an error.
func (s *SqliteStorage) DeletePlan(ctx context.Context, id int64) error {
	var goal string
	err := s.db.QueryRowContext(ctx, "SELECT goal FROM plans WHERE id = ?", id).Scan(&goal)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up plan: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	s.goals.Remove(goal, id)
	return nil
}

// CountPlans returns the number of stored plans.
func (s *SqliteStorage) CountPlans(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plans").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}
	return count, nil
}

// Verify SqliteStorage implements the storage interface
var _ PlanStorage = (*SqliteStorage)(nil)
