// Package storage provides SQLite persistence for task plans.
//
// Information Hiding:
// - Schema and migration details encapsulated
// - Goal prefix index maintained internally, rebuilt on open
// - Thread-safe via sql.DB's built-in connection pooling
package storage

import (
	"context"

	"github.com/dheerajsharma2399/ai-task-planning-agent/planner"
)

// StoredPlan is a persisted plan with its storage identity.
type StoredPlan struct {
	ID          int64             `json:"id"`
	Goal        string            `json:"goal"`
	CreatedAt   string            `json:"created_at"`
	ContentHash string            `json:"content_hash"`
	Plan        *planner.TaskPlan `json:"plan"`
}

// PlanSummary is the listing view of a stored plan.
type PlanSummary struct {
	ID          int64  `json:"id"`
	Goal        string `json:"goal"`
	CreatedAt   string `json:"created_at"`
	TotalDays   int    `json:"total_days"`
	Location    string `json:"location,omitempty"`
	ContentHash string `json:"content_hash"`
}

// PlanStorage persists task plans.
type PlanStorage interface {
	// SavePlan persists a plan and returns its assigned ID.
	SavePlan(ctx context.Context, plan *planner.TaskPlan) (int64, error)

	// GetPlan returns a plan by ID. Returns nil, nil if not found.
	GetPlan(ctx context.Context, id int64) (*StoredPlan, error)

	// ListPlans returns plan summaries, newest first. A limit of 0
	// means no limit.
	ListPlans(ctx context.Context, limit int) ([]PlanSummary, error)

	// SearchByGoalPrefix returns summaries of plans whose goal starts
	// with the given prefix, case-insensitively, newest first.
	SearchByGoalPrefix(ctx context.Context, prefix string) ([]PlanSummary, error)

	// DeletePlan removes a plan. Deleting a missing plan is not an error.
	DeletePlan(ctx context.Context, id int64) error

	// CountPlans returns the number of stored plans.
	CountPlans(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}
