package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDuplicate is returned when a run with the same id already exists.
var ErrDuplicate = errors.New("run already exists")

// ErrNotFound is returned when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Run is one timed execution of a benchmark query.
type Run struct {
	ID         uuid.UUID       `json:"id"`
	Query      int             `json:"query"`
	Cores      int             `json:"cores"`
	Files      int             `json:"files"`
	Events     int             `json:"events"`
	Input      string          `json:"input"`
	Repetition int             `json:"repetition"`
	Duration   time.Duration   `json:"duration_ns"`
	Integral   decimal.Decimal `json:"integral"`
	StartedAt  time.Time       `json:"started_at"`
}

// RunStore persists benchmark runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)

	// ListRuns returns the newest runs first. query 0 matches every query;
	// limit <= 0 means no limit.
	ListRuns(ctx context.Context, query int, limit int) ([]*Run, error)
}
