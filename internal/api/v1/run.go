package v1

import (
	"fmt"

	"github.com/hepframe/hepframe/internal/core/storage"
)

// RunRequest is the body of POST /v1/runs.
type RunRequest struct {
	// Query is the benchmark query id (1-8).
	Query int `json:"query"`

	// Cores is the worker count. 0 uses every CPU of the server.
	Cores int `json:"cores"`

	// Input is a dataset path or glob on the server. Empty selects the
	// configured dataset.input.
	Input string `json:"input,omitempty"`

	// Repetitions defaults to benchmark.repetitions when 0.
	Repetitions int `json:"repetitions,omitempty"`
}

// Validate checks the request ranges. Whether Query names a registered query
// is decided by the runner.
func (r *RunRequest) Validate() error {
	if r.Query < 1 {
		return fmt.Errorf("query is required")
	}
	if r.Cores < 0 {
		return fmt.Errorf("cores must be >= 0")
	}
	if r.Repetitions < 0 {
		return fmt.Errorf("repetitions must be >= 0")
	}
	return nil
}

// QueryInfo describes one registered benchmark query.
type QueryInfo struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
	Histograms  []string `json:"histograms"`
}

// RunList is the response of GET /v1/runs.
type RunList struct {
	Runs  []*storage.Run `json:"runs"`
	Count int            `json:"count"`
}
