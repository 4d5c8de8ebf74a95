package postgres

import (
	"fmt"
	"time"

	"github.com/hepframe/hepframe/internal/core/storage"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRunRow scans a benchmark_runs row. Compatible with both sql.Row and sql.Rows.
func scanRunRow(row scanner) (*storage.Run, error) {
	var run storage.Run
	var durationNS int64

	err := row.Scan(
		&run.ID,
		&run.Query,
		&run.Cores,
		&run.Files,
		&run.Events,
		&run.Input,
		&run.Repetition,
		&durationNS,
		&run.Integral,
		&run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run row: %w", err)
	}

	run.Duration = time.Duration(durationNS)
	run.StartedAt = run.StartedAt.UTC()
	return &run, nil
}
