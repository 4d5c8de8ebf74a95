package postgres

// SQL queries for benchmark run storage

const (
	// querySaveRun inserts a run. ON CONFLICT DO NOTHING returns no rows
	// (sql.ErrNoRows) for a duplicate id.
	querySaveRun = `
		INSERT INTO benchmark_runs (
			id, query, cores, files, events, input,
			repetition, duration_ns, integral, started_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
		RETURNING id
	`

	queryGetRun = `
		SELECT
			id, query, cores, files, events, input,
			repetition, duration_ns, integral, started_at
		FROM benchmark_runs
		WHERE id = $1
	`

	// queryListRuns returns the newest runs first. $1 = 0 matches every query,
	// a NULL limit returns all rows.
	queryListRuns = `
		SELECT
			id, query, cores, files, events, input,
			repetition, duration_ns, integral, started_at
		FROM benchmark_runs
		WHERE ($1 = 0 OR query = $1)
		ORDER BY started_at DESC, repetition DESC
		LIMIT $2
	`

	queryRunsTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'benchmark_runs'
		)
	`
)
