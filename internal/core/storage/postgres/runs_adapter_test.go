package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hepframe/hepframe/internal/core/storage"
)

func sampleRun() *storage.Run {
	return &storage.Run{
		ID:         uuid.MustParse("6f1c2a5e-4d0b-4c7e-9a55-1b1f0f6c2d11"),
		Query:      6,
		Cores:      4,
		Files:      10,
		Events:     53446198,
		Input:      "data/Run2012B_SingleMu_*.parquet",
		Repetition: 2,
		Duration:   1500 * time.Millisecond,
		Integral:   decimal.RequireFromString("106892396"),
		StartedAt:  time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC),
	}
}

func TestAdapter_SaveRun(t *testing.T) {
	tests := []struct {
		name       string
		mockResult func(mock sqlmock.Sqlmock, run *storage.Run)
		assertions func(t *testing.T, err error)
	}{
		{
			name: "success",
			mockResult: func(mock sqlmock.Sqlmock, run *storage.Run) {
				mock.ExpectQuery(regexp.QuoteMeta(querySaveRun)).
					WithArgs(
						run.ID,
						run.Query,
						run.Cores,
						run.Files,
						run.Events,
						run.Input,
						run.Repetition,
						run.Duration.Nanoseconds(),
						run.Integral,
						run.StartedAt,
					).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(run.ID.String()))
			},
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name: "duplicate maps to ErrDuplicate",
			mockResult: func(mock sqlmock.Sqlmock, run *storage.Run) {
				mock.ExpectQuery(regexp.QuoteMeta(querySaveRun)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, storage.ErrDuplicate)
			},
		},
		{
			name: "database error is wrapped",
			mockResult: func(mock sqlmock.Sqlmock, run *storage.Run) {
				mock.ExpectQuery(regexp.QuoteMeta(querySaveRun)).
					WillReturnError(errors.New("connection reset"))
			},
			assertions: func(t *testing.T, err error) {
				require.ErrorContains(t, err, "failed to save run")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, mock, db := newTestAdapter(t)
			defer db.Close()

			run := sampleRun()
			tt.mockResult(mock, run)
			tt.assertions(t, adapter.SaveRun(context.Background(), run))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_GetRun(t *testing.T) {
	adapter, mock, db := newTestAdapter(t)
	defer db.Close()

	want := sampleRun()
	mock.ExpectQuery(regexp.QuoteMeta(queryGetRun)).
		WithArgs(want.ID).
		WillReturnRows(sqlmock.NewRows(runRowColumns()).AddRow(runRow(want)...))

	got, err := adapter.GetRun(context.Background(), want.ID)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Duration, got.Duration)
	require.True(t, want.Integral.Equal(got.Integral))
	require.Equal(t, want.StartedAt, got.StartedAt)

	missing := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(queryGetRun)).
		WithArgs(missing).
		WillReturnRows(sqlmock.NewRows(runRowColumns()))
	_, err = adapter.GetRun(context.Background(), missing)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_ListRuns(t *testing.T) {
	adapter, mock, db := newTestAdapter(t)
	defer db.Close()

	first := sampleRun()
	second := sampleRun()
	second.ID = uuid.New()
	second.Repetition = 1

	mock.ExpectQuery(regexp.QuoteMeta(queryListRuns)).
		WithArgs(6, 10).
		WillReturnRows(sqlmock.NewRows(runRowColumns()).
			AddRow(runRow(first)...).
			AddRow(runRow(second)...))

	runs, err := adapter.ListRuns(context.Background(), 6, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, 2, runs[0].Repetition)
	require.Equal(t, second.ID, runs[1].ID)

	// no limit is passed as NULL
	mock.ExpectQuery(regexp.QuoteMeta(queryListRuns)).
		WithArgs(0, nil).
		WillReturnRows(sqlmock.NewRows(runRowColumns()))
	runs, err = adapter.ListRuns(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Empty(t, runs)

	mock.ExpectQuery(regexp.QuoteMeta(queryListRuns)).
		WithArgs(0, nil).
		WillReturnRows(sqlmock.NewRows(runRowColumns()).
			AddRow(runRow(first)...).
			RowError(0, errors.New("broken row")))
	_, err = adapter.ListRuns(context.Background(), 0, 0)
	require.ErrorContains(t, err, "error iterating runs")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAdapter_RequiresRunsTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryRunsTableExists)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = NewAdapter(db)
	require.ErrorContains(t, err, "did you run migrations?")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAdapter_PreparesStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(queryRunsTableExists)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectPrepare(regexp.QuoteMeta(querySaveRun))
	mock.ExpectPrepare(regexp.QuoteMeta(queryGetRun))
	mock.ExpectPrepare(regexp.QuoteMeta(queryListRuns))

	adapter, err := NewAdapter(db)
	require.NoError(t, err)

	mock.ExpectClose()
	require.NoError(t, adapter.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAdapter_PrepareFailureClosesPrepared(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryRunsTableExists)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectPrepare(regexp.QuoteMeta(querySaveRun)).WillBeClosed()
	mock.ExpectPrepare(regexp.QuoteMeta(queryGetRun)).WillReturnError(errors.New("syntax error"))

	_, err = NewAdapter(db)
	require.ErrorContains(t, err, "prepare getRun")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CloseReportsDatabaseError(t *testing.T) {
	adapter, mock, _ := newTestAdapter(t)

	dbCloseErr := errors.New("close failed")
	mock.ExpectClose().WillReturnError(dbCloseErr)

	err := adapter.Close()
	require.ErrorIs(t, err, dbCloseErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func newTestAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adapter := &Adapter{
		db:           db,
		stmtSaveRun:  mustPrepareStmt(t, db, mock, querySaveRun),
		stmtGetRun:   mustPrepareStmt(t, db, mock, queryGetRun),
		stmtListRuns: mustPrepareStmt(t, db, mock, queryListRuns),
	}

	return adapter, mock, db
}

func mustPrepareStmt(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, query string) *sql.Stmt {
	t.Helper()

	mock.ExpectPrepare(regexp.QuoteMeta(query))
	stmt, err := db.Prepare(query)
	require.NoError(t, err)

	return stmt
}

func runRowColumns() []string {
	return []string{
		"id",
		"query",
		"cores",
		"files",
		"events",
		"input",
		"repetition",
		"duration_ns",
		"integral",
		"started_at",
	}
}

func runRow(run *storage.Run) []driver.Value {
	return []driver.Value{
		run.ID.String(),
		int64(run.Query),
		int64(run.Cores),
		int64(run.Files),
		int64(run.Events),
		run.Input,
		int64(run.Repetition),
		run.Duration.Nanoseconds(),
		run.Integral.String(),
		run.StartedAt,
	}
}
