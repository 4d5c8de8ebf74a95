// Package runs serves the benchmark HTTP API: the query catalog, starting
// runs and reading back recorded runs.
package runs

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hepframe/hepframe/internal/bench"
	"github.com/hepframe/hepframe/internal/core/storage"
)

// Runner executes benchmark requests.
type Runner interface {
	Run(ctx context.Context, req bench.Request) (*bench.Result, error)
}

type Service struct {
	runner           Runner
	store            storage.RunStore
	repetitions      int
	maxBodySizeBytes int
}

// NewService wires the handlers. repetitions is used by requests that do not
// set their own.
func NewService(runner Runner, store storage.RunStore, repetitions, maxBodySizeMB int) *Service {
	if runner == nil {
		panic("runs: runner must not be nil")
	}
	if store == nil {
		panic("runs: store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1
	}
	return &Service{
		runner:           runner,
		store:            store,
		repetitions:      repetitions,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the benchmark routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/queries", s.ListQueriesHandler)
	r.POST("/v1/runs", s.CreateRunHandler)
	r.GET("/v1/runs", s.ListRunsHandler)
	r.GET("/v1/runs/:id", s.GetRunHandler)
}
