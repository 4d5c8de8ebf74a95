package runs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	v1 "github.com/hepframe/hepframe/internal/api/v1"
	"github.com/hepframe/hepframe/internal/bench"
	httperr "github.com/hepframe/hepframe/internal/core/errors"
	"github.com/hepframe/hepframe/internal/core/storage"
	"github.com/hepframe/hepframe/internal/queries"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgRunFailed      = "Benchmark run failed"
	defaultListLimit  = 100
)

// apiError carries the HTTP error shape from a helper back to the handler.
type apiError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *apiError) Error() string {
	return e.message
}

// ListQueriesHandler handles GET /v1/queries.
func (s *Service) ListQueriesHandler(c *gin.Context) {
	all := queries.All()
	out := make([]v1.QueryInfo, 0, len(all))
	for _, q := range all {
		out = append(out, v1.QueryInfo{
			ID:          q.ID,
			Name:        q.Name,
			Description: q.Description,
			Columns:     q.Columns,
			Histograms:  q.Titles,
		})
	}
	c.JSON(http.StatusOK, gin.H{"queries": out})
}

// CreateRunHandler handles POST /v1/runs. The run executes synchronously and
// the response carries its timings.
func (s *Service) CreateRunHandler(c *gin.Context) {
	req, apiErr := s.parseRunRequest(c)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	if req.Repetitions == 0 {
		req.Repetitions = s.repetitions
	}

	res, err := s.runner.Run(c.Request.Context(), bench.Request{
		Query:       req.Query,
		Cores:       req.Cores,
		Input:       req.Input,
		Repetitions: req.Repetitions,
	})
	if err != nil {
		writeError(c, runError(err))
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (s *Service) parseRunRequest(c *gin.Context) (*v1.RunRequest, *apiError) {
	maxBytes := int64(s.maxBodySizeBytes)
	bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBytes+1))
	if err != nil {
		slog.Error("[API] Failed to read request body", "error", err)
		return nil, &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}
	if int64(len(bodyBytes)) > maxBytes {
		return nil, &apiError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidRequestError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req v1.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("[API] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidRequestError,
			message:    msgInvalidJSON,
		}
	}
	if err := req.Validate(); err != nil {
		return nil, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidRequestError,
			message:    err.Error(),
		}
	}
	return &req, nil
}

// detailer is implemented by layout validation errors.
type detailer interface {
	Details() map[string]interface{}
}

// runError maps a runner error onto the API error shape.
func runError(err error) *apiError {
	e := &apiError{message: err.Error()}
	switch {
	case errors.Is(err, bench.ErrInvalidRequest):
		e.statusCode, e.errorType = http.StatusBadRequest, httperr.HttpInvalidRequestError
	case errors.Is(err, queries.ErrUnknownQuery):
		e.statusCode, e.errorType = http.StatusNotFound, httperr.HttpUnknownQueryError
		e.details = map[string]interface{}{"valid": queries.IDs()}
	case errors.Is(err, context.DeadlineExceeded):
		e.statusCode, e.errorType = http.StatusGatewayTimeout, httperr.HttpInternalError
	default:
		e.errorType = httperr.HTTPErrorType(err)
		switch e.errorType {
		case httperr.HttpDatasetNotFound:
			e.statusCode = http.StatusNotFound
		case httperr.HttpSchemaError:
			e.statusCode = http.StatusUnprocessableEntity
			var d detailer
			if errors.As(err, &d) {
				e.details = d.Details()
			}
		default:
			slog.Error("[API] Run failed", "error", err)
			e.statusCode = http.StatusInternalServerError
			e.message = msgRunFailed
			e.details = err.Error()
		}
	}
	return e
}

// ListRunsHandler handles GET /v1/runs?query=N&limit=M.
func (s *Service) ListRunsHandler(c *gin.Context) {
	var params struct {
		Query int `form:"query" binding:"min=0"`
		Limit int `form:"limit" binding:"min=0"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidRequestError,
			message:    "Invalid query parameters",
			details:    err.Error(),
		})
		return
	}
	if params.Limit == 0 {
		params.Limit = defaultListLimit
	}

	list, err := s.store.ListRuns(c.Request.Context(), params.Query, params.Limit)
	if err != nil {
		slog.Error("[API] Failed to list runs", "query", params.Query, "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    "Failed to list runs",
		})
		return
	}
	if list == nil {
		list = []*storage.Run{}
	}

	c.JSON(http.StatusOK, v1.RunList{Runs: list, Count: len(list)})
}

// GetRunHandler handles GET /v1/runs/:id.
func (s *Service) GetRunHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidRequestError,
			message:    "id must be a UUID",
		})
		return
	}

	run, err := s.store.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(c, &apiError{
				statusCode: http.StatusNotFound,
				errorType:  httperr.HttpNotFoundError,
				message:    err.Error(),
			})
			return
		}
		slog.Error("[API] Failed to get run", "id", id, "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    "Failed to get run",
		})
		return
	}

	c.JSON(http.StatusOK, run)
}

func writeError(c *gin.Context, err *apiError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
