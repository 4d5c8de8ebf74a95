package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	httperr "github.com/hepframe/hepframe/internal/core/errors"
	"github.com/hepframe/hepframe/internal/schema"
	"github.com/hepframe/hepframe/internal/schema/storage"
)

type handler struct {
	registry  *schema.Registry
	compilers *schema.Compilers
}

// RegisterRequest is the body of POST /v1/layouts.
type RegisterRequest struct {
	Dataset    string `json:"dataset" binding:"required"`
	Version    int    `json:"version" binding:"required,min=1"`
	Format     string `json:"format" binding:"required,oneof=yaml protobuf"`
	Source     string `json:"source" binding:"required"`
	StrictMode bool   `json:"strict_mode"`
}

// ColumnResponse describes one compiled column.
type ColumnResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// LayoutResponse describes a registered layout. Columns are only filled in
// for single-layout responses.
type LayoutResponse struct {
	ID           string           `json:"id"`
	Dataset      string           `json:"dataset"`
	Version      int              `json:"version"`
	Format       string           `json:"format"`
	State        string           `json:"state"`
	StrictMode   bool             `json:"strict_mode"`
	Fingerprint  string           `json:"fingerprint"`
	CreatedAt    time.Time        `json:"created_at"`
	DeprecatedAt *time.Time       `json:"deprecated_at,omitempty"`
	Columns      []ColumnResponse `json:"columns,omitempty"`
}

func fail(c *gin.Context, status int, errType, msg string) {
	c.JSON(status, httperr.ErrorResponse{ErrorType: errType, Message: msg})
}

// ref parses the :dataset/:version path. "latest" is version 0.
func ref(c *gin.Context) (schema.Ref, bool) {
	r := schema.Ref{Dataset: c.Param("dataset")}
	if v := c.Param("version"); v != "latest" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, `version must be a non-negative integer or "latest"`)
			return r, false
		}
		r.Version = n
	}
	return r, true
}

// lookupError writes the response for a failed registry call.
func lookupError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, schema.ErrNotFound):
		fail(c, http.StatusNotFound, httperr.HttpNotFoundError, err.Error())
	case errors.Is(err, schema.ErrAlreadyExists), errors.Is(err, storage.ErrReadOnly):
		fail(c, http.StatusConflict, httperr.HttpInvalidRequestError, err.Error())
	default:
		slog.Error("[Layouts] "+op+" failed", "error", err)
		fail(c, http.StatusInternalServerError, httperr.HttpInternalError, op+" failed")
	}
}

// get handles GET /v1/layouts/:dataset/:version.
func (h *handler) get(c *gin.Context) {
	r, ok := ref(c)
	if !ok {
		return
	}
	def, err := h.registry.Get(c.Request.Context(), r.Dataset, r.Version)
	if err != nil {
		lookupError(c, "lookup", err)
		return
	}
	layout, err := h.compilers.Compile(c.Request.Context(), def)
	if err != nil {
		slog.Error("[Layouts] Stored layout does not compile", "ref", def.Ref().String(), "error", err)
		fail(c, http.StatusUnprocessableEntity, httperr.HttpSchemaError, err.Error())
		return
	}
	c.JSON(http.StatusOK, response(def, layout))
}

// list handles GET /v1/layouts?dataset=...
func (h *handler) list(c *gin.Context) {
	defs, err := h.registry.List(c.Request.Context(), c.Query("dataset"))
	if err != nil {
		lookupError(c, "list", err)
		return
	}
	out := make([]LayoutResponse, len(defs))
	for i, d := range defs {
		out[i] = response(d, nil)
	}
	c.JSON(http.StatusOK, out)
}

// register handles POST /v1/layouts. The source must compile before it is
// stored.
func (h *handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, err.Error())
		return
	}

	def := schema.Definition{
		Dataset:    req.Dataset,
		Version:    req.Version,
		Format:     schema.Format(req.Format),
		Source:     []byte(req.Source),
		StrictMode: req.StrictMode,
	}
	layout, err := h.compilers.Compile(c.Request.Context(), &def)
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, httperr.HttpSchemaError, err.Error())
		return
	}

	stored, err := h.registry.Register(c.Request.Context(), def)
	if err != nil {
		lookupError(c, "register", err)
		return
	}
	slog.Info("[Layouts] Registered", "dataset", stored.Dataset, "version", stored.Version, "columns", len(layout.Columns))
	c.JSON(http.StatusCreated, response(stored, layout))
}

// deprecate handles POST /v1/layouts/:dataset/:version/deprecate.
func (h *handler) deprecate(c *gin.Context) {
	r, ok := ref(c)
	if !ok {
		return
	}
	if r.Version == 0 {
		fail(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, "deprecate needs an explicit version")
		return
	}
	if err := h.registry.Deprecate(c.Request.Context(), r); err != nil {
		lookupError(c, "deprecate", err)
		return
	}
	slog.Info("[Layouts] Deprecated", "dataset", r.Dataset, "version", r.Version)
	c.Status(http.StatusNoContent)
}

func response(d *schema.Definition, layout *schema.Layout) LayoutResponse {
	resp := LayoutResponse{
		ID:           d.ID,
		Dataset:      d.Dataset,
		Version:      d.Version,
		Format:       string(d.Format),
		State:        string(d.State),
		StrictMode:   d.StrictMode,
		Fingerprint:  d.Fingerprint,
		CreatedAt:    d.CreatedAt,
		DeprecatedAt: d.DeprecatedAt,
	}
	if layout != nil {
		resp.Columns = make([]ColumnResponse, len(layout.Columns))
		for i, col := range layout.Columns {
			resp.Columns[i] = ColumnResponse{Name: col.Name, Type: col.Type(), Required: col.Required}
		}
	}
	return resp
}
