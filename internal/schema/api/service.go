// Package api serves the layout registry over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/hepframe/hepframe/internal/schema"
)

// Service exposes registered layouts under /v1/layouts.
type Service struct {
	registry  *schema.Registry
	compilers *schema.Compilers
}

func NewService(reg *schema.Registry, cs *schema.Compilers) *Service {
	if reg == nil || cs == nil {
		panic("layout service requires a registry and compilers")
	}
	return &Service{registry: reg, compilers: cs}
}

// RegisterRoutes mounts the layout routes on r. A version of 0 or "latest"
// resolves to the newest active version.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	h := &handler{registry: s.registry, compilers: s.compilers}

	g := r.Group("/v1/layouts")
	g.GET("", h.list)
	g.POST("", h.register)
	g.GET("/:dataset/:version", h.get)
	g.POST("/:dataset/:version/deprecate", h.deprecate)
}
