package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/middleware"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
	"github.com/jwalitptl/clinic-ops/pkg/messaging"
)

const readinessTimeout = 2 * time.Second

// Routes is what a resource handler needs to mount itself.
type Routes struct {
	Public    *gin.RouterGroup
	Protected *gin.RouterGroup
	Auth      *middleware.AuthMiddleware
}

// Dependency is probed by the readiness check.
type Dependency struct {
	Name  string
	Check messaging.Pinger
}

// Handler serves the operational endpoints.
type Handler struct {
	started  time.Time
	gatherer prometheus.Gatherer
	deps     []Dependency
}

// NewHandler creates a new handler instance. A nil gatherer serves the
// default registry.
func NewHandler(gatherer prometheus.Gatherer, deps ...Dependency) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{started: time.Now(), gatherer: gatherer, deps: deps}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"status": "alive",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}))
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	ready := true
	for _, d := range h.deps {
		if err := d.Check.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", d.Name).Msg("readiness check failed")
			checks[d.Name] = "down"
			ready = false
			continue
		}
		checks[d.Name] = "up"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, &Response{
			Status:  "error",
			Message: "not ready",
			Data:    gin.H{"checks": checks},
		})
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"status": "ready",
		"checks": checks,
	}))
}

func (h *Handler) MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// BindJSON binds the body into dst and records a bind error on failure.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

// ParamID parses a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (model.ID, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(errors.BadRequest("invalid "+name, err))
		return 0, false
	}
	return id, true
}

// Caller returns the authenticated identity or records an unauthorized
// error.
func Caller(c *gin.Context) (model.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(errors.Unauthorized(nil))
	}
	return id, ok
}

// Fail records err for the error middleware.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
