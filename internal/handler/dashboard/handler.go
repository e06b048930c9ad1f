package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops/internal/handler"
	"github.com/jwalitptl/clinic-ops/internal/service/dashboard"
)

type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r handler.Routes) {
	r.Protected.GET("/dashboard/stats", h.Stats)
}

// Stats returns the counters for the caller's role.
func (h *Handler) Stats(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), caller.Role)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
