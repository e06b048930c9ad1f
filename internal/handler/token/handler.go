package token

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops/internal/handler"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/service/token"
)

type Handler struct {
	svc *token.Service
}

func NewHandler(svc *token.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r handler.Routes) {
	r.Public.GET("/token-queue", h.TodayQueue)
	r.Protected.POST("/token-queue/assign", r.Auth.RequireRole(model.RoleAdmin), h.AssignToken)
}

func (h *Handler) TodayQueue(c *gin.Context) {
	queue, err := h.svc.TodayQueue(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewListResponse(queue))
}

func (h *Handler) AssignToken(c *gin.Context) {
	var req model.AssignTokenRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	assignment, err := h.svc.AssignToken(c.Request.Context(), req.AppointmentID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(assignment))
}
