package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops/internal/handler"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/service/user"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r handler.Routes) {
	users := r.Protected.Group("/users")
	{
		users.POST("", r.Auth.RequireRole(model.RoleAdmin), h.CreateUser)
		users.GET("/:id", h.GetUser)
	}
}

// CreateUser registers a user of any role, optionally with a doctor profile.
func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(u))
}

// GetUser returns a user to themselves or to an admin.
func (h *Handler) GetUser(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	if caller.UserID != id && caller.Role != model.RoleAdmin {
		handler.Fail(c, errors.Forbidden("cannot read another user"))
		return
	}

	u, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}
