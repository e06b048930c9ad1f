package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops/internal/handler"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/service/user"
	"github.com/jwalitptl/clinic-ops/pkg/auth"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

type Handler struct {
	users *user.Service
	jwt   auth.JWTService
	ttl   time.Duration
}

func NewHandler(users *user.Service, jwt auth.JWTService, ttl time.Duration) *Handler {
	return &Handler{users: users, jwt: jwt, ttl: ttl}
}

func (h *Handler) RegisterRoutes(r handler.Routes) {
	authGroup := r.Public.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
	r.Protected.GET("/auth/me", h.Me)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        *model.User `json:"user"`
}

// Register is open self sign-up. Only patients may register themselves;
// staff accounts are created by an admin through /users.
func (h *Handler) Register(c *gin.Context) {
	var req model.CreateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if req.Role != model.RolePatient {
		handler.Fail(c, errors.Forbidden("only patients can self-register"))
		return
	}

	u, err := h.users.CreateUser(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	h.issue(c, http.StatusCreated, u)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	h.issue(c, http.StatusOK, u)
}

func (h *Handler) Me(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	u, err := h.users.GetUser(c.Request.Context(), caller.UserID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) issue(c *gin.Context, status int, u *model.User) {
	token, err := h.jwt.GenerateAccessToken(model.Identity{UserID: u.ID, Role: u.Role})
	if err != nil {
		handler.Fail(c, errors.Internal(err))
		return
	}
	c.JSON(status, handler.NewSuccessResponse(TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.ttl.Seconds()),
		User:        u,
	}))
}
