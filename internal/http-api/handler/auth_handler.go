package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"
)

type AuthHandler struct {
	base
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService, opts Options) *AuthHandler {
	return &AuthHandler{base: newBase(opts, "auth"), authService: authService}
}

// RegisterRoutes mounts /auth. limit guards login, authn resolves the bearer token.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authn, limit gin.HandlerFunc) {
	auth := rg.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", limit, h.Login)
	auth.POST("/register-admin", authn, middleware.RequireAdmin(), h.RegisterAdmin)
	auth.GET("/me", authn, h.Me)
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.authService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAuthResponse(token, user))
}

// RegisterAdmin creates another ADMIN account; the caller must be an admin.
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.authService.RegisterAdmin(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAuthResponse(token, user))
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	token, user, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuthResponse(token, user))
}

func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.authService.GetUser(ctx, actor.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}
