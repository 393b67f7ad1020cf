package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"
)

type SettingsHandler struct {
	base
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService, opts Options) *SettingsHandler {
	return &SettingsHandler{base: newBase(opts, "settings"), settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	settings := rg.Group("/admin-settings", authn, middleware.RequireAdmin())
	settings.GET("", h.Get)
	settings.PUT("", h.Update)
}

func (h *SettingsHandler) Get(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	settings, err := h.settingsService.Update(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
