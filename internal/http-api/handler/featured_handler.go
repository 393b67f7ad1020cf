package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"
)

type FeaturedHandler struct {
	base
	featuredService service.FeaturedService
}

func NewFeaturedHandler(featuredService service.FeaturedService, opts Options) *FeaturedHandler {
	return &FeaturedHandler{base: newBase(opts, "featured"), featuredService: featuredService}
}

func (h *FeaturedHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	featured := rg.Group("/featured-books")
	featured.GET("", h.List)
	featured.GET("/:id", h.Get)
	featured.POST("", authn, middleware.RequireAdmin(), h.Add)
	featured.PUT("/:id", authn, middleware.RequireAdmin(), h.Update)
	featured.DELETE("/:id", authn, middleware.RequireAdmin(), h.Remove)
}

func (h *FeaturedHandler) List(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	list, err := h.featuredService.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromFeaturedList(list, h.media))
}

func (h *FeaturedHandler) Get(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	f, err := h.featuredService.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromFeatured(f, h.media))
}

func (h *FeaturedHandler) Add(c *gin.Context) {
	var req dto.CreateFeaturedDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	f, err := h.featuredService.Add(ctx, req.BookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromFeatured(f, h.media))
}

func (h *FeaturedHandler) Update(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateFeaturedDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	f, err := h.featuredService.Update(ctx, id, req.BookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromFeatured(f, h.media))
}

func (h *FeaturedHandler) Remove(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.featuredService.Remove(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
