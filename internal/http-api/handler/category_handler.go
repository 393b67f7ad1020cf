package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"
)

type CategoryHandler struct {
	base
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService, opts Options) *CategoryHandler {
	return &CategoryHandler{base: newBase(opts, "categories"), categoryService: categoryService}
}

func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	categories := rg.Group("/categories")
	categories.GET("", h.List)
	categories.GET("/paginated", h.ListPage)
	categories.GET("/:id", h.Get)

	admin := categories.Group("", authn, middleware.RequireAdmin())
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

func (h *CategoryHandler) List(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	categories, err := h.categoryService.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCategories(categories))
}

func (h *CategoryHandler) ListPage(c *gin.Context) {
	q := newPageQuery()
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	categories, total, err := h.categoryService.ListPage(ctx, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromCategories(categories), total, q))
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	category, err := h.categoryService.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCategory(category))
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	category := req.ToModel()
	created, err := h.categoryService.Create(ctx, &category)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromCategory(created))
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCategoryDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	category, err := h.categoryService.Update(ctx, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCategory(category))
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.categoryService.Delete(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
