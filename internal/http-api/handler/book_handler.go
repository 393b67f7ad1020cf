package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"
	"libraryhub/internal/media"
)

type BookHandler struct {
	base
	bookService service.BookService
}

func NewBookHandler(bookService service.BookService, opts Options) *BookHandler {
	return &BookHandler{base: newBase(opts, "books"), bookService: bookService}
}

func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	books := rg.Group("/books")
	books.GET("", h.List)
	books.GET("/recommended", h.Recommended)
	books.GET("/popular", h.Popular)
	books.GET("/new-collection", h.NewCollection)
	books.GET("/category/:category_id", h.ListByCategory)
	books.GET("/:id", h.Get)
	books.GET("/:id/is-available", h.IsAvailable)

	books.GET("/download/pdf/:id", authn, h.DownloadPDF)
	books.GET("/play/audio/:id", authn, h.PlayAudio)

	admin := books.Group("", authn, middleware.RequireAdmin())
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

func (h *BookHandler) List(c *gin.Context) {
	q := dto.BookQuery{PageQuery: newPageQuery()}
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	filter := repository.BookFilter{CategoryID: q.CategoryID, Format: q.Format, Search: q.Search}
	books, total, err := h.bookService.List(ctx, filter, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromBooks(books, h.media), total, q.PageQuery))
}

func (h *BookHandler) ListByCategory(c *gin.Context) {
	categoryID, ok := h.paramID(c, "category_id")
	if !ok {
		return
	}
	q := newPageQuery()
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	books, total, err := h.bookService.ListByCategory(ctx, categoryID, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromBooks(books, h.media), total, q))
}

func (h *BookHandler) Get(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	book, err := h.bookService.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBook(book, h.media))
}

func (h *BookHandler) IsAvailable(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	book, err := h.bookService.IsAvailable(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAvailabilityResponse(book))
}

func (h *BookHandler) Recommended(c *gin.Context) {
	h.shelf(c, h.bookService.Recommended)
}

func (h *BookHandler) Popular(c *gin.Context) {
	h.shelf(c, h.bookService.Popular)
}

func (h *BookHandler) NewCollection(c *gin.Context) {
	h.shelf(c, h.bookService.NewCollection)
}

func (h *BookHandler) shelf(c *gin.Context, load func(ctx context.Context) ([]models.Book, error)) {
	ctx, cancel := h.context(c)
	defer cancel()

	books, err := load(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBooks(books, h.media))
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	book := req.ToModel()
	created, err := h.bookService.Create(ctx, &book)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromBook(created, h.media))
}

func (h *BookHandler) Update(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	book, err := h.bookService.Update(ctx, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBook(book, h.media))
}

func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.bookService.Delete(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookHandler) DownloadPDF(c *gin.Context) {
	h.serveMedia(c, service.MediaPDF)
}

func (h *BookHandler) PlayAudio(c *gin.Context) {
	h.serveMedia(c, service.MediaAudio)
}

// serveMedia streams a stored file or redirects to an external one.
func (h *BookHandler) serveMedia(c *gin.Context, kind string) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	ref, err := h.bookService.MediaPath(ctx, id, kind)
	if err != nil {
		h.fail(c, err)
		return
	}

	src, err := h.media.Resolve(ref)
	switch {
	case errors.Is(err, media.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": kind + " file not found"})
		return
	case errors.Is(err, media.ErrInvalidPath):
		h.log.Warn("rejected media path", zap.Int64("book_id", id), zap.String("kind", kind))
		c.JSON(http.StatusNotFound, gin.H{"error": kind + " file not found"})
		return
	case err != nil:
		h.fail(c, err)
		return
	}

	if src.URL != "" {
		c.Redirect(http.StatusTemporaryRedirect, src.URL)
		return
	}
	c.File(src.Path)
}
