package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/service"
)

type ReviewHandler struct {
	base
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService, opts Options) *ReviewHandler {
	return &ReviewHandler{base: newBase(opts, "reviews"), reviewService: reviewService}
}

func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	reviews := rg.Group("/reviews")
	reviews.GET("/:id", h.Get)
	reviews.GET("/book/:book_id", h.ListByBook)
	reviews.GET("/book/:book_id/stats", h.Stats)

	reviews.POST("", authn, h.Create)
	reviews.GET("/user/me", authn, h.ListMine)
	reviews.GET("/user/:user_id", h.ListByUser)
	reviews.PUT("/:id", authn, h.Update)
	reviews.DELETE("/:id", authn, h.Delete)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CreateReviewDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	review := req.ToModel()
	created, err := h.reviewService.Create(ctx, actor, &review)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromReview(created))
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	review, err := h.reviewService.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReview(review))
}

func (h *ReviewHandler) ListByBook(c *gin.Context) {
	bookID, ok := h.paramID(c, "book_id")
	if !ok {
		return
	}
	q := newPageQuery()
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	reviews, total, err := h.reviewService.ListByBook(ctx, bookID, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromReviews(reviews), total, q))
}

func (h *ReviewHandler) ListMine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	q := newPageQuery()
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	reviews, total, err := h.reviewService.ListMine(ctx, actor, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromReviews(reviews), total, q))
}

func (h *ReviewHandler) ListByUser(c *gin.Context) {
	userID, ok := h.paramID(c, "user_id")
	if !ok {
		return
	}
	q := newPageQuery()
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	reviews, total, err := h.reviewService.ListByUser(ctx, userID, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromReviews(reviews), total, q))
}

func (h *ReviewHandler) Stats(c *gin.Context) {
	bookID, ok := h.paramID(c, "book_id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	stats, err := h.reviewService.Stats(ctx, bookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReviewDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	review, err := h.reviewService.Update(ctx, actor, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReview(review))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.reviewService.Delete(ctx, actor, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
