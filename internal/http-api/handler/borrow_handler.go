package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/service"
)

type BorrowHandler struct {
	base
	borrowService service.BorrowService
	now           func() time.Time
}

func NewBorrowHandler(borrowService service.BorrowService, opts Options) *BorrowHandler {
	return &BorrowHandler{
		base:          newBase(opts, "borrow"),
		borrowService: borrowService,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (h *BorrowHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	borrow := rg.Group("/borrow", authn)
	borrow.POST("/create", h.Create)
	borrow.PUT("/return", h.Return)
	borrow.PUT("/extend_due_date", h.Extend)
	borrow.GET("/user/me", h.ListMine)
	borrow.GET("/retrieve/:id", h.Get)

	admin := borrow.Group("", middleware.RequireAdmin())
	admin.GET("/list", h.List)
	admin.GET("/active", h.ListActive)
	admin.GET("/overdue", h.ListOverdue)
	admin.GET("/stats", h.Stats)
	admin.PUT("/accept", h.Accept)
	admin.PUT("/activate", h.Activate)
	admin.PUT("/reject", h.Reject)
}

func (h *BorrowHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CreateBorrowDTO
	if !h.bindJSON(c, &req) {
		return
	}
	days := 0
	if req.Days != nil {
		days = *req.Days
	}
	ctx, cancel := h.context(c)
	defer cancel()

	borrow, err := h.borrowService.Create(ctx, actor, req.BookID, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromBorrow(borrow, h.now(), h.media))
}

func (h *BorrowHandler) Return(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q dto.BookRefQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	borrow, err := h.borrowService.Return(ctx, actor, q.BookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBorrow(borrow, h.now(), h.media))
}

func (h *BorrowHandler) Extend(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q dto.BookRefQuery
	if !h.bindQuery(c, &q) {
		return
	}
	extend := 0
	if q.ExtendDays != nil {
		extend = *q.ExtendDays
	}
	ctx, cancel := h.context(c)
	defer cancel()

	borrow, err := h.borrowService.Extend(ctx, actor, q.BookID, extend)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBorrow(borrow, h.now(), h.media))
}

func (h *BorrowHandler) ListMine(c *gin.Context) {
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

	borrows, total, err := h.borrowService.ListMine(ctx, actor, q.Page, q.PageSize)
	h.page(c, borrows, total, q, err)
}

func (h *BorrowHandler) Get(c *gin.Context) {
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

	borrow, err := h.borrowService.Get(ctx, actor, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBorrow(borrow, h.now(), h.media))
}

func (h *BorrowHandler) List(c *gin.Context) {
	q := dto.BorrowListQuery{PageQuery: newPageQuery()}
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	filter := service.BorrowListFilter{UserID: q.UserID, Status: q.Status}
	borrows, total, err := h.borrowService.List(ctx, filter, q.Page, q.PageSize)
	h.page(c, borrows, total, q.PageQuery, err)
}

func (h *BorrowHandler) ListActive(c *gin.Context) {
	q := newPageQuery()
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	borrows, total, err := h.borrowService.ListActive(ctx, q.Page, q.PageSize)
	h.page(c, borrows, total, q, err)
}

func (h *BorrowHandler) ListOverdue(c *gin.Context) {
	q := newPageQuery()
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	borrows, total, err := h.borrowService.ListOverdue(ctx, q.Page, q.PageSize)
	h.page(c, borrows, total, q, err)
}

func (h *BorrowHandler) Stats(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	stats, err := h.borrowService.Stats(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *BorrowHandler) Accept(c *gin.Context) {
	h.decide(c, h.borrowService.Accept)
}

func (h *BorrowHandler) Activate(c *gin.Context) {
	h.decide(c, h.borrowService.Activate)
}

func (h *BorrowHandler) Reject(c *gin.Context) {
	h.decide(c, h.borrowService.Reject)
}

type borrowTransition func(ctx context.Context, userID, bookID int64) (*models.Borrow, error)

func (h *BorrowHandler) decide(c *gin.Context, transition borrowTransition) {
	var q dto.BorrowRefQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	borrow, err := transition(ctx, q.UserID, q.BookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBorrow(borrow, h.now(), h.media))
}

func (h *BorrowHandler) page(c *gin.Context, borrows []models.Borrow, total int64, q dto.PageQuery, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromBorrows(borrows, h.now(), h.media), total, q))
}
