package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/service"
)

// DashboardHandler serves the signed-in user's own overview.
type DashboardHandler struct {
	base
	authService   service.AuthService
	borrowService service.BorrowService
	now           func() time.Time
}

func NewDashboardHandler(authService service.AuthService, borrowService service.BorrowService, opts Options) *DashboardHandler {
	return &DashboardHandler{
		base:          newBase(opts, "dashboard"),
		authService:   authService,
		borrowService: borrowService,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	dashboard := rg.Group("/user-dashboard", authn)
	dashboard.GET("/me", h.Me)
	dashboard.GET("/statistics", h.Statistics)
	dashboard.GET("/borrowed-books", h.BorrowedBooks)
}

func (h *DashboardHandler) Me(c *gin.Context) {
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

func (h *DashboardHandler) Statistics(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	stats, err := h.borrowService.UserStats(ctx, actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBorrowStats(stats))
}

func (h *DashboardHandler) BorrowedBooks(c *gin.Context) {
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
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromBorrows(borrows, h.now(), h.media), total, q))
}
