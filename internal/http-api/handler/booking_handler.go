package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/service"
)

type BookingHandler struct {
	base
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService, opts Options) *BookingHandler {
	return &BookingHandler{base: newBase(opts, "bookings"), bookingService: bookingService}
}

func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	bookings := rg.Group("/bookings", authn)
	bookings.POST("", h.Create)
	bookings.GET("/me", h.ListMine)
	bookings.GET("/:id", h.Get)
	bookings.PUT("/:id", h.Update)
	bookings.PUT("/:id/cancel", h.Cancel)
	bookings.DELETE("/:id", h.Delete)

	admin := bookings.Group("", middleware.RequireAdmin())
	admin.GET("", h.List)
	admin.GET("/expired", h.ListExpired)
	admin.GET("/book/:book_id", h.ListByBook)
	admin.PUT("/:id/fulfill", h.Fulfill)
}

func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CreateBookingDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	booking, err := h.bookingService.Create(ctx, actor, req.BookID, req.ExpectedAvailableDate.Time)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.response(booking))
}

func (h *BookingHandler) Get(c *gin.Context) {
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

	booking, err := h.bookingService.Get(ctx, actor, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.response(booking))
}

func (h *BookingHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookingDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	booking, err := h.bookingService.Update(ctx, actor, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.response(booking))
}

func (h *BookingHandler) Cancel(c *gin.Context) {
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

	booking, err := h.bookingService.Cancel(ctx, actor, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.response(booking))
}

func (h *BookingHandler) Fulfill(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	booking, err := h.bookingService.Fulfill(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.response(booking))
}

func (h *BookingHandler) Delete(c *gin.Context) {
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

	if err := h.bookingService.Delete(ctx, actor, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
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

	bookings, total, err := h.bookingService.ListMine(ctx, actor, q.Page, q.PageSize)
	h.page(c, bookings, total, q, err)
}

func (h *BookingHandler) List(c *gin.Context) {
	q := dto.BookingListQuery{PageQuery: newPageQuery()}
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	filter := service.BookingListFilter{UserID: q.UserID, BookID: q.BookID, Status: q.Status}
	bookings, total, err := h.bookingService.List(ctx, filter, q.Page, q.PageSize)
	h.page(c, bookings, total, q.PageQuery, err)
}

func (h *BookingHandler) ListExpired(c *gin.Context) {
	q := newPageQuery()
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	bookings, total, err := h.bookingService.ListExpired(ctx, q.Page, q.PageSize)
	h.page(c, bookings, total, q, err)
}

func (h *BookingHandler) ListByBook(c *gin.Context) {
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

	bookings, total, err := h.bookingService.ListByBook(ctx, bookID, q.Page, q.PageSize)
	h.page(c, bookings, total, q, err)
}

func (h *BookingHandler) response(b *models.Booking) dto.BookingResponse {
	return dto.FromBooking(b, h.bookingService.Now(), h.media)
}

func (h *BookingHandler) page(c *gin.Context, bookings []models.Booking, total int64, q dto.PageQuery, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	data := dto.FromBookings(bookings, h.bookingService.Now(), h.media)
	c.JSON(http.StatusOK, dto.NewPagedResponse(data, total, q))
}
