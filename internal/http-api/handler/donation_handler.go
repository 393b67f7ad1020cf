package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/service"
)

type DonationHandler struct {
	base
	donationService service.DonationService
}

func NewDonationHandler(donationService service.DonationService, opts Options) *DonationHandler {
	return &DonationHandler{base: newBase(opts, "donations"), donationService: donationService}
}

func (h *DonationHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	donations := rg.Group("/donations", authn)
	donations.POST("", h.Create)
	donations.GET("/me", h.ListMine)
	donations.GET("/:id", h.Get)
	donations.PUT("/:id", h.Update)
	donations.DELETE("/:id", h.Delete)

	admin := donations.Group("", middleware.RequireAdmin())
	admin.GET("", h.List)
	admin.GET("/pending", h.listStatus(models.DonationPending))
	admin.GET("/approved", h.listStatus(models.DonationApproved))
	admin.PUT("/:id/status", h.UpdateStatus)
	admin.PUT("/:id/approve", h.Approve)
	admin.PUT("/:id/reject", h.Reject)
}

func (h *DonationHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CreateDonationDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	donation := req.ToModel()
	created, err := h.donationService.Create(ctx, actor, &donation)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromDonation(created))
}

func (h *DonationHandler) Get(c *gin.Context) {
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

	donation, err := h.donationService.Get(ctx, actor, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDonation(donation))
}

func (h *DonationHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDonationDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	donation, err := h.donationService.Update(ctx, actor, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDonation(donation))
}

func (h *DonationHandler) Delete(c *gin.Context) {
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

	if err := h.donationService.Delete(ctx, actor, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DonationHandler) ListMine(c *gin.Context) {
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

	donations, total, err := h.donationService.ListMine(ctx, actor, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromDonations(donations), total, q))
}

func (h *DonationHandler) List(c *gin.Context) {
	q := dto.DonationListQuery{PageQuery: newPageQuery()}
	if !h.bindQuery(c, &q) {
		return
	}
	h.list(c, service.DonationListFilter{UserID: q.UserID, Status: q.Status}, q.PageQuery)
}

func (h *DonationHandler) listStatus(status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := newPageQuery()
		if !h.bindQuery(c, &q) {
			return
		}
		h.list(c, service.DonationListFilter{Status: status}, q)
	}
}

func (h *DonationHandler) list(c *gin.Context, filter service.DonationListFilter, q dto.PageQuery) {
	ctx, cancel := h.context(c)
	defer cancel()

	donations, total, err := h.donationService.List(ctx, filter, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromDonations(donations), total, q))
}

func (h *DonationHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDonationStatusDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	donation, err := h.donationService.UpdateStatus(ctx, id, req.Status, req.AdminNotes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDonation(donation))
}

func (h *DonationHandler) Approve(c *gin.Context) {
	h.decide(c, h.donationService.Approve)
}

func (h *DonationHandler) Reject(c *gin.Context) {
	h.decide(c, h.donationService.Reject)
}

// decide accepts an empty body; admin notes are optional.
func (h *DonationHandler) decide(c *gin.Context, apply func(ctx context.Context, id int64, adminNotes *string) (*models.Donation, error)) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.DonationDecisionDTO
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	donation, err := apply(ctx, id, req.AdminNotes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDonation(donation))
}
