package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"
)

type NotificationHandler struct {
	base
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService, opts Options) *NotificationHandler {
	return &NotificationHandler{base: newBase(opts, "notifications"), notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	notifications := rg.Group("/notifications", authn)
	notifications.GET("/me", h.mine(false))
	notifications.GET("/me/unread", h.mine(true))
	notifications.PUT("/:id/read", h.MarkAsRead)

	admin := notifications.Group("", middleware.RequireAdmin())
	admin.POST("", h.Create)
	admin.GET("", h.List)
	admin.DELETE("/:id", h.Delete)
}

func (h *NotificationHandler) mine(unreadOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
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

		list, total, err := h.notificationService.ListMine(ctx, actor, unreadOnly, q.Page, q.PageSize)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromNotifications(list), total, q))
	}
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
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

	n, err := h.notificationService.MarkAsRead(ctx, actor, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromNotification(n))
}

func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationDTO
	if !h.bindJSON(c, &req) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	n := req.ToModel()
	created, err := h.notificationService.Create(ctx, &n)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromNotification(created))
}

func (h *NotificationHandler) List(c *gin.Context) {
	q := dto.NotificationListQuery{PageQuery: newPageQuery()}
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	list, total, err := h.notificationService.List(ctx, q.Recipient, q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromNotifications(list), total, q.PageQuery))
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.notificationService.Delete(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
