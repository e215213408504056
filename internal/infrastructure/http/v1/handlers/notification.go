package handlers

import (
	"github.com/gin-gonic/gin"

	"stockcontrol/internal/domain/notification"
	"stockcontrol/internal/infrastructure/http/v1/dto"
)

// NotificationHandler handles notification listing and on-demand scans.
type NotificationHandler struct {
	BaseHandler
	repo     notification.Repository
	notifier *notification.Notifier
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(repo notification.Repository, notifier *notification.Notifier) *NotificationHandler {
	return &NotificationHandler{repo: repo, notifier: notifier}
}

// List returns the caller's notifications, newest first.
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	notifications, err := h.repo.ListByUser(c.Request.Context(), h.UserID(c), page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		items[i] = dto.FromNotification(&notifications[i])
	}

	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// MarkRead marks one notification as read for the caller.
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), id, h.UserID(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "notification read")
}

// Scan triggers an on-demand low-stock scan for the caller's company.
// A scan already in flight yields zero alerts, not an error.
// POST /api/v1/notifications/scan
func (h *NotificationHandler) Scan(c *gin.Context) {
	created, err := h.notifier.ScanCompany(c.Request.Context(), h.CompanyID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ScanResponse{AlertsCreated: created})
}
