package notifications

import (
	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// Service 通知处理器依赖的存储操作
type Service interface {
	ListNotifications(q store.NotificationQuery) []store.NotificationItem
	MarkNotificationsRead(in store.MarkReadInput) ([]store.NotificationItem, error)
}

// NotificationHandler 通知处理器
type NotificationHandler struct {
	service Service
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(service Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListNotifications 查询通知列表（新通知在前）
// 解析出租户时只返回该租户的通知
// GET /notifications?recipient=&tenantId=&unread=true
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var q store.NotificationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.ResponseBadRequest(c, "invalid query: "+err.Error())
		return
	}
	if tenantID := middleware.TenantIDFromGin(c); tenantID != "" {
		q.TenantID = tenantID
	}
	common.ResponseSuccess(c, h.service.ListNotifications(q))
}

// MarkRead 标记通知为已读
// PATCH /notifications
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req store.MarkReadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if tenantID := middleware.TenantIDFromGin(c); tenantID != "" {
		req.TenantID = tenantID
	}

	items, err := h.service.MarkNotificationsRead(req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, items)
}
