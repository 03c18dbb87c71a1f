package content

import (
	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// ListShares 查询分享列表
// GET /prompts/:id/shares
func (h *Handler) ListShares(c *gin.Context) {
	shares, err := h.service.ListShares(middleware.TenantIDFromGin(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, shares)
}

// CreateShare 创建分享，返回该 Prompt 的完整分享列表
// POST /prompts/:id/shares
func (h *Handler) CreateShare(c *gin.Context) {
	var req store.CreateShareInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tenantID, promptID := middleware.TenantIDFromGin(c), c.Param("id")
	if _, err := h.service.CreateShare(tenantID, promptID, req, middleware.ActorFromGin(c)); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	shares, err := h.service.ListShares(tenantID, promptID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, shares)
}

// RemoveShare 移除分享，返回剩余的分享列表
// DELETE /prompts/:id/shares/:shareId
func (h *Handler) RemoveShare(c *gin.Context) {
	tenantID, promptID := middleware.TenantIDFromGin(c), c.Param("id")
	if _, err := h.service.RemoveShare(tenantID, promptID, c.Param("shareId")); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	shares, err := h.service.ListShares(tenantID, promptID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, shares)
}
