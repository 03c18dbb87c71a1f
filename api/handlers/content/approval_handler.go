package content

import (
	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// ListApprovals 查询审批列表
// GET /prompts/:id/approvals
func (h *Handler) ListApprovals(c *gin.Context) {
	approvals, err := h.service.ListApprovals(middleware.TenantIDFromGin(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, approvals)
}

// CreateApproval 发起审批
// POST /prompts/:id/approvals
func (h *Handler) CreateApproval(c *gin.Context) {
	var req store.CreateApprovalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	approval, err := h.service.CreateApproval(middleware.TenantIDFromGin(c), c.Param("id"), req, middleware.ActorFromGin(c))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, approval)
}

// UpdateApproval 更新审批状态
// PATCH /approvals/:id
func (h *Handler) UpdateApproval(c *gin.Context) {
	var req store.UpdateApprovalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	approval, err := h.service.UpdateApproval(middleware.TenantIDFromGin(c), c.Param("id"), req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, approval)
}
