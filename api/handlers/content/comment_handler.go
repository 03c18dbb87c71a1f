package content

import (
	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// ListComments 查询评论列表
// GET /prompts/:id/comments
func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.service.ListComments(middleware.TenantIDFromGin(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, comments)
}

// CreateComment 创建评论
// POST /prompts/:id/comments
func (h *Handler) CreateComment(c *gin.Context) {
	var req store.CreateCommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.service.CreateComment(middleware.TenantIDFromGin(c), c.Param("id"), req, middleware.ActorFromGin(c))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, comment)
}

// UpdateComment 修改评论内容或解决状态
// PATCH /comments/:id
func (h *Handler) UpdateComment(c *gin.Context) {
	var req store.UpdateCommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.service.UpdateComment(middleware.TenantIDFromGin(c), c.Param("id"), req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, comment)
}

// DeleteComment 删除评论及其所有回复
// DELETE /comments/:id
func (h *Handler) DeleteComment(c *gin.Context) {
	removed, err := h.service.DeleteComment(middleware.TenantIDFromGin(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, DeleteCommentResponse{Removed: removed})
}
