package prompts

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// Service Prompt 处理器依赖的存储操作
type Service interface {
	ListPrompts(tenantID string, q store.ListQuery) (store.PromptPage, error)
	CreatePrompt(in store.CreatePromptInput, actor *string) (store.Prompt, error)
	UpdatePrompt(tenantID, promptID string, in store.UpdatePromptInput, actor *string) (store.Prompt, error)
	DeletePrompt(tenantID, promptID string) (bool, error)
	ListVersions(tenantID, promptID string) ([]store.PromptVersion, error)
	DiffVersions(tenantID, promptID string, from, to int) (store.VersionDiff, error)
	RestoreVersion(tenantID, promptID string, version int, actor *string) (store.Prompt, error)
	RecordUsage(tenantID, promptID string, actor *string, metadata map[string]any) (store.PromptActivityEntry, error)
	ListActivity(tenantID, promptID string) ([]store.PromptActivityEntry, error)
}

// PromptHandler Prompt API 处理器
type PromptHandler struct {
	service Service
}

// NewPromptHandler 创建 Prompt 处理器
func NewPromptHandler(service Service) *PromptHandler {
	return &PromptHandler{service: service}
}

// UsageRequest 记录使用的可选请求体
type UsageRequest struct {
	Metadata map[string]any `json:"metadata"`
}

// ListPrompts 查询 Prompt 列表
// GET /prompts
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	var q store.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.ResponseBadRequest(c, "invalid query: "+err.Error())
		return
	}

	page, err := h.service.ListPrompts(middleware.TenantIDFromGin(c), q)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseList(c, common.ListResponse{
		Data:       page.Items,
		Pagination: page.Pagination,
		Sort:       page.Sort,
		Filters:    page.Filters,
	})
}

// CreatePrompt 创建 Prompt
// POST /prompts
func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	var req store.CreatePromptInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	// 请求体中的 tenantId 已参与租户解析，这里以解析结果为准
	req.TenantID = middleware.TenantIDFromGin(c)

	prompt, err := h.service.CreatePrompt(req, middleware.ActorFromGin(c))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, prompt)
}

// UpdatePrompt 部分更新 Prompt，未提供的字段保持不变
// PUT /prompts/:id
func (h *PromptHandler) UpdatePrompt(c *gin.Context) {
	var req store.UpdatePromptInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	prompt, err := h.service.UpdatePrompt(middleware.TenantIDFromGin(c), c.Param("id"), req, middleware.ActorFromGin(c))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, prompt)
}

// DeletePrompt 删除 Prompt 及其全部子记录，重复删除不报错
// DELETE /prompts/:id
func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	if _, err := h.service.DeletePrompt(middleware.TenantIDFromGin(c), c.Param("id")); err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseNoContent(c)
}

// ListVersions 查询版本历史（新版本在前）
// GET /prompts/:id/versions
func (h *PromptHandler) ListVersions(c *gin.Context) {
	versions, err := h.service.ListVersions(middleware.TenantIDFromGin(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, versions)
}

// DiffVersions 比较两个版本
// GET /prompts/:id/versions/:version/diff/:to
func (h *PromptHandler) DiffVersions(c *gin.Context) {
	from, ok := versionParam(c, "version")
	if !ok {
		return
	}
	to, ok := versionParam(c, "to")
	if !ok {
		return
	}

	diff, err := h.service.DiffVersions(middleware.TenantIDFromGin(c), c.Param("id"), from, to)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, diff)
}

// RestoreVersion 回滚到指定版本，回滚本身也会生成新版本
// POST /prompts/:id/versions/:version/restore
func (h *PromptHandler) RestoreVersion(c *gin.Context) {
	version, ok := versionParam(c, "version")
	if !ok {
		return
	}

	prompt, err := h.service.RestoreVersion(middleware.TenantIDFromGin(c), c.Param("id"), version, middleware.ActorFromGin(c))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, prompt)
}

// RecordUsage 记录一次使用
// POST /prompts/:id/usage
func (h *PromptHandler) RecordUsage(c *gin.Context) {
	var req UsageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.service.RecordUsage(middleware.TenantIDFromGin(c), c.Param("id"), middleware.ActorFromGin(c), req.Metadata)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, entry)
}

// ListActivity 查询活动日志
// GET /prompts/:id/activity
func (h *PromptHandler) ListActivity(c *gin.Context) {
	entries, err := h.service.ListActivity(middleware.TenantIDFromGin(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, entries)
}

func versionParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 1 {
		common.ResponseBadRequest(c, "invalid version: "+c.Param(name))
		return 0, false
	}
	return v, true
}
