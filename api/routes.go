package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/api/handlers/analytics"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/fault"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/metrics"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
)

// GinInjectedFaultKey 本次请求被注入故障时记录 capability
const GinInjectedFaultKey = "injected_fault"

// KeyFunc 从请求中取故障注入的子键
type KeyFunc func(c *gin.Context) string

// Route 一条被拦截的路由
type Route struct {
	Method       string
	Pattern      string
	Capability   string
	TenantScoped bool    // false 时故障预算只按 capability 匹配
	Key          KeyFunc // 可为 nil
	Handler      gin.HandlerFunc
}

// Routes 拦截路由表，顺序即注册顺序
func Routes(h *Handlers) []Route {
	return []Route{
		// 租户
		{http.MethodGet, "/tenants", fault.ListTenants, false, nil, h.Tenant.ListTenants},
		{http.MethodPost, "/tenants", fault.CreateTenant, false, nil, h.Tenant.CreateTenant},

		// Prompt
		{http.MethodGet, "/prompts", fault.ListPrompts, true, nil, h.Prompt.ListPrompts},
		{http.MethodPost, "/prompts", fault.CreatePrompt, true, nil, h.Prompt.CreatePrompt},
		{http.MethodPut, "/prompts/:id", fault.UpdatePrompt, true, nil, h.Prompt.UpdatePrompt},
		{http.MethodDelete, "/prompts/:id", fault.DeletePrompt, true, nil, h.Prompt.DeletePrompt},
		{http.MethodGet, "/prompts/:id/versions", fault.Versions, true, nil, h.Prompt.ListVersions},
		{http.MethodGet, "/prompts/:id/versions/:version/diff/:to", fault.VersionDiff, true, nil, h.Prompt.DiffVersions},
		{http.MethodPost, "/prompts/:id/versions/:version/restore", fault.Restore, true, nil, h.Prompt.RestoreVersion},
		{http.MethodPost, "/prompts/:id/usage", fault.RecordUsage, true, nil, h.Prompt.RecordUsage},
		{http.MethodGet, "/prompts/:id/activity", fault.Activity, true, nil, h.Prompt.ListActivity},

		// 评论
		{http.MethodGet, "/prompts/:id/comments", fault.ListComments, true, nil, h.Content.ListComments},
		{http.MethodPost, "/prompts/:id/comments", fault.CreateComment, true, nil, h.Content.CreateComment},
		{http.MethodPatch, "/comments/:id", fault.UpdateComment, true, nil, h.Content.UpdateComment},
		{http.MethodDelete, "/comments/:id", fault.DeleteComment, true, nil, h.Content.DeleteComment},

		// 分享
		{http.MethodGet, "/prompts/:id/shares", fault.ListShares, true, nil, h.Content.ListShares},
		{http.MethodPost, "/prompts/:id/shares", fault.CreateShare, true, nil, h.Content.CreateShare},
		{http.MethodDelete, "/prompts/:id/shares/:shareId", fault.RemoveShare, true, nil, h.Content.RemoveShare},

		// 审批
		{http.MethodGet, "/prompts/:id/approvals", fault.ListApprovals, true, nil, h.Content.ListApprovals},
		{http.MethodPost, "/prompts/:id/approvals", fault.CreateApprove, true, nil, h.Content.CreateApproval},
		{http.MethodPatch, "/approvals/:id", fault.UpdateApprove, true, nil, h.Content.UpdateApproval},

		// 统计
		{http.MethodGet, "/analytics/overview", fault.Dashboard, true, nil, h.Dashboard.GetOverview},
		{http.MethodGet, "/analytics/prompts", fault.Analytics, true, analytics.RangeKey, h.Dashboard.GetPromptAnalytics},

		// 通知
		{http.MethodGet, "/notifications", fault.Notifications, true, nil, h.Notification.ListNotifications},
		{http.MethodPatch, "/notifications", fault.MarkRead, true, nil, h.Notification.MarkRead},
	}
}

// RegisterRoutes 注册拦截路由和 /__mock 控制面
func RegisterRoutes(router *gin.Engine, faults *fault.Injector, h *Handlers) {
	for _, r := range Routes(h) {
		router.Handle(r.Method, r.Pattern, FaultGuard(faults, r), r.Handler)
	}
	registerMockRoutes(router, h)
}

// registerMockRoutes 控制面路由，不经过故障注入
func registerMockRoutes(router *gin.Engine, h *Handlers) {
	mockGroup := router.Group("/__mock")
	{
		mockGroup.GET("/faults", h.Mock.ListFaults)
		mockGroup.POST("/faults", h.Mock.ConfigureFault)
		mockGroup.DELETE("/faults", h.Mock.ClearFaults)
		mockGroup.POST("/reset", h.Mock.Reset)
		mockGroup.GET("/snapshot", h.Mock.Snapshot)
	}
}

// FaultGuard 在处理器之前消费故障预算。
// 命中时直接返回 500 纯文本，请求不会到达 store。
func FaultGuard(faults *fault.Injector, r Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenantID, key string
		if r.TenantScoped {
			tenantID = middleware.TenantIDFromGin(c)
		}
		if r.Key != nil {
			key = r.Key(c)
		}

		if !faults.Consume(r.Capability, tenantID, key) {
			c.Next()
			return
		}

		metrics.RecordInjectedFault(r.Capability)
		c.Set(GinInjectedFaultKey, r.Capability)
		c.String(http.StatusInternalServerError, "Injected failure: %s", r.Capability)
		c.Abort()
	}
}
