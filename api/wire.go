package api

import (
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/api/handlers/analytics"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/api/handlers/content"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/api/handlers/mock"
	notificationHandlers "github.com/d-oit/do-multitenant-prompt-manager-sub000/api/handlers/notifications"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/api/handlers/prompts"
	tenantHandlers "github.com/d-oit/do-multitenant-prompt-manager-sub000/api/handlers/tenant"
)

// Handlers 所有 HTTP 处理器
type Handlers struct {
	Tenant       *tenantHandlers.TenantHandler
	Prompt       *prompts.PromptHandler
	Content      *content.Handler
	Dashboard    *analytics.DashboardHandler
	Notification *notificationHandlers.NotificationHandler
	Mock         *mock.Handler
}

// newHandlers 用同一个 store 组装全部处理器
func newHandlers(d Deps) *Handlers {
	return &Handlers{
		Tenant:       tenantHandlers.NewTenantHandler(d.Store),
		Prompt:       prompts.NewPromptHandler(d.Store),
		Content:      content.NewHandler(d.Store),
		Dashboard:    analytics.NewDashboardHandler(d.Store),
		Notification: notificationHandlers.NewNotificationHandler(d.Store),
		Mock:         mock.NewHandler(d.Store, d.Faults, d.Config.Mock.SeedPath, d.Logger),
	}
}
