package analytics

import (
	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// Service 统计处理器依赖的存储操作
type Service interface {
	Overview(tenantID string) (store.Overview, error)
	PromptAnalytics(tenantID string, r store.AnalyticsRange) (store.PromptAnalytics, error)
}

// DashboardHandler 仪表盘 API 处理器
type DashboardHandler struct {
	service Service
}

// NewDashboardHandler 创建处理器
func NewDashboardHandler(service Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetOverview 获取租户仪表盘
// @Summary 获取租户仪表盘数据
// @Tags Analytics
// @Produce json
// @Param X-Tenant-ID header string true "租户 ID"
// @Success 200 {object} common.DataResponse{data=store.Overview}
// @Failure 400 {object} common.ErrorBody
// @Failure 404 {object} common.ErrorBody
// @Router /analytics/overview [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	overview, err := h.service.Overview(middleware.TenantIDFromGin(c))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, overview)
}

// GetPromptAnalytics 获取 Prompt 使用统计
// @Summary 按区间统计 Prompt 使用次数
// @Tags Analytics
// @Produce json
// @Param X-Tenant-ID header string true "租户 ID"
// @Param range query string false "统计区间" Enums(7d, 30d, 90d) default(30d)
// @Success 200 {object} common.DataResponse{data=store.PromptAnalytics}
// @Failure 400 {object} common.ErrorBody
// @Router /analytics/prompts [get]
func (h *DashboardHandler) GetPromptAnalytics(c *gin.Context) {
	r, err := store.ParseRange(c.Query("range"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	result, err := h.service.PromptAnalytics(middleware.TenantIDFromGin(c), r)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, result)
}

// RangeKey 统计区间作为故障注入的子键，缺省为 30d
func RangeKey(c *gin.Context) string {
	return c.DefaultQuery("range", string(store.Range30d))
}
