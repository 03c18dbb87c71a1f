package tenant

import (
	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// Service 租户处理器依赖的存储操作
type Service interface {
	ListTenants() []store.Tenant
	CreateTenant(in store.CreateTenantInput) (store.Tenant, error)
}

// TenantHandler 租户 API 处理器
type TenantHandler struct {
	service Service
}

// NewTenantHandler 创建租户处理器
func NewTenantHandler(service Service) *TenantHandler {
	return &TenantHandler{service: service}
}

// ListTenants 查询租户列表
// GET /tenants
func (h *TenantHandler) ListTenants(c *gin.Context) {
	common.ResponseSuccess(c, h.service.ListTenants())
}

// CreateTenant 创建租户
// POST /tenants
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req store.CreateTenantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tenant, err := h.service.CreateTenant(req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, tenant)
}
