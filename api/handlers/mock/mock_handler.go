package mock

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/fault"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/logger"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/seed"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// FormatTOML 快照的 TOML 输出
const FormatTOML = "toml"

// Handler /__mock 控制面处理器，这些接口本身不参与故障注入
type Handler struct {
	store    *store.Store
	faults   *fault.Injector
	seedPath string
	logger   *zap.Logger
}

// NewHandler 创建控制面处理器，seedPath 为空时使用内置种子
func NewHandler(s *store.Store, faults *fault.Injector, seedPath string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: s, faults: faults, seedPath: seedPath, logger: log}
}

// ListFaults 查看剩余故障预算
// GET /__mock/faults
func (h *Handler) ListFaults(c *gin.Context) {
	common.ResponseSuccess(c, h.faults.Rules())
}

// ConfigureFault 设置故障预算，count 为 0 时清除
// POST /__mock/faults
func (h *Handler) ConfigureFault(c *gin.Context) {
	var rule fault.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		common.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := h.faults.Configure(rule); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	logger.WithContext(c.Request.Context(), h.logger).Info("fault configured",
		zap.String("capability", rule.Capability),
		zap.String("tenant_id", rule.TenantID),
		zap.String("key", rule.Key),
		zap.Int("count", rule.Count),
	)
	common.ResponseSuccess(c, h.faults.Rules())
}

// ClearFaults 清除全部故障预算
// DELETE /__mock/faults
func (h *Handler) ClearFaults(c *gin.Context) {
	h.faults.Reset()
	common.ResponseNoContent(c)
}

// Reset 重新加载种子数据并清除故障预算
// POST /__mock/reset
func (h *Handler) Reset(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.logger)
	if err := seed.Apply(h.store, h.seedPath); err != nil {
		log.Error("reset failed", zap.Error(err))
		common.ResponseError(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.faults.Reset()

	log.Info("mock state reset", zap.String("seed_path", h.seedPath))
	common.ResponseSuccess(c, h.store.Snapshot())
}

// Snapshot 导出数据概览，?format=toml 时返回 TOML
// GET /__mock/snapshot
func (h *Handler) Snapshot(c *gin.Context) {
	snap := h.store.Snapshot()
	if c.Query("format") != FormatTOML {
		common.ResponseSuccess(c, snap)
		return
	}

	data, err := snap.MarshalTOML()
	if err != nil {
		common.ResponseError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/toml; charset=utf-8", data)
}
