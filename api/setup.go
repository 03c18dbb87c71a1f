package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/config"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/fault"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/metrics"
	middlewarepkg "github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// Deps 路由依赖
type Deps struct {
	Store  *store.Store
	Faults *fault.Injector
	Logger *zap.Logger
	Config *config.Config

	// Next 处理未拦截的请求，为空时按 Config.Mock.UpstreamURL 构造
	Next http.Handler
}

// defaultConfig 未提供配置时使用的最小配置
func defaultConfig() *config.Config {
	return &config.Config{
		Mock:    config.MockConfig{MaxPageSize: 100},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// SetupRouter 设置并返回 Gin 路由
func SetupRouter(d Deps) (*gin.Engine, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if d.Faults == nil {
		d.Faults = fault.New(d.Logger)
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Config == nil {
		d.Config = defaultConfig()
	}
	if d.Next == nil {
		next, err := NewPassthrough(d.Config.Mock.UpstreamURL, d.Logger)
		if err != nil {
			return nil, err
		}
		d.Next = next
	}

	router := gin.New()
	// 未命中的路径一律交给下游，不做尾斜杠重定向
	router.RedirectTrailingSlash = false

	collector := metrics.NewStoreCollector(d.Store)

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(middlewarepkg.RequestIDMiddleware())
	router.Use(RequestLogger(d.Logger))
	router.Use(CORS())
	if d.Config.Metrics.Enabled {
		router.Use(metrics.PrometheusMiddleware(d.Config.Metrics.Path))
	}
	router.Use(middlewarepkg.GinTenantContextMiddleware(d.Logger))
	router.Use(collector.RefreshAfterMutation())

	// 健康检查
	router.GET("/healthz", HealthCheck())

	// Prometheus 指标
	if d.Config.Metrics.Enabled {
		router.GET(d.Config.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	RegisterRoutes(router, d.Faults, newHandlers(d))
	router.NoRoute(Passthrough(d.Next))

	d.Logger.Info("mock router ready",
		zap.Int("routes", len(router.Routes())),
		zap.String("upstream", d.Config.Mock.UpstreamURL),
		zap.Bool("strict_approvals", d.Config.Mock.StrictApprovals),
	)
	return router, nil
}
