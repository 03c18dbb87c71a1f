package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/logger"
	middlewarepkg "github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/middleware"
)

// RequestLogger 请求日志中间件
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = logger.Get()
	}
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log := logger.WithContext(c.Request.Context(), base)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if tenantID := middlewarepkg.TenantIDFromGin(c); tenantID != "" {
			fields = append(fields, zap.String("tenant_id", tenantID))
		}
		if c.FullPath() == "" {
			fields = append(fields, zap.Bool("passthrough", true))
		}
		if capability := c.GetString(GinInjectedFaultKey); capability != "" {
			log.Warn("HTTP Request", append(fields, zap.String("injected_fault", capability))...)
			return
		}
		log.Info("HTTP Request", fields...)
	}
}

// CORS 跨域中间件
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowedOrigins := getEnvList("CORS_ALLOW_ORIGINS")
		origin := c.GetHeader("Origin")

		switch {
		case len(allowedOrigins) == 0:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && stringInSlice(origin, allowedOrigins):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		allowedHeaders := defaultIfEmpty(
			getEnvList("CORS_ALLOW_HEADERS"),
			[]string{
				"Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
				"Accept", "Origin", "Cache-Control", "X-Requested-With",
				middlewarepkg.HeaderTenantID, middlewarepkg.HeaderRequestID,
			},
		)
		c.Writer.Header().Set("Access-Control-Allow-Headers", strings.Join(allowedHeaders, ", "))

		allowedMethods := defaultIfEmpty(
			getEnvList("CORS_ALLOW_METHODS"),
			[]string{"POST", "OPTIONS", "GET", "PUT", "DELETE", "PATCH"},
		)
		c.Writer.Header().Set("Access-Control-Allow-Methods", strings.Join(allowedMethods, ", "))
		c.Writer.Header().Set("Access-Control-Expose-Headers", strings.Join([]string{
			middlewarepkg.HeaderRequestID, HeaderPassthrough,
		}, ", "))
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
