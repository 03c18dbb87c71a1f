package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gin 上下文键
const (
	GinTenantIDKey = "tenant_id"
	GinActorKey    = "actor"
)

// GinTenantContextMiddleware 解析请求的租户与调用方并注入 gin.Context 和 context.Context。
// 这里只负责解析，不做拦截：缺少租户时由具体路由决定返回什么错误。
func GinTenantContextMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		scope := ResolveScope(c.Request)

		c.Set(GinTenantIDKey, scope.TenantID)
		c.Set(GinActorKey, scope.Actor)
		c.Request = c.Request.WithContext(WithScope(c.Request.Context(), scope))

		if scope.TenantID != "" {
			log.Debug("tenant resolved", zap.String("tenant_id", scope.TenantID), zap.String("path", c.Request.URL.Path))
		}
		c.Next()
	}
}

// TenantIDFromGin 当前请求的租户 ID，可能为空
func TenantIDFromGin(c *gin.Context) string {
	return c.GetString(GinTenantIDKey)
}

// ActorFromGin 当前请求的调用方，未携带 Authorization 时为 nil
func ActorFromGin(c *gin.Context) *string {
	if v, ok := c.Get(GinActorKey); ok {
		if actor, ok := v.(*string); ok && actor != nil {
			copied := *actor
			return &copied
		}
	}
	return nil
}
