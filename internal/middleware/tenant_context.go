package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// 租户与调用方在请求中的位置
const (
	HeaderTenantID      = "X-Tenant-ID"
	QueryTenantID       = "tenantId"
	HeaderAuthorization = "Authorization"

	// CurrentUser 携带 Authorization 头时的调用方标识，令牌本身不做校验
	CurrentUser = "current-user"

	maxPeekBody = 1 << 20
)

type tenantContextKey struct{}

type actorContextKey struct{}

// RequestScope 一次请求解析出的租户和调用方
type RequestScope struct {
	TenantID string
	Actor    *string
}

// WithScope 把租户和调用方写入 context
func WithScope(ctx context.Context, scope RequestScope) context.Context {
	ctx = context.WithValue(ctx, tenantContextKey{}, scope.TenantID)
	return context.WithValue(ctx, actorContextKey{}, scope.Actor)
}

// TenantFromContext 读取租户 ID
func TenantFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tenantContextKey{}).(string)
	return id
}

// ActorFromContext 读取调用方
func ActorFromContext(ctx context.Context) *string {
	actor, _ := ctx.Value(actorContextKey{}).(*string)
	return actor
}

// ResolveScope 依次从 X-Tenant-ID 头、tenantId 查询参数、JSON 请求体中的 tenantId 解析租户。
// 读取请求体后会还原，后续处理器仍可正常绑定。
func ResolveScope(r *http.Request) RequestScope {
	scope := RequestScope{TenantID: strings.TrimSpace(r.Header.Get(HeaderTenantID))}
	if scope.TenantID == "" {
		scope.TenantID = strings.TrimSpace(r.URL.Query().Get(QueryTenantID))
	}
	if scope.TenantID == "" && hasJSONBody(r) {
		scope.TenantID = peekBodyTenant(r)
	}
	if strings.TrimSpace(r.Header.Get(HeaderAuthorization)) != "" {
		actor := CurrentUser
		scope.Actor = &actor
	}
	return scope
}

func hasJSONBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.Contains(ct, "json")
}

func peekBodyTenant(r *http.Request) string {
	// 超出上限的部分留在原 Body 中，拼接后交给处理器
	body := r.Body
	data, err := io.ReadAll(io.LimitReader(body, maxPeekBody))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(data), body), body}
	if err != nil {
		return ""
	}

	var peek struct {
		TenantID string `json:"tenantId"`
	}
	if json.Unmarshal(data, &peek) != nil {
		return ""
	}
	return strings.TrimSpace(peek.TenantID)
}
