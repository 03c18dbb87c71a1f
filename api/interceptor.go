package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/metrics"
)

// HeaderPassthrough 标记未被拦截的响应
const HeaderPassthrough = "X-Mock-Passthrough"

// notInterceptedMessage 没有配置上游时的错误信息
const notInterceptedMessage = "route not intercepted"

// NewPassthrough 构造未拦截请求的下游处理器。
// upstream 为空时返回 404，否则反向代理到 upstream。
func NewPassthrough(upstream string, logger *zap.Logger) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	upstream = strings.TrimSpace(upstream)
	if upstream == "" {
		return http.HandlerFunc(notIntercepted), nil
	}

	target, err := url.Parse(upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q", upstream)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ModifyResponse = func(resp *http.Response) error {
		resp.Header.Set(HeaderPassthrough, "true")
		return nil
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("upstream request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSONError(w, http.StatusBadGateway, "upstream unavailable")
	}
	return proxy, nil
}

// Passthrough NoRoute 处理器，把请求原样交给 next
func Passthrough(next http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.RecordPassthrough(c.Request.Method)
		next.ServeHTTP(c.Writer, c.Request)
	}
}

func notIntercepted(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, http.StatusNotFound, notInterceptedMessage)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set(HeaderPassthrough, "true")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(common.ErrorBody{Error: message})
}
