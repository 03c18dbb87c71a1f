// Package client 模拟后端的 Go 客户端。
//
// 5xx 响应（包括注入的故障）按指数退避重试，4xx 直接以 *APIError 返回。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// 请求头
const (
	HeaderTenantID      = "X-Tenant-ID"
	HeaderAuthorization = "Authorization"

	injectedPrefix = "Injected failure"
)

// Client 模拟后端客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	retries    int
	interval   time.Duration
}

// Option 客户端配置选项
type Option func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout 设置请求超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTenant 设置默认租户
func WithTenant(tenantID string) Option {
	return func(c *Client) {
		c.headers[HeaderTenantID] = tenantID
	}
}

// WithAuthToken 设置 Bearer 令牌，服务端只检查是否存在
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.headers[HeaderAuthorization] = "Bearer " + token
	}
}

// WithMaxRetries 设置 5xx 的最大重试次数，0 表示不重试
func WithMaxRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
	}
}

// WithRetryInterval 设置首次重试间隔
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		c.interval = d
	}
}

// New 创建客户端
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    map[string]string{"User-Agent": "prompt-mock-client/1.0"},
		retries:    3,
		interval:   100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError 非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Injected 是否为注入的故障
func (e *APIError) Injected() bool {
	return e.StatusCode == http.StatusInternalServerError && strings.HasPrefix(e.Message, injectedPrefix)
}

// IsNotFound 判断错误是否为 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsInjected 判断错误是否为注入的故障
func IsInjected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Injected()
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.interval),
		backoff.WithMaxInterval(2*time.Second),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), ctx)
}

// do 发送请求并把 data 解码到 out，out 为 nil 时忽略响应体
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		payload = data
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("创建请求失败: %w", err))
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("读取响应失败: %w", err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return apiError(resp.StatusCode, data)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(apiError(resp.StatusCode, data))
		}
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return backoff.Permanent(fmt.Errorf("解析JSON响应失败: %w", err))
		}
		return nil
	}

	return backoff.Retry(operation, c.newBackOff(ctx))
}

func apiError(status int, data []byte) *APIError {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return &APIError{StatusCode: status, Message: body.Error}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(data))}
}
