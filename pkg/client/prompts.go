package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/pkg/types"
)

// ListOptions Prompt 列表查询条件，零值字段不发送
type ListOptions struct {
	Search        string
	Tag           string
	MetadataKey   string
	MetadataValue string
	SortBy        string
	Order         string
	Page          int
	PageSize      int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", o.Search)
	set("tag", o.Tag)
	set("metadataKey", o.MetadataKey)
	set("metadataValue", o.MetadataValue)
	set("sortBy", o.SortBy)
	set("order", o.Order)
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	return v
}

// CreatePromptRequest 创建 Prompt 请求
type CreatePromptRequest struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Tags     []string       `json:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Archived bool           `json:"archived,omitempty"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// ListPrompts 查询 Prompt 列表
func (c *Client) ListPrompts(ctx context.Context, opts ListOptions) (*types.PromptList, error) {
	var out types.PromptList
	if err := c.do(ctx, http.MethodGet, "/prompts", opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePrompt 创建 Prompt
func (c *Client) CreatePrompt(ctx context.Context, req CreatePromptRequest) (*types.Prompt, error) {
	var out envelope[types.Prompt]
	if err := c.do(ctx, http.MethodPost, "/prompts", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdatePrompt 部分更新 Prompt。patch 中的 nil 值会以 null 发送。
func (c *Client) UpdatePrompt(ctx context.Context, id string, patch map[string]any) (*types.Prompt, error) {
	var out envelope[types.Prompt]
	if err := c.do(ctx, http.MethodPut, "/prompts/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeletePrompt 删除 Prompt，不存在时同样返回 nil
func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/prompts/"+url.PathEscape(id), nil, nil, nil)
}

// ListVersions 查询版本历史
func (c *Client) ListVersions(ctx context.Context, id string) ([]types.PromptVersion, error) {
	var out envelope[[]types.PromptVersion]
	if err := c.do(ctx, http.MethodGet, "/prompts/"+url.PathEscape(id)+"/versions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// RecordUsage 记录一次使用
func (c *Client) RecordUsage(ctx context.Context, id string, metadata map[string]any) (*types.ActivityEntry, error) {
	var body any
	if metadata != nil {
		body = map[string]any{"metadata": metadata}
	}
	var out envelope[types.ActivityEntry]
	if err := c.do(ctx, http.MethodPost, "/prompts/"+url.PathEscape(id)+"/usage", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Overview 获取租户仪表盘
func (c *Client) Overview(ctx context.Context) (*types.Overview, error) {
	var out envelope[types.Overview]
	if err := c.do(ctx, http.MethodGet, "/analytics/overview", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ConfigureFault 设置故障预算，返回当前全部预算
func (c *Client) ConfigureFault(ctx context.Context, rule types.FaultRule) ([]types.FaultRule, error) {
	var out envelope[[]types.FaultRule]
	if err := c.do(ctx, http.MethodPost, "/__mock/faults", nil, rule, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ResetMock 重新加载种子数据并清除故障预算
func (c *Client) ResetMock(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/__mock/reset", nil, nil, nil)
}
