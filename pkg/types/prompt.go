// Package types 定义客户端使用的接口数据结构
package types

import "time"

// Prompt 提示词
type Prompt struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Tags      []string       `json:"tags"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Version   int            `json:"version"`
	Archived  bool           `json:"archived"`
	CreatedBy *string        `json:"createdBy"`
}

// PromptList GET /prompts 的完整响应
type PromptList struct {
	Data       []Prompt   `json:"data"`
	Pagination Pagination `json:"pagination"`
	Sort       Sort       `json:"sort"`
	Filters    Filters    `json:"filters"`
}

// PromptVersion 版本快照
type PromptVersion struct {
	Version   int            `json:"version"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Tags      []string       `json:"tags"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	CreatedBy *string        `json:"createdBy"`
}

// ActivityEntry 活动日志
type ActivityEntry struct {
	ID        string         `json:"id"`
	PromptID  string         `json:"promptId"`
	TenantID  string         `json:"tenantId"`
	Actor     *string        `json:"actor"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TagCount 标签使用次数
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Overview 租户仪表盘
type Overview struct {
	TenantID string `json:"tenantId"`
	Totals   struct {
		Prompts          int `json:"prompts"`
		ArchivedPrompts  int `json:"archivedPrompts"`
		Versions         int `json:"versions"`
		Comments         int `json:"comments"`
		OpenComments     int `json:"openComments"`
		Shares           int `json:"shares"`
		PendingApprovals int `json:"pendingApprovals"`
		UsageEvents      int `json:"usageEvents"`
	} `json:"totals"`
	TopTags        []TagCount      `json:"topTags"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
}

// FaultRule 故障预算
type FaultRule struct {
	Capability string `json:"capability"`
	TenantID   string `json:"tenantId,omitempty"`
	Key        string `json:"key,omitempty"`
	Count      int    `json:"count"`
}
