package store

import (
	"maps"
	"slices"
	"time"
)

// Tenant 租户，所有资源的隔离边界
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// Prompt 租户下的 Prompt
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

// PromptVersion 版本快照，按版本号倒序保存
type PromptVersion struct {
	Version   int            `json:"version"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Tags      []string       `json:"tags"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	CreatedBy *string        `json:"createdBy"`
}

// PromptComment 评论，ParentID 构成回复树
type PromptComment struct {
	ID        string    `json:"id"`
	PromptID  string    `json:"promptId"`
	TenantID  string    `json:"tenantId"`
	ParentID  *string   `json:"parentId"`
	Body      string    `json:"body"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Resolved  bool      `json:"resolved"`
}

// ShareTargetType 分享对象类型
type ShareTargetType string

const (
	ShareTargetUser   ShareTargetType = "user"
	ShareTargetEmail  ShareTargetType = "email"
	ShareTargetTenant ShareTargetType = "tenant"
)

// Valid 是否为已知类型
func (t ShareTargetType) Valid() bool {
	switch t {
	case ShareTargetUser, ShareTargetEmail, ShareTargetTenant:
		return true
	}
	return false
}

// ShareRole 分享角色
type ShareRole string

const (
	ShareRoleViewer   ShareRole = "viewer"
	ShareRoleEditor   ShareRole = "editor"
	ShareRoleApprover ShareRole = "approver"
)

// Valid 是否为已知角色
func (r ShareRole) Valid() bool {
	switch r {
	case ShareRoleViewer, ShareRoleEditor, ShareRoleApprover:
		return true
	}
	return false
}

// PromptShare 分享记录
type PromptShare struct {
	ID               string          `json:"id"`
	PromptID         string          `json:"promptId"`
	TenantID         string          `json:"tenantId"`
	TargetType       ShareTargetType `json:"targetType"`
	TargetIdentifier string          `json:"targetIdentifier"`
	Role             ShareRole       `json:"role"`
	CreatedBy        string          `json:"createdBy"`
	CreatedAt        time.Time       `json:"createdAt"`
	ExpiresAt        *time.Time      `json:"expiresAt"`
}

// ApprovalStatus 审批状态
type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "pending"
	ApprovalApproved         ApprovalStatus = "approved"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalChangesRequested ApprovalStatus = "changes_requested"
)

// Valid 是否为已知状态
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalChangesRequested:
		return true
	}
	return false
}

// PromptApproval 审批记录
type PromptApproval struct {
	ID          string         `json:"id"`
	PromptID    string         `json:"promptId"`
	TenantID    string         `json:"tenantId"`
	RequestedBy string         `json:"requestedBy"`
	Approver    string         `json:"approver"`
	Status      ApprovalStatus `json:"status"`
	Message     *string        `json:"message"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ActionUsageRecorded 使用记录动作
const ActionUsageRecorded = "usage_recorded"

// PromptActivityEntry 活动日志，只追加，按时间倒序
type PromptActivityEntry struct {
	ID        string         `json:"id"`
	PromptID  string         `json:"promptId"`
	TenantID  string         `json:"tenantId"`
	Actor     *string        `json:"actor"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NotificationItem 站内通知
type NotificationItem struct {
	ID        string         `json:"id"`
	TenantID  *string        `json:"tenantId"`
	Recipient string         `json:"recipient"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
	ReadAt    *time.Time     `json:"readAt"`
	CreatedAt time.Time      `json:"createdAt"`
}

// 通知类型
const (
	NotificationShareCreated      = "share_created"
	NotificationApprovalRequested = "approval_requested"
	NotificationApprovalUpdated   = "approval_updated"
)

// ============================================================================
// 深拷贝，store 之外拿到的都是副本
// ============================================================================

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}

// cloneMetadata 只拷贝第一层，嵌套值按不可变处理
func cloneMetadata(md map[string]any) map[string]any {
	if md == nil {
		return nil
	}
	return maps.Clone(md)
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (p Prompt) clone() Prompt {
	p.Tags = cloneTags(p.Tags)
	p.Metadata = cloneMetadata(p.Metadata)
	p.CreatedBy = cloneStringPtr(p.CreatedBy)
	return p
}

func (v PromptVersion) clone() PromptVersion {
	v.Tags = cloneTags(v.Tags)
	v.Metadata = cloneMetadata(v.Metadata)
	v.CreatedBy = cloneStringPtr(v.CreatedBy)
	return v
}

func (c PromptComment) clone() PromptComment {
	c.ParentID = cloneStringPtr(c.ParentID)
	return c
}

func (s PromptShare) clone() PromptShare {
	s.ExpiresAt = cloneTimePtr(s.ExpiresAt)
	return s
}

func (a PromptApproval) clone() PromptApproval {
	a.Message = cloneStringPtr(a.Message)
	return a
}

func (e PromptActivityEntry) clone() PromptActivityEntry {
	e.Actor = cloneStringPtr(e.Actor)
	e.Metadata = cloneMetadata(e.Metadata)
	return e
}

func (n NotificationItem) clone() NotificationItem {
	n.TenantID = cloneStringPtr(n.TenantID)
	n.Metadata = cloneMetadata(n.Metadata)
	n.ReadAt = cloneTimePtr(n.ReadAt)
	return n
}

// snapshotOf 根据 Prompt 当前状态生成版本快照
func snapshotOf(p *Prompt, at time.Time, by *string) PromptVersion {
	return PromptVersion{
		Version:   p.Version,
		Title:     p.Title,
		Body:      p.Body,
		Tags:      cloneTags(p.Tags),
		Metadata:  cloneMetadata(p.Metadata),
		CreatedAt: at,
		CreatedBy: cloneStringPtr(by),
	}
}
