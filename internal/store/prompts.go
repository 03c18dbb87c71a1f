package store

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
)

// CreatePromptInput 创建 Prompt 参数
type CreatePromptInput struct {
	TenantID  string         `json:"tenantId"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Tags      []string       `json:"tags"`
	Metadata  map[string]any `json:"metadata"`
	Archived  bool           `json:"archived"`
	CreatedBy *string        `json:"createdBy"`
}

// UpdatePromptInput 局部更新参数。未出现的字段保持不变；
// metadata 可以显式传 null 清空。
type UpdatePromptInput struct {
	Title    omit.Val[string]             `json:"title"`
	Body     omit.Val[string]             `json:"body"`
	Tags     omit.Val[[]string]           `json:"tags"`
	Metadata omitnull.Val[map[string]any] `json:"metadata"`
	Archived omit.Val[bool]               `json:"archived"`
}

// Empty 是否没有任何字段
func (in UpdatePromptInput) Empty() bool {
	return in.Title.IsUnset() && in.Body.IsUnset() && in.Tags.IsUnset() &&
		in.Metadata.IsUnset() && in.Archived.IsUnset()
}

// GetPrompt 查询单个 Prompt
func (s *Store) GetPrompt(tenantID, promptID string) (Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return Prompt{}, err
	}
	return rec.prompt.clone(), nil
}

// CreatePrompt 创建 Prompt，版本号为 1 并写入第一个版本快照
func (s *Store) CreatePrompt(in CreatePromptInput, actor *string) (Prompt, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Prompt{}, common.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return Prompt{}, common.NewValidationError("body is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.tenantLocked(in.TenantID, true); err != nil {
		return Prompt{}, err
	}

	createdBy := in.CreatedBy
	if createdBy == nil {
		createdBy = actor
	}
	now := s.now()
	p := Prompt{
		ID:        s.ids.Next(PrefixPrompt),
		TenantID:  in.TenantID,
		Title:     in.Title,
		Body:      in.Body,
		Tags:      cloneTags(in.Tags),
		Metadata:  cloneMetadata(in.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
		Archived:  in.Archived,
		CreatedBy: cloneStringPtr(createdBy),
	}
	rec := &promptRecord{
		prompt:   p,
		versions: []PromptVersion{snapshotOf(&p, now, createdBy)},
	}
	s.insertPromptLocked(rec)

	s.log.Debug("prompt created", zap.String("tenant_id", p.TenantID), zap.String("prompt_id", p.ID))
	return p.clone(), nil
}

// UpdatePrompt 合并提供的字段，版本号加一并在历史最前面插入新快照
func (s *Store) UpdatePrompt(tenantID, promptID string, in UpdatePromptInput, actor *string) (Prompt, error) {
	if title, ok := in.Title.Get(); ok && strings.TrimSpace(title) == "" {
		return Prompt{}, common.NewValidationError("title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return Prompt{}, err
	}

	p := &rec.prompt
	if v, ok := in.Title.Get(); ok {
		p.Title = v
	}
	if v, ok := in.Body.Get(); ok {
		p.Body = v
	}
	if v, ok := in.Tags.Get(); ok {
		p.Tags = cloneTags(v)
	}
	switch {
	case in.Metadata.IsNull():
		p.Metadata = nil
	case in.Metadata.IsValue():
		v, _ := in.Metadata.Get()
		p.Metadata = cloneMetadata(v)
	}
	if v, ok := in.Archived.Get(); ok {
		p.Archived = v
	}
	s.bumpVersionLocked(rec, actor)

	s.log.Debug("prompt updated",
		zap.String("tenant_id", tenantID),
		zap.String("prompt_id", promptID),
		zap.Int("version", p.Version))
	return p.clone(), nil
}

// bumpVersionLocked 更新时间、递增版本并记录快照
func (s *Store) bumpVersionLocked(rec *promptRecord, actor *string) {
	now := s.now()
	rec.prompt.UpdatedAt = now
	rec.prompt.Version++
	rec.versions = slices.Insert(rec.versions, 0, snapshotOf(&rec.prompt, now, actor))
}

// DeletePrompt 删除 Prompt 及其全部子资源。Prompt 不存在时静默返回 false。
func (s *Store) DeletePrompt(tenantID, promptID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.tenantLocked(tenantID, false); err != nil {
		return false, err
	}
	rec, ok := s.prompts[promptID]
	if !ok || rec.prompt.TenantID != tenantID {
		return false, nil
	}
	s.removePromptLocked(rec)

	s.log.Debug("prompt deleted", zap.String("tenant_id", tenantID), zap.String("prompt_id", promptID))
	return true, nil
}

// RecordUsage 追加一条 usage_recorded 活动，不修改 Prompt 本身
func (s *Store) RecordUsage(tenantID, promptID string, actor *string, metadata map[string]any) (PromptActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return PromptActivityEntry{}, err
	}
	e := &PromptActivityEntry{
		ID:        s.ids.Next(PrefixActivity),
		PromptID:  promptID,
		TenantID:  tenantID,
		Actor:     cloneStringPtr(actor),
		Action:    ActionUsageRecorded,
		Metadata:  cloneMetadata(metadata),
		CreatedAt: s.now(),
	}
	rec.activity = slices.Insert(rec.activity, 0, e)
	return e.clone(), nil
}

// ListActivity 活动日志，最新在前
func (s *Store) ListActivity(tenantID, promptID string) ([]PromptActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return nil, err
	}
	out := make([]PromptActivityEntry, 0, len(rec.activity))
	for _, e := range rec.activity {
		out = append(out, e.clone())
	}
	return out, nil
}

// ============================================================================
// 版本
// ============================================================================

// ListVersions 版本历史，最新在前
func (s *Store) ListVersions(tenantID, promptID string) ([]PromptVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return nil, err
	}
	out := make([]PromptVersion, 0, len(rec.versions))
	for _, v := range rec.versions {
		out = append(out, v.clone())
	}
	return out, nil
}

func findVersion(rec *promptRecord, version int) (PromptVersion, error) {
	for _, v := range rec.versions {
		if v.Version == version {
			return v, nil
		}
	}
	return PromptVersion{}, common.NewNotFoundError(common.CodeVersionNotFound,
		fmt.Sprintf("version %d of prompt %s not found", version, rec.prompt.ID))
}

// VersionDiff 两个版本的差异
type VersionDiff struct {
	PromptID    string   `json:"promptId"`
	FromVersion int      `json:"fromVersion"`
	ToVersion   int      `json:"toVersion"`
	Changes     []string `json:"changes"`
	BodyDiff    string   `json:"bodyDiff"`
}

// DiffVersions 比较两个版本，返回变更字段和正文的 unified diff
func (s *Store) DiffVersions(tenantID, promptID string, from, to int) (VersionDiff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return VersionDiff{}, err
	}
	a, err := findVersion(rec, from)
	if err != nil {
		return VersionDiff{}, err
	}
	b, err := findVersion(rec, to)
	if err != nil {
		return VersionDiff{}, err
	}

	changes := []string{}
	if a.Title != b.Title {
		changes = append(changes, "title")
	}
	if a.Body != b.Body {
		changes = append(changes, "body")
	}
	if !slices.Equal(a.Tags, b.Tags) {
		changes = append(changes, "tags")
	}
	if !reflect.DeepEqual(a.Metadata, b.Metadata) {
		changes = append(changes, "metadata")
	}

	bodyDiff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.Body),
		B:        difflib.SplitLines(b.Body),
		FromFile: fmt.Sprintf("v%d", from),
		ToFile:   fmt.Sprintf("v%d", to),
		Context:  3,
	})
	if err != nil {
		return VersionDiff{}, fmt.Errorf("diff prompt %s: %w", promptID, err)
	}

	return VersionDiff{
		PromptID:    promptID,
		FromVersion: from,
		ToVersion:   to,
		Changes:     changes,
		BodyDiff:    bodyDiff,
	}, nil
}

// RestoreVersion 用历史快照的内容做一次普通更新
func (s *Store) RestoreVersion(tenantID, promptID string, version int, actor *string) (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return Prompt{}, err
	}
	v, err := findVersion(rec, version)
	if err != nil {
		return Prompt{}, err
	}

	rec.prompt.Title = v.Title
	rec.prompt.Body = v.Body
	rec.prompt.Tags = cloneTags(v.Tags)
	rec.prompt.Metadata = cloneMetadata(v.Metadata)
	s.bumpVersionLocked(rec, actor)

	s.log.Debug("prompt restored",
		zap.String("prompt_id", promptID),
		zap.Int("from_version", version),
		zap.Int("version", rec.prompt.Version))
	return rec.prompt.clone(), nil
}
