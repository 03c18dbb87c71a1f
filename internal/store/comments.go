package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aarondl/opt/omit"
	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
)

// CreateCommentInput 创建评论参数
type CreateCommentInput struct {
	Body      string  `json:"body"`
	ParentID  *string `json:"parentId"`
	CreatedBy string  `json:"createdBy"`
}

// UpdateCommentInput 更新评论参数
type UpdateCommentInput struct {
	Body     omit.Val[string] `json:"body"`
	Resolved omit.Val[bool]   `json:"resolved"`
}

// ListComments 按创建顺序列出评论
func (s *Store) ListComments(tenantID, promptID string) ([]PromptComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return nil, err
	}
	out := make([]PromptComment, 0, len(rec.comments))
	for _, c := range rec.comments {
		out = append(out, c.clone())
	}
	return out, nil
}

// CreateComment 追加评论，resolved 初始为 false。
// parentId 指向不存在的评论时按根评论处理。
func (s *Store) CreateComment(tenantID, promptID string, in CreateCommentInput, actor *string) (PromptComment, error) {
	if strings.TrimSpace(in.Body) == "" {
		return PromptComment{}, common.NewValidationError("body is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return PromptComment{}, err
	}

	now := s.now()
	c := &PromptComment{
		ID:        s.ids.Next(PrefixComment),
		PromptID:  promptID,
		TenantID:  tenantID,
		ParentID:  cloneStringPtr(in.ParentID),
		Body:      in.Body,
		CreatedBy: actorOr(in.CreatedBy, actor),
		CreatedAt: now,
		UpdatedAt: now,
	}
	rec.comments = append(rec.comments, c)
	s.commentIndex[c.ID] = promptID

	s.log.Debug("comment created", zap.String("prompt_id", promptID), zap.String("comment_id", c.ID))
	return c.clone(), nil
}

// commentLocked 通过索引定位评论。tenantID 非空时要求评论属于该租户。
func (s *Store) commentLocked(tenantID, commentID string) (*promptRecord, int, error) {
	notFound := common.NewNotFoundError(common.CodeCommentNotFound, fmt.Sprintf("comment %s not found", commentID))

	promptID, ok := s.commentIndex[commentID]
	if !ok {
		return nil, -1, notFound
	}
	rec := s.prompts[promptID]
	if tenantID != "" && rec.prompt.TenantID != tenantID {
		return nil, -1, notFound
	}
	idx := slices.IndexFunc(rec.comments, func(c *PromptComment) bool { return c.ID == commentID })
	if idx < 0 {
		return nil, -1, notFound
	}
	return rec, idx, nil
}

// UpdateComment 修改正文或解决状态
func (s *Store) UpdateComment(tenantID, commentID string, in UpdateCommentInput) (PromptComment, error) {
	if body, ok := in.Body.Get(); ok && strings.TrimSpace(body) == "" {
		return PromptComment{}, common.NewValidationError("body must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, idx, err := s.commentLocked(tenantID, commentID)
	if err != nil {
		return PromptComment{}, err
	}
	c := rec.comments[idx]
	if v, ok := in.Body.Get(); ok {
		c.Body = v
	}
	if v, ok := in.Resolved.Get(); ok {
		c.Resolved = v
	}
	c.UpdatedAt = s.now()
	return c.clone(), nil
}

// DeleteComment 删除评论及其整棵回复子树，返回被删除的 ID
func (s *Store) DeleteComment(tenantID, commentID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, _, err := s.commentLocked(tenantID, commentID)
	if err != nil {
		return nil, err
	}

	doomed := map[string]bool{commentID: true}
	// 逐轮扩展直到没有新的子评论
	for grew := true; grew; {
		grew = false
		for _, c := range rec.comments {
			if doomed[c.ID] || c.ParentID == nil || !doomed[*c.ParentID] {
				continue
			}
			doomed[c.ID] = true
			grew = true
		}
	}

	removed := make([]string, 0, len(doomed))
	rec.comments = slices.DeleteFunc(rec.comments, func(c *PromptComment) bool {
		if !doomed[c.ID] {
			return false
		}
		removed = append(removed, c.ID)
		delete(s.commentIndex, c.ID)
		return true
	})

	s.log.Debug("comment deleted", zap.String("comment_id", commentID), zap.Int("removed", len(removed)))
	return removed, nil
}

// actorOr 显式值优先，其次是请求方，最后是 anonymous
func actorOr(explicit string, actor *string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if actor != nil && *actor != "" {
		return *actor
	}
	return "anonymous"
}
