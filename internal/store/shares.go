package store

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
)

// CreateShareInput 创建分享参数，role 缺省为 viewer
type CreateShareInput struct {
	TargetType       ShareTargetType `json:"targetType"`
	TargetIdentifier string          `json:"targetIdentifier"`
	Role             ShareRole       `json:"role"`
	CreatedBy        string          `json:"createdBy"`
	ExpiresAt        *time.Time      `json:"expiresAt"`
}

func (in *CreateShareInput) validate() error {
	if !in.TargetType.Valid() {
		return common.NewValidationError(fmt.Sprintf("invalid targetType %q", in.TargetType))
	}
	if strings.TrimSpace(in.TargetIdentifier) == "" {
		return common.NewValidationError("targetIdentifier is required")
	}
	if in.Role == "" {
		in.Role = ShareRoleViewer
	}
	if !in.Role.Valid() {
		return common.NewValidationError(fmt.Sprintf("invalid role %q", in.Role))
	}
	return nil
}

// ListShares 按创建顺序列出分享
func (s *Store) ListShares(tenantID, promptID string) ([]PromptShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return nil, err
	}
	return sharesOf(rec), nil
}

func sharesOf(rec *promptRecord) []PromptShare {
	out := make([]PromptShare, 0, len(rec.shares))
	for _, sh := range rec.shares {
		out = append(out, sh.clone())
	}
	return out
}

// CreateShare 追加分享记录。目标是用户或邮箱时给对方发通知。
func (s *Store) CreateShare(tenantID, promptID string, in CreateShareInput, actor *string) (PromptShare, error) {
	if err := in.validate(); err != nil {
		return PromptShare{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return PromptShare{}, err
	}

	sh := &PromptShare{
		ID:               s.ids.Next(PrefixShare),
		PromptID:         promptID,
		TenantID:         tenantID,
		TargetType:       in.TargetType,
		TargetIdentifier: strings.TrimSpace(in.TargetIdentifier),
		Role:             in.Role,
		CreatedBy:        actorOr(in.CreatedBy, actor),
		CreatedAt:        s.now(),
		ExpiresAt:        cloneTimePtr(in.ExpiresAt),
	}
	rec.shares = append(rec.shares, sh)

	if sh.TargetType == ShareTargetUser || sh.TargetType == ShareTargetEmail {
		s.notifyLocked(tenantID, sh.TargetIdentifier, NotificationShareCreated,
			fmt.Sprintf("%s shared %q with you as %s", sh.CreatedBy, rec.prompt.Title, sh.Role),
			map[string]any{"promptId": promptID, "shareId": sh.ID, "role": string(sh.Role)})
	}

	s.log.Debug("share created", zap.String("prompt_id", promptID), zap.String("share_id", sh.ID))
	return sh.clone(), nil
}

// RemoveShare 按 ID 移除分享，不存在时返回 false
func (s *Store) RemoveShare(tenantID, promptID, shareID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return false, err
	}
	before := len(rec.shares)
	rec.shares = slices.DeleteFunc(rec.shares, func(sh *PromptShare) bool { return sh.ID == shareID })
	return len(rec.shares) < before, nil
}
