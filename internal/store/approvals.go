package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aarondl/opt/omitnull"
	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
)

// CreateApprovalInput 发起审批参数
type CreateApprovalInput struct {
	Approver    string  `json:"approver"`
	RequestedBy string  `json:"requestedBy"`
	Message     *string `json:"message"`
}

// UpdateApprovalInput 更新审批参数，message 未提供时保持原值，显式 null 清空
type UpdateApprovalInput struct {
	Status  ApprovalStatus       `json:"status"`
	Message omitnull.Val[string] `json:"message"`
}

// approvalTransitions 严格模式下允许的状态流转
var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:          {ApprovalApproved, ApprovalRejected, ApprovalChangesRequested},
	ApprovalChangesRequested: {ApprovalPending},
	ApprovalApproved:         nil,
	ApprovalRejected:         nil,
}

// CanTransition 严格模式下 from -> to 是否允许
func CanTransition(from, to ApprovalStatus) bool {
	return slices.Contains(approvalTransitions[from], to)
}

// ListApprovals 按创建顺序列出审批
func (s *Store) ListApprovals(tenantID, promptID string) ([]PromptApproval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return nil, err
	}
	out := make([]PromptApproval, 0, len(rec.approvals))
	for _, a := range rec.approvals {
		out = append(out, a.clone())
	}
	return out, nil
}

// CreateApproval 追加一条 pending 审批并通知审批人
func (s *Store) CreateApproval(tenantID, promptID string, in CreateApprovalInput, actor *string) (PromptApproval, error) {
	if strings.TrimSpace(in.Approver) == "" {
		return PromptApproval{}, common.NewValidationError("approver is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.promptLocked(tenantID, promptID)
	if err != nil {
		return PromptApproval{}, err
	}

	now := s.now()
	a := &PromptApproval{
		ID:          s.ids.Next(PrefixApproval),
		PromptID:    promptID,
		TenantID:    tenantID,
		RequestedBy: actorOr(in.RequestedBy, actor),
		Approver:    strings.TrimSpace(in.Approver),
		Status:      ApprovalPending,
		Message:     cloneStringPtr(in.Message),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rec.approvals = append(rec.approvals, a)
	s.approvalIndex[a.ID] = promptID

	s.notifyLocked(tenantID, a.Approver, NotificationApprovalRequested,
		fmt.Sprintf("%s requested your approval for %q", a.RequestedBy, rec.prompt.Title),
		map[string]any{"promptId": promptID, "approvalId": a.ID})

	s.log.Debug("approval created", zap.String("prompt_id", promptID), zap.String("approval_id", a.ID))
	return a.clone(), nil
}

// UpdateApproval 覆盖审批状态。默认不校验流转，严格模式按流转表校验。
func (s *Store) UpdateApproval(tenantID, approvalID string, in UpdateApprovalInput) (PromptApproval, error) {
	if !in.Status.Valid() {
		return PromptApproval{}, common.NewValidationError(fmt.Sprintf("invalid status %q", in.Status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notFound := common.NewNotFoundError(common.CodeApprovalNotFound, fmt.Sprintf("approval %s not found", approvalID))
	promptID, ok := s.approvalIndex[approvalID]
	if !ok {
		return PromptApproval{}, notFound
	}
	rec := s.prompts[promptID]
	if tenantID != "" && rec.prompt.TenantID != tenantID {
		return PromptApproval{}, notFound
	}
	idx := slices.IndexFunc(rec.approvals, func(a *PromptApproval) bool { return a.ID == approvalID })
	if idx < 0 {
		return PromptApproval{}, notFound
	}
	a := rec.approvals[idx]

	if s.strictApprovals && !CanTransition(a.Status, in.Status) {
		return PromptApproval{}, common.NewBusinessError(common.CodeInvalidTransition,
			fmt.Sprintf("cannot move approval from %s to %s", a.Status, in.Status))
	}

	a.Status = in.Status
	switch {
	case in.Message.IsNull():
		a.Message = nil
	case in.Message.IsValue():
		v, _ := in.Message.Get()
		a.Message = &v
	}
	a.UpdatedAt = s.now()

	s.notifyLocked(a.TenantID, a.RequestedBy, NotificationApprovalUpdated,
		fmt.Sprintf("%s marked your approval request for %q as %s", a.Approver, rec.prompt.Title, a.Status),
		map[string]any{"promptId": a.PromptID, "approvalId": a.ID, "status": string(a.Status)})

	return a.clone(), nil
}
