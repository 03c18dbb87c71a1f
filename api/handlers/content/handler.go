package content

import (
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// Service 协作处理器依赖的存储操作
type Service interface {
	ListComments(tenantID, promptID string) ([]store.PromptComment, error)
	CreateComment(tenantID, promptID string, in store.CreateCommentInput, actor *string) (store.PromptComment, error)
	UpdateComment(tenantID, commentID string, in store.UpdateCommentInput) (store.PromptComment, error)
	DeleteComment(tenantID, commentID string) ([]string, error)

	ListShares(tenantID, promptID string) ([]store.PromptShare, error)
	CreateShare(tenantID, promptID string, in store.CreateShareInput, actor *string) (store.PromptShare, error)
	RemoveShare(tenantID, promptID, shareID string) (bool, error)

	ListApprovals(tenantID, promptID string) ([]store.PromptApproval, error)
	CreateApproval(tenantID, promptID string, in store.CreateApprovalInput, actor *string) (store.PromptApproval, error)
	UpdateApproval(tenantID, approvalID string, in store.UpdateApprovalInput) (store.PromptApproval, error)
}

// Handler Prompt 协作 API 处理器（评论、分享、审批）
type Handler struct {
	service Service
}

// NewHandler 创建处理器
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}
