package store

import (
	"slices"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
)

// NotificationQuery 通知过滤条件
type NotificationQuery struct {
	Recipient  string `form:"recipient"`
	TenantID   string `form:"tenantId"`
	UnreadOnly bool   `form:"unread"`
}

func (q NotificationQuery) match(n *NotificationItem) bool {
	if q.Recipient != "" && n.Recipient != q.Recipient {
		return false
	}
	if q.TenantID != "" && (n.TenantID == nil || *n.TenantID != q.TenantID) {
		return false
	}
	if q.UnreadOnly && n.ReadAt != nil {
		return false
	}
	return true
}

// MarkReadInput 标记已读参数，ids 与 all 二选一
type MarkReadInput struct {
	IDs       []string `json:"ids"`
	All       bool     `json:"all"`
	Recipient string   `json:"recipient"`
	TenantID  string   `json:"tenantId"` // 非空时只处理该租户的通知
}

// notifyLocked 在通知列表最前面插入一条
func (s *Store) notifyLocked(tenantID, recipient, typ, message string, metadata map[string]any) {
	n := &NotificationItem{
		ID:        s.ids.Next(PrefixNotification),
		TenantID:  optional(tenantID),
		Recipient: recipient,
		Type:      typ,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: s.now(),
	}
	s.notifications = slices.Insert(s.notifications, 0, n)
}

// ListNotifications 最新在前
func (s *Store) ListNotifications(q NotificationQuery) []NotificationItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []NotificationItem{}
	for _, n := range s.notifications {
		if q.match(n) {
			out = append(out, n.clone())
		}
	}
	return out
}

// MarkNotificationsRead 标记已读并返回命中的通知。readAt 只在为空时写入一次。
func (s *Store) MarkNotificationsRead(in MarkReadInput) ([]NotificationItem, error) {
	if !in.All && len(in.IDs) == 0 {
		return nil, common.NewValidationError("ids or all is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := []NotificationItem{}
	for _, n := range s.notifications {
		if in.TenantID != "" && (n.TenantID == nil || *n.TenantID != in.TenantID) {
			continue
		}
		if in.All {
			if in.Recipient != "" && n.Recipient != in.Recipient {
				continue
			}
		} else if !slices.Contains(in.IDs, n.ID) {
			continue
		}
		if n.ReadAt == nil {
			readAt := now
			n.ReadAt = &readAt
		}
		out = append(out, n.clone())
	}
	return out, nil
}
