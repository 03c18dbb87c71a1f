package store

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
)

const (
	overviewTopTags        = 10
	overviewRecentActivity = 10
)

// Totals 仪表盘计数
type Totals struct {
	Prompts          int `json:"prompts"`
	ArchivedPrompts  int `json:"archivedPrompts"`
	Versions         int `json:"versions"`
	Comments         int `json:"comments"`
	OpenComments     int `json:"openComments"`
	Shares           int `json:"shares"`
	PendingApprovals int `json:"pendingApprovals"`
	UsageEvents      int `json:"usageEvents"`
}

// TagCount 标签使用次数
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Overview 租户仪表盘
type Overview struct {
	TenantID       string                `json:"tenantId"`
	Totals         Totals                `json:"totals"`
	TopTags        []TagCount            `json:"topTags"`
	RecentActivity []PromptActivityEntry `json:"recentActivity"`
}

// Overview 汇总租户下的 Prompt 与协作数据
func (s *Store) Overview(tenantID string) (Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.tenantLocked(tenantID, false); err != nil {
		return Overview{}, err
	}

	var totals Totals
	tagCounts := map[string]int{}
	activity := []PromptActivityEntry{}
	for _, id := range s.tenantPrompts[tenantID] {
		rec := s.prompts[id]
		totals.Prompts++
		if rec.prompt.Archived {
			totals.ArchivedPrompts++
		}
		totals.Versions += len(rec.versions)
		totals.Comments += len(rec.comments)
		for _, c := range rec.comments {
			if !c.Resolved {
				totals.OpenComments++
			}
		}
		totals.Shares += len(rec.shares)
		for _, a := range rec.approvals {
			if a.Status == ApprovalPending {
				totals.PendingApprovals++
			}
		}
		for _, e := range rec.activity {
			if e.Action == ActionUsageRecorded {
				totals.UsageEvents++
			}
			activity = append(activity, e.clone())
		}
		for _, tag := range rec.prompt.Tags {
			tagCounts[tag]++
		}
	}

	topTags := make([]TagCount, 0, len(tagCounts))
	for tag, n := range tagCounts {
		topTags = append(topTags, TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(topTags, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	if len(topTags) > overviewTopTags {
		topTags = topTags[:overviewTopTags]
	}

	slices.SortStableFunc(activity, func(a, b PromptActivityEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(activity) > overviewRecentActivity {
		activity = activity[:overviewRecentActivity]
	}

	return Overview{
		TenantID:       tenantID,
		Totals:         totals,
		TopTags:        topTags,
		RecentActivity: activity,
	}, nil
}

// AnalyticsRange 统计区间
type AnalyticsRange string

const (
	Range7d  AnalyticsRange = "7d"
	Range30d AnalyticsRange = "30d"
	Range90d AnalyticsRange = "90d"
)

var rangeDays = map[AnalyticsRange]int{Range7d: 7, Range30d: 30, Range90d: 90}

// ParseRange 解析区间，空值默认 30d
func ParseRange(v string) (AnalyticsRange, error) {
	if v == "" {
		return Range30d, nil
	}
	r := AnalyticsRange(v)
	if _, ok := rangeDays[r]; !ok {
		return "", common.NewValidationError(fmt.Sprintf("invalid range %q, expected 7d, 30d or 90d", v))
	}
	return r, nil
}

// Duration 区间时长
func (r AnalyticsRange) Duration() time.Duration {
	return time.Duration(rangeDays[r]) * 24 * time.Hour
}

// PromptUsage 单个 Prompt 的使用统计
type PromptUsage struct {
	PromptID   string     `json:"promptId"`
	Title      string     `json:"title"`
	UsageCount int        `json:"usageCount"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
}

// PromptAnalytics 区间内的使用排行
type PromptAnalytics struct {
	Range AnalyticsRange `json:"range"`
	Since time.Time      `json:"since"`
	Items []PromptUsage  `json:"items"`
}

// PromptAnalytics 统计区间内每个 Prompt 的 usage_recorded 次数，按次数倒序、标题正序
func (s *Store) PromptAnalytics(tenantID string, r AnalyticsRange) (PromptAnalytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.tenantLocked(tenantID, false); err != nil {
		return PromptAnalytics{}, err
	}

	since := s.now().Add(-r.Duration())
	items := make([]PromptUsage, 0, len(s.tenantPrompts[tenantID]))
	for _, id := range s.tenantPrompts[tenantID] {
		rec := s.prompts[id]
		u := PromptUsage{PromptID: id, Title: rec.prompt.Title}
		for _, e := range rec.activity {
			if e.Action != ActionUsageRecorded || e.CreatedAt.Before(since) {
				continue
			}
			u.UsageCount++
			if u.LastUsedAt == nil || e.CreatedAt.After(*u.LastUsedAt) {
				at := e.CreatedAt
				u.LastUsedAt = &at
			}
		}
		items = append(items, u)
	}
	slices.SortStableFunc(items, func(a, b PromptUsage) int {
		if c := cmp.Compare(b.UsageCount, a.UsageCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})

	return PromptAnalytics{Range: r, Since: since, Items: items}, nil
}
