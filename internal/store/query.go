package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
)

// 排序字段
const (
	SortByTitle     = "title"
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListQuery Prompt 列表查询条件
type ListQuery struct {
	Search        string `form:"search"`
	Tag           string `form:"tag"`
	MetadataKey   string `form:"metadataKey"`
	MetadataValue string `form:"metadataValue"`
	SortBy        string `form:"sortBy"`
	Order         string `form:"order"`
	Page          int    `form:"page"`
	PageSize      int    `form:"pageSize"`
}

// AppliedFilters 过滤条件回显，未提供的字段为 null
type AppliedFilters struct {
	Search        *string `json:"search"`
	Tag           *string `json:"tag"`
	MetadataKey   *string `json:"metadataKey"`
	MetadataValue *string `json:"metadataValue"`
}

// PromptPage 一页查询结果
type PromptPage struct {
	Items      []Prompt
	Pagination common.PaginationMeta
	Sort       common.SortMeta
	Filters    AppliedFilters
}

// normalizeSortBy 兼容 created/updated 简写，未知字段回退到 updatedAt
func normalizeSortBy(sortBy string) string {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "title":
		return SortByTitle
	case "created", "createdat":
		return SortByCreatedAt
	default:
		return SortByUpdatedAt
	}
}

func normalizeOrder(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), OrderAsc) {
		return OrderAsc
	}
	return OrderDesc
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Query 对 Prompt 列表依次执行搜索、标签、元数据过滤，稳定排序后分页。
// prompts 应按租户内插入顺序传入，相同排序键的记录保持该顺序。
func Query(prompts []Prompt, q ListQuery, maxPageSize int) PromptPage {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	tag := strings.TrimSpace(q.Tag)
	mdKey := strings.TrimSpace(q.MetadataKey)
	mdValue := strings.ToLower(strings.TrimSpace(q.MetadataValue))

	filtered := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if search != "" && !strings.Contains(haystack(p), search) {
			continue
		}
		if tag != "" && !slices.Contains(p.Tags, tag) {
			continue
		}
		if mdKey != "" && !matchMetadata(p.Metadata, mdKey, mdValue) {
			continue
		}
		filtered = append(filtered, p)
	}

	sortBy := normalizeSortBy(q.SortBy)
	order := normalizeOrder(q.Order)
	cmp := comparator(sortBy)
	if order == OrderDesc {
		asc := cmp
		cmp = func(a, b Prompt) int { return -asc(a, b) }
	}
	slices.SortStableFunc(filtered, cmp)

	pg := common.PaginationRequest{Page: q.Page, PageSize: q.PageSize}.Normalize(maxPageSize)
	total := len(filtered)
	start := min(pg.GetOffset(), total)
	end := min(start+pg.PageSize, total)

	var filters AppliedFilters
	filters.Search = optional(strings.TrimSpace(q.Search))
	filters.Tag = optional(tag)
	filters.MetadataKey = optional(mdKey)
	if mdKey != "" {
		filters.MetadataValue = optional(strings.TrimSpace(q.MetadataValue))
	}

	return PromptPage{
		Items:      filtered[start:end],
		Pagination: common.NewPaginationMeta(pg.Page, pg.PageSize, total),
		Sort:       common.SortMeta{SortBy: sortBy, Order: order},
		Filters:    filters,
	}
}

// haystack 标题、正文、标签和元数据拼成的小写检索文本
func haystack(p Prompt) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteByte(' ')
	b.WriteString(p.Body)
	b.WriteByte(' ')
	b.WriteString(strings.Join(p.Tags, " "))
	if p.Metadata != nil {
		if raw, err := marshalPlain(p.Metadata); err == nil {
			b.WriteByte(' ')
			b.WriteString(raw)
		}
	}
	return strings.ToLower(b.String())
}

// matchMetadata 只给 key 时要求 key 存在（显式 null 也算）；给了 value 时做包含匹配
func matchMetadata(md map[string]any, key, value string) bool {
	v, ok := md[key]
	if !ok {
		return false
	}
	if value == "" {
		return true
	}
	return strings.Contains(strings.ToLower(stringify(v)), value)
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool, int, int64, float64, float32, uint64:
		return fmt.Sprint(x)
	default:
		raw, err := marshalPlain(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return raw
	}
}

// marshalPlain 与 json.Marshal 相同，但不转义 &、<、>
func marshalPlain(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func comparator(sortBy string) func(a, b Prompt) int {
	switch sortBy {
	case SortByTitle:
		return func(a, b Prompt) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortByCreatedAt:
		return func(a, b Prompt) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b Prompt) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	}
}

// ListPrompts 查询租户的 Prompt 列表
func (s *Store) ListPrompts(tenantID string, q ListQuery) (PromptPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.tenantLocked(tenantID, false); err != nil {
		return PromptPage{}, err
	}
	return Query(s.tenantPromptsLocked(tenantID), q, s.maxPageSize), nil
}
