package common

// ============================================================================
// 通用请求类型
// ============================================================================

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `json:"page" form:"page"`         // 页码，从1开始
	PageSize int `json:"pageSize" form:"pageSize"` // 每页数量
}

// DefaultPageSize 默认每页数量
const DefaultPageSize = 20

// MaxPageSize 每页数量上限
const MaxPageSize = 100

// Normalize 归一化分页参数，limit 为每页上限（<=0 使用 MaxPageSize）
func (p PaginationRequest) Normalize(limit int) PaginationRequest {
	if limit <= 0 {
		limit = MaxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > limit {
		p.PageSize = limit
	}
	return p
}

// GetOffset 计算切片偏移量
func (p PaginationRequest) GetOffset() int {
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.PageSize
}

// ============================================================================
// 通用响应类型
// ============================================================================

// DataResponse 成功响应，负载统一包在 data 中
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorBody 失败响应
type ErrorBody struct {
	Error string `json:"error"`
}

// PaginationMeta 分页元信息
type PaginationMeta struct {
	Page       int `json:"page"`       // 当前页码
	PageSize   int `json:"pageSize"`   // 每页数量
	Total      int `json:"total"`      // 总记录数
	TotalPages int `json:"totalPages"` // 总页数，至少为 1
}

// NewPaginationMeta 创建分页元信息
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	meta := PaginationMeta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	meta.CalculateTotalPages()
	return meta
}

// CalculateTotalPages 计算总页数，空结果也返回 1 页
func (m *PaginationMeta) CalculateTotalPages() {
	m.TotalPages = 1
	if m.PageSize > 0 && m.Total > 0 {
		m.TotalPages = (m.Total + m.PageSize - 1) / m.PageSize
	}
}

// SortMeta 排序回显
type SortMeta struct {
	SortBy string `json:"sortBy"`
	Order  string `json:"order"`
}

// ListResponse 列表响应（数据 + 分页 + 排序 + 过滤条件回显）
type ListResponse struct {
	Data       any            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Sort       SortMeta       `json:"sort"`
	Filters    any            `json:"filters"`
}

// ============================================================================
// 业务状态码定义
// ============================================================================

const (
	// 成功状态码
	CodeSuccess = 0

	// 通用错误码 (1000-1999)
	CodeInvalidRequest = 1000 // 请求参数错误
	CodeNotFound       = 1003 // 资源不存在
	CodeConflict       = 1004 // 资源冲突
	CodeInternalError  = 1005 // 内部错误

	// 租户相关错误码 (2000-2099)
	CodeTenantNotFound = 2000 // 租户不存在
	CodeTenantRequired = 2003 // 缺少租户上下文

	// Prompt 相关错误码 (3000-3099)
	CodePromptNotFound    = 3000 // Prompt 不存在
	CodeVersionNotFound   = 3001 // 版本不存在
	CodeCommentNotFound   = 3010 // 评论不存在
	CodeShareNotFound     = 3020 // 分享不存在
	CodeApprovalNotFound  = 3030 // 审批不存在
	CodeInvalidTransition = 3031 // 审批状态流转不合法
)

// ErrorMessages 错误码对应的默认消息
var ErrorMessages = map[int]string{
	CodeSuccess:        "ok",
	CodeInvalidRequest: "invalid request",
	CodeNotFound:       "not found",
	CodeConflict:       "conflict",
	CodeInternalError:  "internal error",

	CodeTenantNotFound: "tenant not found",
	CodeTenantRequired: "tenantId is required",

	CodePromptNotFound:    "prompt not found",
	CodeVersionNotFound:   "version not found",
	CodeCommentNotFound:   "comment not found",
	CodeShareNotFound:     "share not found",
	CodeApprovalNotFound:  "approval not found",
	CodeInvalidTransition: "invalid approval transition",
}

// GetErrorMessage 获取错误码对应的消息
func GetErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "unknown error"
}
