package types

// Pagination 列表接口返回的分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Sort 列表接口实际使用的排序
type Sort struct {
	SortBy string `json:"sortBy"`
	Order  string `json:"order"`
}

// Filters 列表接口回显的过滤条件，未提供的为 nil
type Filters struct {
	Search        *string `json:"search"`
	Tag           *string `json:"tag"`
	MetadataKey   *string `json:"metadataKey"`
	MetadataValue *string `json:"metadataValue"`
}
