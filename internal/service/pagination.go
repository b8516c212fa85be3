package service

// 列表接口的分页约定：默认每页 10 条，查询参数最大放开到 100
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// normalizePaging 归一化分页参数并换算偏移量
func normalizePaging(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
