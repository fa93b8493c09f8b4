package usecase

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// paginate clamps page and limit and returns the row offset.
func paginate(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, (page - 1) * limit
}
