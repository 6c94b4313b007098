package util

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Window clamps a skip/limit pair to sane bounds.
func Window(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return skip, limit
}

// Pages returns the 1-based current page and the page count for total rows.
// The current page is 0 when there are no rows.
func Pages(total int64, skip, limit int) (current, count int) {
	if total == 0 || limit <= 0 {
		return 0, 0
	}
	count = int((total + int64(limit) - 1) / int64(limit))
	current = skip/limit + 1
	return current, count
}
