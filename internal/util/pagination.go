package util

const (
	defaultSize = 20
	maxSize     = 100
)

// Calculate turns 1-based page/size query params into an offset/limit pair,
// clamping out-of-range values.
func Calculate(page, size int) (from, limit int) {
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	if page <= 0 {
		page = 1
	}
	return (page - 1) * size, size
}
