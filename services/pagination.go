package services

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a skip/limit window over an ordered result set.
type Page struct {
	Skip  int
	Limit int
}

// NewPage clamps raw pagination input: negative skips become zero and
// non-positive or oversized limits fall back to sane bounds. Requests beyond
// the end of a result set yield empty pages, never errors.
func NewPage(skip, limit int) Page {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Page{Skip: skip, Limit: limit}
}

// HasMore reports whether rows remain past this page.
func HasMore(total int64, p Page) bool {
	return int64(p.Skip+p.Limit) < total
}
