package request

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	// maxCursorLength bounds the cursor, which is always a resource id.
	maxCursorLength = 64
)

// Pagination is a cursor page request: at most Limit items with an id
// after Cursor.
type Pagination struct {
	Limit  int
	Cursor string
}

// ParsePagination reads ?limit= and ?cursor=. A missing, non-numeric or
// non-positive limit falls back to DefaultLimit, larger ones are clamped to
// MaxLimit. An oversized cursor is ignored and the listing starts over.
func ParsePagination(r *http.Request) Pagination {
	q := r.URL.Query()
	p := Pagination{Limit: DefaultLimit}

	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	if c := strings.TrimSpace(q.Get("cursor")); len(c) <= maxCursorLength {
		p.Cursor = c
	}
	return p
}
