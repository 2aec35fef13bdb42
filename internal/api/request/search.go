package request

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100

	// maxQueryLength is the longest mail address RFC 5321 allows.
	maxQueryLength = 254
)

// Search holds ?q= and ?limit= of a search request. Limit applies to each
// result type separately.
type Search struct {
	Query string
	Limit int
}

// ParseSearch reads the search parameters. The limit follows the rules of
// ParsePagination with its own bounds.
func ParseSearch(r *http.Request) (Search, error) {
	q := r.URL.Query()
	s := Search{Query: strings.TrimSpace(q.Get("q")), Limit: DefaultSearchLimit}

	if len(s.Query) > maxQueryLength {
		return Search{}, fmt.Errorf("search query longer than %d characters", maxQueryLength)
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		s.Limit = min(n, MaxSearchLimit)
	}
	return s, nil
}
