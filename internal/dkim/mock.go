package dkim

import (
	"context"
	"slices"
	"strings"
)

// MockResolver serves TXT records from a map keyed by name, with or without
// the trailing dot.
type MockResolver struct {
	TXT map[string][]string
	// Fail lists names whose lookup returns ErrDNSServFail.
	Fail []string
}

var _ Resolver = MockResolver{}

func (r MockResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = strings.TrimSuffix(name, ".")
	if slices.Contains(r.Fail, name) {
		return nil, ErrDNSServFail
	}
	records, ok := r.TXT[name]
	if !ok {
		records, ok = r.TXT[name+"."]
	}
	if !ok || len(records) == 0 {
		return nil, ErrDNSNotFound
	}
	return records, nil
}
