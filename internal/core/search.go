package core

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Search result types.
const (
	SearchTypeDomain  = "domain"
	SearchTypeMailbox = "mailbox"
	SearchTypeAlias   = "alias"
)

// DefaultSearchLimit caps each result type when the caller passes no limit.
const DefaultSearchLimit = 20

// SearchResult is one match. Label is the matched name, address or alias
// source. Detail carries the destination of an alias.
type SearchResult struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Detail   string `json:"detail,omitempty"`
	DomainID string `json:"domain_id"`
}

// SearchService finds domains, mailboxes and aliases by substring.
type SearchService struct {
	db DB
}

func NewSearchService(db DB) *SearchService {
	return &SearchService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches query case-insensitively against domain names, mailbox
// addresses and alias sources or destinations. Each type returns at most
// limit results, domains first. An empty query matches nothing.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	pattern := "%" + likeEscaper.Replace(query) + "%"

	queries := []string{
		`SELECT 'domain', id, name, '', id FROM domains
			WHERE name ILIKE $1
			ORDER BY name LIMIT $2`,
		`SELECT 'mailbox', id, address, '', domain_id FROM mailboxes
			WHERE address ILIKE $1
			ORDER BY address LIMIT $2`,
		`SELECT 'alias', id, source, destination, domain_id FROM aliases
			WHERE source ILIKE $1 OR destination ILIKE $1
			ORDER BY source, destination LIMIT $2`,
	}

	results := make([][]SearchResult, len(queries))
	g, ctx := errgroup.WithContext(ctx)

	for i, sql := range queries {
		g.Go(func() error {
			rows, err := s.db.Query(ctx, sql, pattern, limit)
			if err != nil {
				return fmt.Errorf("search query %d: %w", i, err)
			}
			defer rows.Close()

			for rows.Next() {
				var r SearchResult
				if err := rows.Scan(&r.Type, &r.ID, &r.Label, &r.Detail, &r.DomainID); err != nil {
					return fmt.Errorf("scan search result: %w", err)
				}
				results[i] = append(results[i], r)
			}
			return rows.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	all := []SearchResult{}
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all, nil
}
