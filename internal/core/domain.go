package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/edvin/mailpanel/internal/dkim"
	"github.com/edvin/mailpanel/internal/model"
)

// DKIMChecker inspects the DKIM record of a domain. *dkim.Verifier
// implements it.
type DKIMChecker interface {
	Inspect(ctx context.Context, domain, selector, key string) dkim.Result
}

// DKIMRefreshConfig bounds RefreshAllDKIM.
type DKIMRefreshConfig struct {
	Concurrency      int
	LookupsPerSecond float64
}

type DomainService struct {
	db          DB
	checker     DKIMChecker
	now         func() time.Time
	concurrency int
	limiter     *rate.Limiter
}

func NewDomainService(db DB, checker DKIMChecker, cfg DKIMRefreshConfig) *DomainService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	limit := rate.Inf
	if cfg.LookupsPerSecond > 0 {
		limit = rate.Limit(cfg.LookupsPerSecond)
	}
	return &DomainService{
		db:          db,
		checker:     checker,
		now:         time.Now,
		concurrency: cfg.Concurrency,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

const domainColumns = `id, name, dkim_selector, dkim_key, dkim_status, dkim_checked_at, display_name, short_display_name, imap_host, pop_host, smtp_host, created_at, updated_at`

func scanDomain(row interface{ Scan(dest ...any) error }, d *model.Domain) error {
	return row.Scan(&d.ID, &d.Name, &d.DKIMSelector, &d.DKIMKey, &d.DKIMStatus, &d.DKIMCheckedAt,
		&d.DisplayName, &d.ShortDisplayName, &d.IMAPHost, &d.POPHost, &d.SMTPHost, &d.CreatedAt, &d.UpdatedAt)
}

func (s *DomainService) Create(ctx context.Context, d *model.Domain) error {
	name, err := NormalizeDomain(d.Name)
	if err != nil {
		return err
	}
	d.Name = name
	d.DKIMStatus = model.DKIMNotSet
	d.DKIMCheckedAt = d.CreatedAt

	_, err = s.db.Exec(ctx,
		`INSERT INTO domains (`+domainColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.Name, d.DKIMSelector, d.DKIMKey, int(d.DKIMStatus), d.DKIMCheckedAt,
		d.DisplayName, d.ShortDisplayName, d.IMAPHost, d.POPHost, d.SMTPHost, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return validationf("domain %s already exists", d.Name)
		}
		return fmt.Errorf("insert domain: %w", err)
	}
	return nil
}

func (s *DomainService) GetByID(ctx context.Context, id string) (*model.Domain, error) {
	var d model.Domain
	err := scanDomain(s.db.QueryRow(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = $1`, id), &d)
	if err != nil {
		return nil, fmt.Errorf("get domain %s: %w", id, notFound(err))
	}
	return &d, nil
}

func (s *DomainService) GetByName(ctx context.Context, name string) (*model.Domain, error) {
	normalized, err := NormalizeDomain(name)
	if err != nil {
		return nil, err
	}
	var d model.Domain
	err = scanDomain(s.db.QueryRow(ctx, `SELECT `+domainColumns+` FROM domains WHERE name = $1`, normalized), &d)
	if err != nil {
		return nil, fmt.Errorf("get domain %s: %w", normalized, notFound(err))
	}
	return &d, nil
}

func (s *DomainService) List(ctx context.Context, limit int, cursor string) ([]model.Domain, bool, error) {
	query := `SELECT ` + domainColumns + ` FROM domains`
	args := []any{}
	argIdx := 1

	if cursor != "" {
		query += fmt.Sprintf(` WHERE id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	domains, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list domains: %w", err)
	}

	hasMore := len(domains) > limit
	if hasMore {
		domains = domains[:limit]
	}
	return domains, hasMore, nil
}

func (s *DomainService) query(ctx context.Context, query string, args ...any) ([]model.Domain, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []model.Domain
	for rows.Next() {
		var d model.Domain
		if err := scanDomain(rows, &d); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domains: %w", err)
	}
	return domains, nil
}

// Update stores the editable fields of d. Renaming a domain that still owns
// mailboxes or aliases is rejected since their addresses would no longer
// match. The domain row is locked for the check and the write, which holds
// off mailbox and alias inserts referencing it until commit.
func (s *DomainService) Update(ctx context.Context, d *model.Domain) error {
	name, err := NormalizeDomain(d.Name)
	if err != nil {
		return err
	}
	d.Name = name

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin domain update %s: %w", d.ID, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var current string
	if err := tx.QueryRow(ctx, `SELECT name FROM domains WHERE id = $1 FOR UPDATE`, d.ID).Scan(&current); err != nil {
		return fmt.Errorf("lock domain %s: %w", d.ID, notFound(err))
	}
	if current != d.Name {
		var owned int
		err := tx.QueryRow(ctx,
			`SELECT (SELECT count(*) FROM mailboxes WHERE domain_id = $1) + (SELECT count(*) FROM aliases WHERE domain_id = $1)`,
			d.ID,
		).Scan(&owned)
		if err != nil {
			return fmt.Errorf("count addresses of domain %s: %w", d.ID, err)
		}
		if owned > 0 {
			return validationf("domain %s still has %d mailboxes or aliases and cannot be renamed", current, owned)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE domains SET name = $1, dkim_selector = $2, dkim_key = $3, display_name = $4, short_display_name = $5,
		 imap_host = $6, pop_host = $7, smtp_host = $8, updated_at = now() WHERE id = $9`,
		d.Name, d.DKIMSelector, d.DKIMKey, d.DisplayName, d.ShortDisplayName, d.IMAPHost, d.POPHost, d.SMTPHost, d.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return validationf("domain %s already exists", d.Name)
		}
		return fmt.Errorf("update domain %s: %w", d.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit domain update %s: %w", d.ID, err)
	}
	return nil
}

// Delete removes the domain together with its mailboxes and aliases.
func (s *DomainService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM domains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete domain %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete domain %s: %w", id, ErrNotFound)
	}
	return nil
}

// RefreshDKIM re-checks the DKIM record of the domain and stores the status
// with a new check timestamp, even when the status is unchanged.
func (s *DomainService) RefreshDKIM(ctx context.Context, id string) (*model.Domain, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.refresh(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ScanDKIM refreshes the domain like RefreshDKIM and reports what DNS
// returned.
func (s *DomainService) ScanDKIM(ctx context.Context, id string) (*model.DKIMScan, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, d)
}

// RefreshAllDKIM refreshes every domain, running at most the configured
// number of checks at once and pacing DNS lookups. Scans are returned in
// domain order.
func (s *DomainService) RefreshAllDKIM(ctx context.Context) ([]model.DKIMScan, error) {
	domains, err := s.query(ctx, `SELECT `+domainColumns+` FROM domains ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list domains for dkim refresh: %w", err)
	}

	scans := make([]model.DKIMScan, len(domains))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range domains {
		d := &domains[i]
		g.Go(func() error {
			if d.DKIMSelector != "" && d.DKIMKey != "" {
				if err := s.limiter.Wait(gctx); err != nil {
					return fmt.Errorf("wait for dns rate limiter: %w", err)
				}
			}
			scan, err := s.refresh(gctx, d)
			if err != nil {
				return err
			}
			scans[i] = *scan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Int("domains", len(domains)).Msg("dkim refresh complete")
	return scans, nil
}

func (s *DomainService) refresh(ctx context.Context, d *model.Domain) (*model.DKIMScan, error) {
	res := s.checker.Inspect(ctx, d.Name, d.DKIMSelector, d.DKIMKey)

	checkedAt := s.now().UTC().Truncate(time.Microsecond)
	if !checkedAt.After(d.DKIMCheckedAt) {
		checkedAt = d.DKIMCheckedAt.Add(time.Microsecond)
	}

	_, err := s.db.Exec(ctx,
		`UPDATE domains SET dkim_status = $1, dkim_checked_at = $2, updated_at = now() WHERE id = $3`,
		int(res.Status), checkedAt, d.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update dkim status of domain %s: %w", d.ID, err)
	}
	d.DKIMStatus = res.Status
	d.DKIMCheckedAt = checkedAt

	return &model.DKIMScan{
		DomainID:   d.ID,
		RecordName: res.RecordName,
		Record:     res.Record,
		FoundKey:   res.Key,
		StoredKey:  d.DKIMKey,
		Status:     res.Status,
		CheckedAt:  checkedAt,
	}, nil
}

// DomainExists reports whether name is a managed domain.
func (s *DomainService) DomainExists(ctx context.Context, name string) (bool, error) {
	return exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM domains WHERE name = $1)`, name)
}

func exists(ctx context.Context, db querier, query string, args ...any) (bool, error) {
	var ok bool
	if err := db.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// domainName returns the name of the domain with the given id.
func domainName(ctx context.Context, db querier, id string) (string, error) {
	var name string
	if err := db.QueryRow(ctx, `SELECT name FROM domains WHERE id = $1`, id).Scan(&name); err != nil {
		return "", fmt.Errorf("get domain %s: %w", id, notFound(err))
	}
	return name, nil
}
