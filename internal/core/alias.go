package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
)

// AliasService manages aliases and answers the lookups of the alias
// verifier.
type AliasService struct {
	db       DB
	verifier *AliasVerifier
}

func NewAliasService(db DB) *AliasService {
	s := &AliasService{db: db}
	s.verifier = NewAliasVerifier(s)
	return s
}

const aliasColumns = `id, domain_id, source, destination, created_at, updated_at`

func scanAlias(row interface{ Scan(dest ...any) error }, a *model.Alias) error {
	return row.Scan(&a.ID, &a.DomainID, &a.Source, &a.Destination, &a.CreatedAt, &a.UpdatedAt)
}

func (s *AliasService) checkSource(ctx context.Context, a *model.Alias) error {
	source, err := NormalizeAddress(a.Source)
	if err != nil {
		return err
	}
	destination, err := NormalizeAddress(a.Destination)
	if err != nil {
		return err
	}
	a.Source, a.Destination = source, destination

	name, err := domainName(ctx, s.db, a.DomainID)
	if err != nil {
		return err
	}
	return CheckDomain(a.Source, name)
}

func (s *AliasService) Create(ctx context.Context, a *model.Alias) error {
	if err := s.checkSource(ctx, a); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO aliases (`+aliasColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.DomainID, a.Source, a.Destination, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alias: %w", err)
	}
	return nil
}

func (s *AliasService) GetByID(ctx context.Context, id string) (*model.Alias, error) {
	var a model.Alias
	err := scanAlias(s.db.QueryRow(ctx, `SELECT `+aliasColumns+` FROM aliases WHERE id = $1`, id), &a)
	if err != nil {
		return nil, fmt.Errorf("get alias %s: %w", id, notFound(err))
	}
	return &a, nil
}

func (s *AliasService) ListByDomain(ctx context.Context, domainID string, limit int, cursor string) ([]model.Alias, bool, error) {
	query := `SELECT ` + aliasColumns + ` FROM aliases WHERE domain_id = $1`
	args := []any{domainID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list aliases for domain %s: %w", domainID, err)
	}
	defer rows.Close()

	var aliases []model.Alias
	for rows.Next() {
		var a model.Alias
		if err := scanAlias(rows, &a); err != nil {
			return nil, false, fmt.Errorf("scan alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate aliases: %w", err)
	}

	hasMore := len(aliases) > limit
	if hasMore {
		aliases = aliases[:limit]
	}
	return aliases, hasMore, nil
}

func (s *AliasService) Update(ctx context.Context, a *model.Alias) error {
	if err := s.checkSource(ctx, a); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE aliases SET source = $1, destination = $2, updated_at = now() WHERE id = $3`,
		a.Source, a.Destination, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update alias %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update alias %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

func (s *AliasService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM aliases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alias %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete alias %s: %w", id, ErrNotFound)
	}
	return nil
}

// Check reports whether the alias is exterior and whether it resolves.
func (s *AliasService) Check(ctx context.Context, id string) (*model.AliasCheck, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exterior, err := s.verifier.IsExterior(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("check alias %s: %w", id, err)
	}
	valid, err := s.verifier.Verify(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("check alias %s: %w", id, err)
	}
	return &model.AliasCheck{AliasID: a.ID, Exterior: exterior, Valid: valid}, nil
}

func (s *AliasService) DomainExists(ctx context.Context, name string) (bool, error) {
	return exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM domains WHERE name = $1)`, name)
}

func (s *AliasService) MailboxExists(ctx context.Context, address string) (bool, error) {
	return exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM mailboxes WHERE address = $1)`, address)
}

func (s *AliasService) AliasSourceExists(ctx context.Context, address, excludeID string) (bool, error) {
	return exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM aliases WHERE source = $1 AND id <> $2)`, address, excludeID)
}
