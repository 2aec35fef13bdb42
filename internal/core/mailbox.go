package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/passwd"
)

// MailboxService manages mailboxes. Every write checks that the address
// belongs to the owning domain before touching the database.
type MailboxService struct {
	db    DB
	codec *passwd.Codec
}

func NewMailboxService(db DB, codec *passwd.Codec) *MailboxService {
	return &MailboxService{db: db, codec: codec}
}

const mailboxColumns = `id, domain_id, address, password, quota_bytes, created_at, updated_at`

func scanMailbox(row interface{ Scan(dest ...any) error }, m *model.Mailbox) error {
	return row.Scan(&m.ID, &m.DomainID, &m.Address, &m.Password, &m.QuotaBytes, &m.CreatedAt, &m.UpdatedAt)
}

// checkAddress normalizes m.Address and verifies it against the domain.
func (s *MailboxService) checkAddress(ctx context.Context, m *model.Mailbox) error {
	address, err := NormalizeAddress(m.Address)
	if err != nil {
		return err
	}
	m.Address = address

	name, err := domainName(ctx, s.db, m.DomainID)
	if err != nil {
		return err
	}
	return CheckDomain(m.Address, name)
}

// Create stores a new mailbox. A nil password seeds the mailbox with a random
// credential; otherwise the password is encoded with the default scheme.
func (s *MailboxService) Create(ctx context.Context, m *model.Mailbox, password *string) error {
	if err := s.checkAddress(ctx, m); err != nil {
		return err
	}

	var err error
	if password == nil {
		m.Password, err = s.codec.GenerateRandom()
	} else {
		m.Password, err = s.codec.Encode(*password)
	}
	if err != nil {
		return fmt.Errorf("encode mailbox password: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO mailboxes (`+mailboxColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.DomainID, m.Address, m.Password, m.QuotaBytes, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return validationf("mailbox %s already exists", m.Address)
		}
		return fmt.Errorf("insert mailbox: %w", err)
	}
	return nil
}

func (s *MailboxService) GetByID(ctx context.Context, id string) (*model.Mailbox, error) {
	var m model.Mailbox
	err := scanMailbox(s.db.QueryRow(ctx, `SELECT `+mailboxColumns+` FROM mailboxes WHERE id = $1`, id), &m)
	if err != nil {
		return nil, fmt.Errorf("get mailbox %s: %w", id, notFound(err))
	}
	return &m, nil
}

// GetByAddress is used by the autoconfig endpoint.
func (s *MailboxService) GetByAddress(ctx context.Context, address string) (*model.Mailbox, error) {
	var m model.Mailbox
	err := scanMailbox(s.db.QueryRow(ctx, `SELECT `+mailboxColumns+` FROM mailboxes WHERE address = $1`, address), &m)
	if err != nil {
		return nil, fmt.Errorf("get mailbox %s: %w", address, notFound(err))
	}
	return &m, nil
}

func (s *MailboxService) ListByDomain(ctx context.Context, domainID string, limit int, cursor string) ([]model.Mailbox, bool, error) {
	query := `SELECT ` + mailboxColumns + ` FROM mailboxes WHERE domain_id = $1`
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
		return nil, false, fmt.Errorf("list mailboxes for domain %s: %w", domainID, err)
	}
	defer rows.Close()

	var mailboxes []model.Mailbox
	for rows.Next() {
		var m model.Mailbox
		if err := scanMailbox(rows, &m); err != nil {
			return nil, false, fmt.Errorf("scan mailbox: %w", err)
		}
		mailboxes = append(mailboxes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate mailboxes: %w", err)
	}

	hasMore := len(mailboxes) > limit
	if hasMore {
		mailboxes = mailboxes[:limit]
	}
	return mailboxes, hasMore, nil
}

// Update stores a new address and quota. The owning domain does not change.
func (s *MailboxService) Update(ctx context.Context, m *model.Mailbox) error {
	if err := s.checkAddress(ctx, m); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE mailboxes SET address = $1, quota_bytes = $2, updated_at = now() WHERE id = $3`,
		m.Address, m.QuotaBytes, m.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return validationf("mailbox %s already exists", m.Address)
		}
		return fmt.Errorf("update mailbox %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update mailbox %s: %w", m.ID, ErrNotFound)
	}
	return nil
}

// ChangePassword replaces the credential of the mailbox with plaintext
// encoded in the default scheme.
func (s *MailboxService) ChangePassword(ctx context.Context, id, plaintext string) error {
	encoded, err := s.codec.Encode(plaintext)
	if err != nil {
		return fmt.Errorf("encode mailbox password: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE mailboxes SET password = $1, updated_at = now() WHERE id = $2`, encoded, id,
	)
	if err != nil {
		return fmt.Errorf("change password of mailbox %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("change password of mailbox %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MailboxService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM mailboxes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mailbox %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete mailbox %s: %w", id, ErrNotFound)
	}
	return nil
}
