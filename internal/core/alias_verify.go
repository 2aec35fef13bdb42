package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
)

// AddressLookup answers the existence queries the alias verifier needs.
type AddressLookup interface {
	DomainExists(ctx context.Context, name string) (bool, error)
	MailboxExists(ctx context.Context, address string) (bool, error)
	// AliasSourceExists reports whether an alias other than excludeID has
	// address as its source.
	AliasSourceExists(ctx context.Context, address, excludeID string) (bool, error)
}

// AliasVerifier decides whether an alias delivers anywhere. Chains are
// followed a single hop.
type AliasVerifier struct {
	lookup AddressLookup
}

func NewAliasVerifier(lookup AddressLookup) *AliasVerifier {
	return &AliasVerifier{lookup: lookup}
}

// IsExterior reports whether the destination of a lies outside the managed
// domains. A destination without "@" is exterior.
func (v *AliasVerifier) IsExterior(ctx context.Context, a *model.Alias) (bool, error) {
	domain, ok := ExtractDomain(a.Destination)
	if !ok {
		return true, nil
	}
	managed, err := v.lookup.DomainExists(ctx, domain)
	if err != nil {
		return false, fmt.Errorf("lookup domain %s: %w", domain, err)
	}
	return !managed, nil
}

// Verify reports whether a resolves: exterior destinations always do, local
// ones must name a mailbox or the source of another alias.
func (v *AliasVerifier) Verify(ctx context.Context, a *model.Alias) (bool, error) {
	exterior, err := v.IsExterior(ctx, a)
	if err != nil {
		return false, err
	}
	if exterior {
		return true, nil
	}

	ok, err := v.lookup.MailboxExists(ctx, a.Destination)
	if err != nil {
		return false, fmt.Errorf("lookup mailbox %s: %w", a.Destination, err)
	}
	if ok {
		return true, nil
	}

	ok, err = v.lookup.AliasSourceExists(ctx, a.Destination, a.ID)
	if err != nil {
		return false, fmt.Errorf("lookup alias source %s: %w", a.Destination, err)
	}
	return ok, nil
}
