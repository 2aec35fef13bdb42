package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailpanel/internal/model"
)

// fakeLookup answers AddressLookup from in-memory sets.
type fakeLookup struct {
	domains   map[string]bool
	mailboxes map[string]bool
	aliases   []model.Alias
	err       error
}

func (f *fakeLookup) DomainExists(_ context.Context, name string) (bool, error) {
	return f.domains[name], f.err
}

func (f *fakeLookup) MailboxExists(_ context.Context, address string) (bool, error) {
	return f.mailboxes[address], f.err
}

func (f *fakeLookup) AliasSourceExists(_ context.Context, address, excludeID string) (bool, error) {
	for _, a := range f.aliases {
		if a.Source == address && a.ID != excludeID {
			return true, f.err
		}
	}
	return false, f.err
}

func newTestLookup() *fakeLookup {
	return &fakeLookup{
		domains:   map[string]bool{"d.test": true},
		mailboxes: map[string]bool{"main@d.test": true},
		aliases: []model.Alias{
			{ID: "a1", Source: "a@d.test", Destination: "main@d.test"},
		},
	}
}

func TestAliasVerifier_ToMailbox(t *testing.T) {
	v := NewAliasVerifier(newTestLookup())
	a := &model.Alias{ID: "a1", Source: "a@d.test", Destination: "main@d.test"}
	ctx := context.Background()

	exterior, err := v.IsExterior(ctx, a)
	require.NoError(t, err)
	assert.False(t, exterior)

	ok, err := v.Verify(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAliasVerifier_Exterior(t *testing.T) {
	v := NewAliasVerifier(newTestLookup())
	a := &model.Alias{ID: "b1", Source: "b@d.test", Destination: "x@outside.test"}
	ctx := context.Background()

	exterior, err := v.IsExterior(ctx, a)
	require.NoError(t, err)
	assert.True(t, exterior)

	ok, err := v.Verify(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAliasVerifier_Dangling(t *testing.T) {
	v := NewAliasVerifier(newTestLookup())
	ok, err := v.Verify(context.Background(), &model.Alias{ID: "c1", Source: "c@d.test", Destination: "nobody@d.test"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAliasVerifier_ToAliasSource(t *testing.T) {
	v := NewAliasVerifier(newTestLookup())
	ok, err := v.Verify(context.Background(), &model.Alias{ID: "c2", Source: "c@d.test", Destination: "a@d.test"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAliasVerifier_SingleHop(t *testing.T) {
	lookup := newTestLookup()
	lookup.aliases = []model.Alias{
		{ID: "x", Source: "x@d.test", Destination: "y@d.test"},
		{ID: "y", Source: "y@d.test", Destination: "z@d.test"},
	}
	v := NewAliasVerifier(lookup)

	// y@d.test is the source of another alias, so x resolves even though
	// z@d.test leads nowhere.
	ok, err := v.Verify(context.Background(), &lookup.aliases[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(context.Background(), &lookup.aliases[1])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAliasVerifier_SelfLoop(t *testing.T) {
	lookup := newTestLookup()
	lookup.aliases = []model.Alias{{ID: "loop", Source: "loop@d.test", Destination: "loop@d.test"}}
	v := NewAliasVerifier(lookup)

	ok, err := v.Verify(context.Background(), &lookup.aliases[0])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAliasVerifier_DestinationWithoutAt(t *testing.T) {
	v := NewAliasVerifier(newTestLookup())
	a := &model.Alias{Source: "a@d.test", Destination: "localpart"}

	exterior, err := v.IsExterior(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, exterior)
}

func TestAliasVerifier_LookupError(t *testing.T) {
	lookup := newTestLookup()
	lookup.err = errors.New("connection refused")
	v := NewAliasVerifier(lookup)

	_, err := v.Verify(context.Background(), &model.Alias{Source: "a@d.test", Destination: "main@d.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
