package mailctl

import (
	"errors"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
)

// ErrNotFound is returned by the Find helpers when nothing matches.
var ErrNotFound = errors.New("not found")

func (c *Client) FindDomainByName(name string) (*model.Domain, error) {
	domains, err := listAll[model.Domain](c, "/domains")
	if err != nil {
		return nil, err
	}
	for i := range domains {
		if domains[i].Name == name {
			return &domains[i], nil
		}
	}
	return nil, fmt.Errorf("domain %q: %w", name, ErrNotFound)
}

func (c *Client) ListMailboxes(domainID string) ([]model.Mailbox, error) {
	return listAll[model.Mailbox](c, fmt.Sprintf("/domains/%s/mailboxes", domainID))
}

func (c *Client) ListAliases(domainID string) ([]model.Alias, error) {
	return listAll[model.Alias](c, fmt.Sprintf("/domains/%s/aliases", domainID))
}
