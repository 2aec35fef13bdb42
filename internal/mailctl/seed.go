package mailctl

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edvin/mailpanel/internal/model"
)

// DefaultAPIURL is used when no seed file, environment variable or profile
// names an API.
const DefaultAPIURL = "http://localhost:8090"

// LoadSeedConfig reads a seed definition and fills api_url and api_key from
// ResolveEndpoint when the file leaves them empty.
func LoadSeedConfig(path string) (*SeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg SeedConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	apiURL, apiKey := ResolveEndpoint()
	if cfg.APIURL == "" {
		cfg.APIURL = apiURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = apiKey
	}
	if cfg.APIKey == "" {
		return nil, errors.New("no API key: set api_key in config, MAILPANEL_API_KEY or an active profile")
	}
	return &cfg, nil
}

// Seed creates the domains, mailboxes and aliases of the seed file through
// the API. Existing resources are left alone, so running it twice is safe.
func Seed(configPath string, out io.Writer) error {
	cfg, err := LoadSeedConfig(configPath)
	if err != nil {
		return err
	}
	return SeedWith(NewClient(cfg.APIURL, cfg.APIKey), cfg, out)
}

func SeedWith(client *Client, cfg *SeedConfig, out io.Writer) error {
	for _, d := range cfg.Domains {
		domain, err := ensureDomain(client, d, out)
		if err != nil {
			return err
		}

		mailboxes, err := client.ListMailboxes(domain.ID)
		if err != nil {
			return fmt.Errorf("list mailboxes of %q: %w", d.Name, err)
		}
		existing := make(map[string]bool, len(mailboxes))
		for _, m := range mailboxes {
			existing[m.Address] = true
		}
		for _, m := range d.Mailboxes {
			if existing[m.Address] {
				fmt.Fprintf(out, "  Mailbox %q: exists (skipping)\n", m.Address)
				continue
			}
			body := map[string]any{
				"address":     m.Address,
				"quota_bytes": m.QuotaBytes,
			}
			if m.Password != "" {
				body["password"] = m.Password
			}
			resp, err := client.Post(fmt.Sprintf("/domains/%s/mailboxes", domain.ID), body)
			if err != nil {
				return fmt.Errorf("create mailbox %q: %w", m.Address, err)
			}
			var created model.Mailbox
			if err := resp.Decode(&created); err != nil {
				return fmt.Errorf("parse mailbox %q: %w", m.Address, err)
			}
			existing[m.Address] = true
			fmt.Fprintf(out, "  Mailbox %q: %s created\n", m.Address, created.ID)
		}

		aliases, err := client.ListAliases(domain.ID)
		if err != nil {
			return fmt.Errorf("list aliases of %q: %w", d.Name, err)
		}
		type pair struct{ source, destination string }
		known := make(map[pair]bool, len(aliases))
		for _, a := range aliases {
			known[pair{a.Source, a.Destination}] = true
		}
		for _, a := range d.Aliases {
			if known[pair{a.Source, a.Destination}] {
				fmt.Fprintf(out, "  Alias %s -> %s: exists (skipping)\n", a.Source, a.Destination)
				continue
			}
			resp, err := client.Post(fmt.Sprintf("/domains/%s/aliases", domain.ID), map[string]any{
				"source":      a.Source,
				"destination": a.Destination,
			})
			if err != nil {
				return fmt.Errorf("create alias %s -> %s: %w", a.Source, a.Destination, err)
			}
			var created model.Alias
			if err := resp.Decode(&created); err != nil {
				return fmt.Errorf("parse alias %s: %w", a.Source, err)
			}
			known[pair{a.Source, a.Destination}] = true
			fmt.Fprintf(out, "  Alias %s -> %s: %s created\n", a.Source, a.Destination, created.ID)
		}
	}

	fmt.Fprintln(out, "Seed complete.")
	return nil
}

func ensureDomain(client *Client, d DomainDef, out io.Writer) (*model.Domain, error) {
	domain, err := client.FindDomainByName(d.Name)
	if err == nil {
		fmt.Fprintf(out, "Domain %q: exists (%s, skipping)\n", d.Name, domain.ID)
		return domain, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("resolve domain %q: %w", d.Name, err)
	}

	fmt.Fprintf(out, "Creating domain %q...\n", d.Name)
	resp, err := client.Post("/domains", map[string]any{
		"name":               d.Name,
		"dkim_selector":      d.DKIMSelector,
		"dkim_key":           d.DKIMKey,
		"display_name":       d.DisplayName,
		"short_display_name": d.ShortDisplayName,
		"imap_host":          d.IMAPHost,
		"pop_host":           d.POPHost,
		"smtp_host":          d.SMTPHost,
	})
	if err != nil {
		return nil, fmt.Errorf("create domain %q: %w", d.Name, err)
	}

	var created model.Domain
	if err := resp.Decode(&created); err != nil {
		return nil, fmt.Errorf("parse domain %q: %w", d.Name, err)
	}
	fmt.Fprintf(out, "  Domain %q: %s created\n", d.Name, created.ID)
	return &created, nil
}
