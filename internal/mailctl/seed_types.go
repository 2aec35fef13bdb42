package mailctl

type SeedConfig struct {
	APIURL  string      `yaml:"api_url"`
	APIKey  string      `yaml:"api_key"`
	Domains []DomainDef `yaml:"domains"`
}

type DomainDef struct {
	Name             string       `yaml:"name"`
	DKIMSelector     string       `yaml:"dkim_selector"`
	DKIMKey          string       `yaml:"dkim_key"`
	DisplayName      string       `yaml:"display_name"`
	ShortDisplayName string       `yaml:"short_display_name"`
	IMAPHost         string       `yaml:"imap_host"`
	POPHost          string       `yaml:"pop_host"`
	SMTPHost         string       `yaml:"smtp_host"`
	Mailboxes        []MailboxDef `yaml:"mailboxes"`
	Aliases          []AliasDef   `yaml:"aliases"`
}

type MailboxDef struct {
	Address string `yaml:"address"`
	// Password is the plaintext; empty lets the API draw a random credential.
	Password   string `yaml:"password"`
	QuotaBytes int64  `yaml:"quota_bytes"`
}

type AliasDef struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}
