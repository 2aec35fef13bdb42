package model

import "time"

// Domain is a virtual mail domain. It owns its mailboxes and aliases.
type Domain struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	DKIMSelector     string     `json:"dkim_selector" db:"dkim_selector"`
	DKIMKey          string     `json:"dkim_key" db:"dkim_key"`
	DKIMStatus       DKIMStatus `json:"dkim_status" db:"dkim_status"`
	DKIMCheckedAt    time.Time  `json:"dkim_checked_at" db:"dkim_checked_at"`
	DisplayName      string     `json:"display_name" db:"display_name"`
	ShortDisplayName string     `json:"short_display_name" db:"short_display_name"`
	IMAPHost         string     `json:"imap_host" db:"imap_host"`
	POPHost          string     `json:"pop_host" db:"pop_host"`
	SMTPHost         string     `json:"smtp_host" db:"smtp_host"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// IMAPServer returns the configured IMAP host, or imap.<name> when unset.
func (d *Domain) IMAPServer() string {
	if d.IMAPHost != "" {
		return d.IMAPHost
	}
	return "imap." + d.Name
}

// SMTPServer returns the configured SMTP host, or smtp.<name> when unset.
func (d *Domain) SMTPServer() string {
	if d.SMTPHost != "" {
		return d.SMTPHost
	}
	return "smtp." + d.Name
}

// DKIMScan is the detailed outcome of one DKIM check.
type DKIMScan struct {
	DomainID   string     `json:"domain_id"`
	RecordName string     `json:"record_name"`
	Record     string     `json:"record,omitempty"`
	FoundKey   string     `json:"found_key,omitempty"`
	StoredKey  string     `json:"stored_key"`
	Status     DKIMStatus `json:"status"`
	CheckedAt  time.Time  `json:"checked_at"`
}
