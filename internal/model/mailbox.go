package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mailbox is an email account inside a domain. Password holds the encoded
// credential and is never serialised.
type Mailbox struct {
	ID         string    `json:"id" db:"id"`
	DomainID   string    `json:"domain_id" db:"domain_id"`
	Address    string    `json:"address" db:"address"`
	Password   string    `json:"-" db:"password"`
	QuotaBytes int64     `json:"quota_bytes" db:"quota_bytes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// MarshalJSON adds the readable_quota field next to quota_bytes.
func (m Mailbox) MarshalJSON() ([]byte, error) {
	type plain Mailbox
	return json.Marshal(struct {
		plain
		ReadableQuota string `json:"readable_quota"`
	}{plain(m), ReadableQuota(m.QuotaBytes)})
}

// ReadableQuota formats a byte count with decimal units, truncating.
func ReadableQuota(bytes int64) string {
	switch {
	case bytes < 1000:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1000000:
		return fmt.Sprintf("%d kB", bytes/1000)
	case bytes < 1000000000:
		return fmt.Sprintf("%d MB", bytes/1000000)
	default:
		return fmt.Sprintf("%d GB", bytes/1000000000)
	}
}
