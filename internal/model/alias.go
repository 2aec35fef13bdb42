package model

import "time"

// Alias forwards mail for Source to Destination.
type Alias struct {
	ID          string    `json:"id" db:"id"`
	DomainID    string    `json:"domain_id" db:"domain_id"`
	Source      string    `json:"source" db:"source"`
	Destination string    `json:"destination" db:"destination"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AliasCheck reports where an alias leads.
type AliasCheck struct {
	AliasID  string `json:"alias_id"`
	Exterior bool   `json:"exterior"`
	Valid    bool   `json:"valid"`
}
