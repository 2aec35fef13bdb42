package model

// DashboardStats holds the counts shown on the panel overview.
type DashboardStats struct {
	Domains   int `json:"domains"`
	Mailboxes int `json:"mailboxes"`
	Aliases   int `json:"aliases"`
}
