package request

type CreateDomain struct {
	Name             string `json:"name" validate:"required,domain"`
	DKIMSelector     string `json:"dkim_selector" validate:"omitempty,max=63"`
	DKIMKey          string `json:"dkim_key"`
	DisplayName      string `json:"display_name" validate:"max=255"`
	ShortDisplayName string `json:"short_display_name" validate:"max=64"`
	IMAPHost         string `json:"imap_host" validate:"omitempty,hostname_rfc1123"`
	POPHost          string `json:"pop_host" validate:"omitempty,hostname_rfc1123"`
	SMTPHost         string `json:"smtp_host" validate:"omitempty,hostname_rfc1123"`
}

// UpdateDomain changes only the fields that are present.
type UpdateDomain struct {
	Name             *string `json:"name" validate:"omitempty,domain"`
	DKIMSelector     *string `json:"dkim_selector" validate:"omitempty,max=63"`
	DKIMKey          *string `json:"dkim_key"`
	DisplayName      *string `json:"display_name" validate:"omitempty,max=255"`
	ShortDisplayName *string `json:"short_display_name" validate:"omitempty,max=64"`
	IMAPHost         *string `json:"imap_host" validate:"omitempty,hostname_rfc1123"`
	POPHost          *string `json:"pop_host" validate:"omitempty,hostname_rfc1123"`
	SMTPHost         *string `json:"smtp_host" validate:"omitempty,hostname_rfc1123"`
}
