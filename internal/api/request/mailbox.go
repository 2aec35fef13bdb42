package request

// CreateMailbox creates a mailbox. Without a password the mailbox gets a
// random credential.
type CreateMailbox struct {
	Address    string  `json:"address" validate:"required,email"`
	Password   *string `json:"password" validate:"omitempty,min=1"`
	QuotaBytes int64   `json:"quota_bytes" validate:"gte=0"`
}

type UpdateMailbox struct {
	Address    *string `json:"address" validate:"omitempty,email"`
	QuotaBytes *int64  `json:"quota_bytes" validate:"omitempty,gte=0"`
}

type ChangePassword struct {
	Password string `json:"password" validate:"required"`
}
