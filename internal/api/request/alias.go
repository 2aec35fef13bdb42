package request

type CreateAlias struct {
	Source      string `json:"source" validate:"required,email"`
	Destination string `json:"destination" validate:"required,email"`
}

type UpdateAlias struct {
	Source      *string `json:"source" validate:"omitempty,email"`
	Destination *string `json:"destination" validate:"omitempty,email"`
}
