package request

// CreateAPIKey holds the request body for creating an API key.
type CreateAPIKey struct {
	Name string `json:"name" validate:"required,slug"`
}
