package handler

import (
	"net/http"

	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/passwd"
)

type PasswordSchemes struct {
	codec *passwd.Codec
}

func NewPasswordSchemes(codec *passwd.Codec) *PasswordSchemes {
	return &PasswordSchemes{codec: codec}
}

type passwordSchemesResponse struct {
	Schemes []string `json:"schemes"`
	Default string   `json:"default"`
}

// List returns every supported scheme identifier and the configured default.
func (h *PasswordSchemes) List(w http.ResponseWriter, r *http.Request) {
	resp := passwordSchemesResponse{Default: h.codec.Scheme().String()}
	for _, s := range passwd.Schemes() {
		resp.Schemes = append(resp.Schemes, s.String())
	}
	response.WriteJSON(w, http.StatusOK, resp)
}
