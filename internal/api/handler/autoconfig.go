package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/autoconfig"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/model"
)

type Autoconfig struct {
	svc *core.DomainService
}

func NewAutoconfig(svc *core.DomainService) *Autoconfig {
	return &Autoconfig{svc: svc}
}

// ByDomain serves the autoconfig file of a domain as a download.
func (h *Autoconfig) ByDomain(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	domain, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.write(w, r, domain, autoconfig.UsernamePlaceholder, "autoconfig.xml")
}

// Discover answers the request a mail client sends to
// autoconfig.<domain>/mail/config-v1.1.xml?emailaddress=...
func (h *Autoconfig) Discover(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("emailaddress")
	name, ok := core.ExtractDomain(email)
	if !ok || name == "" {
		response.WriteError(w, http.StatusBadRequest, "invalid parameter emailaddress")
		return
	}

	domain, err := h.svc.GetByName(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.write(w, r, domain, email, "")
}

func (h *Autoconfig) write(w http.ResponseWriter, r *http.Request, domain *model.Domain, username, filename string) {
	body, err := autoconfig.Render(domain, username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteXML(w, http.StatusOK, body, filename)
}
