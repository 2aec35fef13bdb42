package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/platform"
)

type Domain struct {
	svc *core.DomainService
}

func NewDomain(svc *core.DomainService) *Domain {
	return &Domain{svc: svc}
}

func (h *Domain) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	domains, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WritePage(w, domains, hasMore, func(d model.Domain) string { return d.ID })
}

func (h *Domain) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDomain
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	domain := &model.Domain{
		ID:               platform.NewID(),
		Name:             req.Name,
		DKIMSelector:     req.DKIMSelector,
		DKIMKey:          req.DKIMKey,
		DisplayName:      req.DisplayName,
		ShortDisplayName: req.ShortDisplayName,
		IMAPHost:         req.IMAPHost,
		POPHost:          req.POPHost,
		SMTPHost:         req.SMTPHost,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.svc.Create(r.Context(), domain); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, domain)
}

func (h *Domain) Get(w http.ResponseWriter, r *http.Request) {
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

	response.WriteJSON(w, http.StatusOK, domain)
}

func (h *Domain) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateDomain
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	domain, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	for dst, src := range map[*string]*string{
		&domain.Name:             req.Name,
		&domain.DKIMSelector:     req.DKIMSelector,
		&domain.DKIMKey:          req.DKIMKey,
		&domain.DisplayName:      req.DisplayName,
		&domain.ShortDisplayName: req.ShortDisplayName,
		&domain.IMAPHost:         req.IMAPHost,
		&domain.POPHost:          req.POPHost,
		&domain.SMTPHost:         req.SMTPHost,
	} {
		if src != nil {
			*dst = *src
		}
	}

	if err := h.svc.Update(r.Context(), domain); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, domain)
}

func (h *Domain) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteNoContent(w)
}

// RefreshDKIM re-checks the DKIM record and returns the updated domain.
func (h *Domain) RefreshDKIM(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	domain, err := h.svc.RefreshDKIM(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, domain)
}

// ScanDKIM re-checks the DKIM record and returns what DNS published.
func (h *Domain) ScanDKIM(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	scan, err := h.svc.ScanDKIM(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, scan)
}

func (h *Domain) RefreshAllDKIM(w http.ResponseWriter, r *http.Request) {
	scans, err := h.svc.RefreshAllDKIM(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"items": scans})
}
