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

type Alias struct {
	svc *core.AliasService
}

func NewAlias(svc *core.AliasService) *Alias {
	return &Alias{svc: svc}
}

func (h *Alias) ListByDomain(w http.ResponseWriter, r *http.Request) {
	domainID, err := request.RequireID(chi.URLParam(r, "domainID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	aliases, hasMore, err := h.svc.ListByDomain(r.Context(), domainID, pg.Limit, pg.Cursor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WritePage(w, aliases, hasMore, func(a model.Alias) string { return a.ID })
}

func (h *Alias) Create(w http.ResponseWriter, r *http.Request) {
	domainID, err := request.RequireID(chi.URLParam(r, "domainID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateAlias
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	alias := &model.Alias{
		ID:          platform.NewID(),
		DomainID:    domainID,
		Source:      req.Source,
		Destination: req.Destination,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.svc.Create(r.Context(), alias); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, alias)
}

func (h *Alias) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	alias, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, alias)
}

func (h *Alias) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateAlias
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	alias, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if req.Source != nil {
		alias.Source = *req.Source
	}
	if req.Destination != nil {
		alias.Destination = *req.Destination
	}

	if err := h.svc.Update(r.Context(), alias); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, alias)
}

func (h *Alias) Delete(w http.ResponseWriter, r *http.Request) {
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

// Verify reports whether the alias leads outside the managed domains and
// whether its destination resolves.
func (h *Alias) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	check, err := h.svc.Check(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, check)
}
