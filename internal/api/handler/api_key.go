package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/mailpanel/internal/api/middleware"
	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/model"
)

// APIKey manages the keys of the calling operator.
type APIKey struct {
	svc *core.APIKeyService
}

func NewAPIKey(svc *core.APIKeyService) *APIKey {
	return &APIKey{svc: svc}
}

type createAPIKeyResponse struct {
	*model.APIKey
	Key string `json:"key"`
}

func (h *APIKey) List(w http.ResponseWriter, r *http.Request) {
	caller := mw.GetAPIKey(r.Context())
	if caller == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing API key")
		return
	}

	pg := request.ParsePagination(r)

	keys, hasMore, err := h.svc.ListByOperator(r.Context(), caller.OperatorID, pg.Limit, pg.Cursor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WritePage(w, keys, hasMore, func(a model.APIKey) string { return a.ID })
}

// Create issues a new key for the calling operator. The raw key is only part
// of this response.
func (h *APIKey) Create(w http.ResponseWriter, r *http.Request) {
	caller := mw.GetAPIKey(r.Context())
	if caller == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing API key")
		return
	}

	var req request.CreateAPIKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, raw, err := h.svc.Create(r.Context(), caller.OperatorID, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, createAPIKeyResponse{APIKey: key, Key: raw})
}

// Revoke revokes one of the caller's keys. Keys of other operators are
// reported as not found.
func (h *APIKey) Revoke(w http.ResponseWriter, r *http.Request) {
	caller := mw.GetAPIKey(r.Context())
	if caller == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing API key")
		return
	}

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if key.OperatorID != caller.OperatorID {
		response.WriteError(w, http.StatusNotFound, "api key "+id+" not found")
		return
	}

	if err := h.svc.Revoke(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteNoContent(w)
}
