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

type Mailbox struct {
	svc *core.MailboxService
}

func NewMailbox(svc *core.MailboxService) *Mailbox {
	return &Mailbox{svc: svc}
}

func (h *Mailbox) ListByDomain(w http.ResponseWriter, r *http.Request) {
	domainID, err := request.RequireID(chi.URLParam(r, "domainID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	mailboxes, hasMore, err := h.svc.ListByDomain(r.Context(), domainID, pg.Limit, pg.Cursor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WritePage(w, mailboxes, hasMore, func(m model.Mailbox) string { return m.ID })
}

func (h *Mailbox) Create(w http.ResponseWriter, r *http.Request) {
	domainID, err := request.RequireID(chi.URLParam(r, "domainID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateMailbox
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	mailbox := &model.Mailbox{
		ID:         platform.NewID(),
		DomainID:   domainID,
		Address:    req.Address,
		QuotaBytes: req.QuotaBytes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.svc.Create(r.Context(), mailbox, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, mailbox)
}

func (h *Mailbox) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	mailbox, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, mailbox)
}

func (h *Mailbox) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateMailbox
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	mailbox, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if req.Address != nil {
		mailbox.Address = *req.Address
	}
	if req.QuotaBytes != nil {
		mailbox.QuotaBytes = *req.QuotaBytes
	}

	if err := h.svc.Update(r.Context(), mailbox); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, mailbox)
}

// ChangePassword stores a new credential encoded with the default scheme.
func (h *Mailbox) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.ChangePassword
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.ChangePassword(r.Context(), id, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteNoContent(w)
}

func (h *Mailbox) Delete(w http.ResponseWriter, r *http.Request) {
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
