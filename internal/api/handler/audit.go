package handler

import (
	"net/http"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/model"
)

type Audit struct {
	svc *core.AuditService
}

func NewAudit(svc *core.AuditService) *Audit {
	return &Audit{svc: svc}
}

// List returns audit entries newest first, optionally filtered by
// resource_type.
func (h *Audit) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	logs, hasMore, err := h.svc.List(r.Context(), r.URL.Query().Get("resource_type"), pg.Limit, pg.Cursor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WritePage(w, logs, hasMore, func(a model.AuditLog) string { return a.ID })
}
