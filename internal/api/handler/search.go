package handler

import (
	"net/http"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
)

type Search struct {
	svc *core.SearchService
}

func NewSearch(svc *core.SearchService) *Search {
	return &Search{svc: svc}
}

type searchResponse struct {
	Query   string              `json:"query"`
	Results []core.SearchResult `json:"results"`
}

// Search looks up domains, mailboxes and aliases containing ?q=.
func (h *Search) Search(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseSearch(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.svc.Search(r.Context(), params.Query, params.Limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, searchResponse{Query: params.Query, Results: results})
}
