package response

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes v as the response body. Encoding errors are not
// reported since the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteXML writes an already rendered XML document. A non-empty filename
// asks the client to download it.
func WriteXML(w http.ResponseWriter, status int, body []byte, filename string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if filename != "" {
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// PaginatedResponse wraps a list with pagination metadata.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// WritePaginated writes a paginated JSON response.
func WritePaginated(w http.ResponseWriter, status int, items any, nextCursor string, hasMore bool) {
	WriteJSON(w, status, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}

// WritePage writes one page of a cursor-paginated listing. The cursor of
// the next page is the id of the last item; an empty page encodes as [].
func WritePage[T any](w http.ResponseWriter, items []T, hasMore bool, id func(T) string) {
	if items == nil {
		items = []T{}
	}
	var nextCursor string
	if hasMore && len(items) > 0 {
		nextCursor = id(items[len(items)-1])
	}
	WritePaginated(w, http.StatusOK, items, nextCursor, hasMore)
}
