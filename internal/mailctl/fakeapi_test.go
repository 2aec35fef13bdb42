package mailctl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/model"
)

const testAPIKey = "mp_testkey"

// fakeAPI is an in-memory stand-in for the REST API.
type fakeAPI struct {
	mu        sync.Mutex
	domains   []model.Domain
	mailboxes []model.Mailbox
	aliases   []model.Alias
	passwords map[string]string
	posts     []string
	nextID    int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{passwords: map[string]string{}}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(f.auth)
		r.Get("/domains", f.listDomains)
		r.Post("/domains", f.createDomain)
		r.Get("/domains/{id}/mailboxes", f.listMailboxes)
		r.Post("/domains/{id}/mailboxes", f.createMailbox)
		r.Get("/domains/{id}/aliases", f.listAliases)
		r.Post("/domains/{id}/aliases", f.createAlias)
		r.Post("/domains/{id}/dkim/refresh", f.refreshDKIM)
		r.Post("/dkim/refresh", f.refreshAll)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, NewClient(srv.URL, testAPIKey)
}

func (f *fakeAPI) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAPIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid API key"})
			return
		}
		if r.Method == http.MethodPost {
			f.mu.Lock()
			f.posts = append(f.posts, r.URL.Path)
			f.mu.Unlock()
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// paginate serves items one per page so cursors get exercised.
func paginate[T any](w http.ResponseWriter, r *http.Request, items []T) {
	start := 0
	if c := r.URL.Query().Get("cursor"); c != "" {
		fmt.Sscanf(c, "%d", &start)
	}
	out := []T{}
	if start < len(items) {
		out = append(out, items[start])
	}
	hasMore := start+1 < len(items)
	next := ""
	if hasMore {
		next = fmt.Sprintf("%d", start+1)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "next_cursor": next, "has_more": hasMore})
}

func (f *fakeAPI) listDomains(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	paginate(w, r, f.domains)
}

func (f *fakeAPI) createDomain(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var d model.Domain
	_ = json.NewDecoder(r.Body).Decode(&d)
	d.ID = f.id()
	f.domains = append(f.domains, d)
	writeJSON(w, http.StatusCreated, d)
}

func (f *fakeAPI) domainName(id string) string {
	for _, d := range f.domains {
		if d.ID == id {
			return d.Name
		}
	}
	return ""
}

func (f *fakeAPI) listMailboxes(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Mailbox
	for _, m := range f.mailboxes {
		if m.DomainID == chi.URLParam(r, "id") {
			out = append(out, m)
		}
	}
	paginate(w, r, out)
}

func (f *fakeAPI) createMailbox(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var req struct {
		Address    string  `json:"address"`
		Password   *string `json:"password"`
		QuotaBytes int64   `json:"quota_bytes"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	domainID := chi.URLParam(r, "id")
	if !strings.HasSuffix(req.Address, "@"+f.domainName(domainID)) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "domain mismatch"})
		return
	}
	m := model.Mailbox{ID: f.id(), DomainID: domainID, Address: req.Address, QuotaBytes: req.QuotaBytes}
	if req.Password != nil {
		f.passwords[m.Address] = *req.Password
	}
	f.mailboxes = append(f.mailboxes, m)
	writeJSON(w, http.StatusCreated, m)
}

func (f *fakeAPI) listAliases(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Alias
	for _, a := range f.aliases {
		if a.DomainID == chi.URLParam(r, "id") {
			out = append(out, a)
		}
	}
	paginate(w, r, out)
}

func (f *fakeAPI) createAlias(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var a model.Alias
	_ = json.NewDecoder(r.Body).Decode(&a)
	a.ID = f.id()
	a.DomainID = chi.URLParam(r, "id")
	f.aliases = append(f.aliases, a)
	writeJSON(w, http.StatusCreated, a)
}

func (f *fakeAPI) refreshDKIM(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.domains {
		if d.ID == chi.URLParam(r, "id") {
			d.DKIMStatus = model.DKIMOK
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "domain not found"})
}

func (f *fakeAPI) refreshAll(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var scans []model.DKIMScan
	for _, d := range f.domains {
		scans = append(scans, model.DKIMScan{
			DomainID:   d.ID,
			RecordName: "mail._domainkey." + d.Name,
			Status:     model.DKIMNoMatch,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": scans})
}
