package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/passwd"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// noRowsDB answers every lookup with no rows.
type noRowsDB struct{}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

func (noRowsDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (noRowsDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}
func (noRowsDB) QueryRow(context.Context, string, ...any) pgx.Row { return noRow{} }
func (noRowsDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("unexpected transaction")
}

func newTestServer(t *testing.T, ping error) *Server {
	t.Helper()
	codec := passwd.NewCodec(passwd.SSHA512)
	services := core.NewServices(noRowsDB{}, codec, nil, core.DKIMRefreshConfig{})
	s := NewServer(zerolog.Nop(), fakePinger{err: ping}, services, codec)
	t.Cleanup(s.Close)
	return s
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Readyz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	s = newTestServer(t, errors.New("connection refused"))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var checks map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &checks))
	assert.Equal(t, "connection refused", checks["db"])
}

func TestServer_APIRequiresKey(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/v1/domains", "/api/v1/dashboard/stats", "/api/v1/password-schemes", "/api/v1/search?q=example"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/domains", nil)
	req.Header.Set("X-API-Key", "mpk_unknown")
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_AutoconfigIsPublic(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/autoconfig/mail/config-v1.1.xml?emailaddress=a@unknown.org", nil))

	// Reached the handler: unknown domain, not an auth failure.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, nil)
	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mailpanel_http_requests_total")
}
