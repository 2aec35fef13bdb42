package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/api/handler"
	mw "github.com/edvin/mailpanel/internal/api/middleware"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/passwd"
)

// Pinger reports database reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	services    *core.Services
	codec       *passwd.Codec
	db          Pinger
	auditLogger *mw.AuditLogger
}

func NewServer(logger zerolog.Logger, db Pinger, services *core.Services, codec *passwd.Codec) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		codec:       codec,
		db:          db,
		auditLogger: mw.NewAuditLogger(services.Audit, logger),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// Mail clients fetch these without credentials.
	autoconfig := handler.NewAutoconfig(s.services.Domain)
	s.router.Get("/.well-known/autoconfig/mail/config-v1.1.xml", autoconfig.Discover)
	s.router.Get("/mail/config-v1.1.xml", autoconfig.Discover)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.services.APIKey))
		r.Use(s.auditLogger.Middleware)

		dashboard := handler.NewDashboard(s.services.Dashboard)
		r.Get("/dashboard/stats", dashboard.Stats)

		audit := handler.NewAudit(s.services.Audit)
		r.Get("/audit-logs", audit.List)

		search := handler.NewSearch(s.services.Search)
		r.Get("/search", search.Search)

		schemes := handler.NewPasswordSchemes(s.codec)
		r.Get("/password-schemes", schemes.List)

		// Domains
		domain := handler.NewDomain(s.services.Domain)
		r.Get("/domains", domain.List)
		r.Post("/domains", domain.Create)
		r.Get("/domains/{id}", domain.Get)
		r.Put("/domains/{id}", domain.Update)
		r.Delete("/domains/{id}", domain.Delete)
		r.Post("/domains/{id}/dkim/refresh", domain.RefreshDKIM)
		r.Get("/domains/{id}/dkim/scan", domain.ScanDKIM)
		r.Get("/domains/{id}/autoconfig.xml", autoconfig.ByDomain)
		r.Post("/dkim/refresh", domain.RefreshAllDKIM)

		// Mailboxes
		mailbox := handler.NewMailbox(s.services.Mailbox)
		r.Get("/domains/{domainID}/mailboxes", mailbox.ListByDomain)
		r.Post("/domains/{domainID}/mailboxes", mailbox.Create)
		r.Get("/mailboxes/{id}", mailbox.Get)
		r.Put("/mailboxes/{id}", mailbox.Update)
		r.Delete("/mailboxes/{id}", mailbox.Delete)
		r.Put("/mailboxes/{id}/password", mailbox.ChangePassword)

		// Aliases
		alias := handler.NewAlias(s.services.Alias)
		r.Get("/domains/{domainID}/aliases", alias.ListByDomain)
		r.Post("/domains/{domainID}/aliases", alias.Create)
		r.Get("/aliases/{id}", alias.Get)
		r.Put("/aliases/{id}", alias.Update)
		r.Delete("/aliases/{id}", alias.Delete)
		r.Get("/aliases/{id}/verify", alias.Verify)

		// API keys
		apiKey := handler.NewAPIKey(s.services.APIKey)
		r.Get("/api-keys", apiKey.List)
		r.Post("/api-keys", apiKey.Create)
		r.Delete("/api-keys/{id}", apiKey.Revoke)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.db.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

// Close flushes pending audit entries.
func (s *Server) Close() {
	s.auditLogger.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
