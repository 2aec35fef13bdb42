package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/model"
)

// AuditRecorder persists audit entries. *core.AuditService implements it.
type AuditRecorder interface {
	Record(ctx context.Context, entry *model.AuditLog) error
}

// AuditLogger is an async audit log writer.
type AuditLogger struct {
	recorder AuditRecorder
	logger   zerolog.Logger
	ch       chan *model.AuditLog
	done     sync.WaitGroup
}

func NewAuditLogger(recorder AuditRecorder, logger zerolog.Logger) *AuditLogger {
	al := &AuditLogger{
		recorder: recorder,
		logger:   logger,
		ch:       make(chan *model.AuditLog, 1024),
	}
	al.done.Add(1)
	go al.drain()
	return al
}

func (al *AuditLogger) drain() {
	defer al.done.Done()
	for entry := range al.ch {
		// The request context is gone by now.
		if err := al.recorder.Record(context.Background(), entry); err != nil {
			al.logger.Error().Err(err).Str("path", entry.Path).Msg("failed to write audit log")
		}
	}
}

// Close stops accepting entries and waits until the queued ones are written.
func (al *AuditLogger) Close() {
	close(al.ch)
	al.done.Wait()
}

// Middleware returns a chi middleware that logs mutating API requests.
func (al *AuditLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		resourceType, resourceID := extractResource(r)

		var apiKeyID *string
		if id, ok := r.Context().Value(APIKeyIDKey).(string); ok {
			apiKeyID = &id
		}

		var sanitizedBody json.RawMessage
		if len(bodyBytes) > 0 && json.Valid(bodyBytes) {
			sanitizedBody = sanitizeBody(bodyBytes)
		}

		select {
		case al.ch <- &model.AuditLog{
			APIKeyID:     apiKeyID,
			Method:       r.Method,
			Path:         r.URL.Path,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			StatusCode:   sw.Status(),
			RequestBody:  sanitizedBody,
		}:
		default:
			auditDropped.Inc()
			al.logger.Warn().Str("path", r.URL.Path).Msg("audit log buffer full, dropping entry")
		}
	})
}

var auditDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "mailpanel_audit_entries_dropped_total",
	Help: "Audit entries dropped because the write buffer was full.",
})

// auditedCollections are the path segments that name a resource type.
var auditedCollections = map[string]bool{
	"domains": true, "mailboxes": true, "aliases": true, "api-keys": true, "dkim": true,
}

// extractResource reads the resource from the matched route: the last
// collection segment and the parameter that follows it. Action segments
// such as /dkim/refresh or /password are skipped, so
// /domains/{id}/dkim/refresh records the domain.
func extractResource(r *http.Request) (*string, *string) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil, nil
	}

	var resourceType, resourceID *string
	for _, seg := range strings.Split(rctx.RoutePattern(), "/") {
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			if resourceType == nil || resourceID != nil {
				continue
			}
			if v := rctx.URLParam(strings.Trim(seg, "{}")); v != "" {
				resourceID = &v
			}
		case auditedCollections[seg]:
			if resourceType != nil && resourceID != nil && seg == "dkim" {
				continue
			}
			t := seg
			resourceType, resourceID = &t, nil
		}
	}
	return resourceType, resourceID
}

// sensitiveFields are redacted from audit logs at any depth.
var sensitiveFields = map[string]bool{
	"password": true, "api_key": true, "key": true, "secret": true, "token": true,
}

func sanitizeBody(body []byte) json.RawMessage {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}
	sanitized, err := json.Marshal(redact(data))
	if err != nil {
		return nil
	}
	return sanitized
}

func redact(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, val := range v {
			if sensitiveFields[strings.ToLower(k)] {
				v[k] = "[REDACTED]"
				continue
			}
			v[k] = redact(val)
		}
	case []any:
		for i := range v {
			v[i] = redact(v[i])
		}
	}
	return v
}
