// Package dkim checks that the DKIM public key published in DNS matches the
// key stored for a domain.
package dkim

import (
	"context"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/model"
)

// DefaultTimeout bounds a single TXT lookup when none is configured.
const DefaultTimeout = 5 * time.Second

var metricChecks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailpanel_dkim_checks_total",
		Help: "Number of DKIM checks, by resulting status.",
	},
	[]string{"status"},
)

// keyPattern matches a tag-list whose p= tag carries the public key,
// optionally preceded by other ";"-separated tags and an opening quote.
var keyPattern = regexp.MustCompile(`^"?(.*;\s?)*p=([^;"]*).*$`)

// Resolver fetches TXT records. Each element is one record with its
// character-strings concatenated.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// RecordName returns the DNS name holding the key for selector.
func RecordName(selector, domain string) string {
	return selector + "._domainkey." + domain
}

// ParseKey extracts the p= value from a DKIM TXT record.
func ParseKey(text string) (string, bool) {
	m := keyPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[len(m)-1], true
}

// Result is the outcome of one check, including what DNS returned.
type Result struct {
	RecordName string
	Record     string
	Key        string
	Status     model.DKIMStatus
}

// Verifier runs DKIM checks against a Resolver.
type Verifier struct {
	resolver Resolver
	timeout  time.Duration
}

func NewVerifier(resolver Resolver, timeout time.Duration) *Verifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Verifier{resolver: resolver, timeout: timeout}
}

// Check returns the DKIM status of domain for the given selector and stored
// key. Lookup failures of any kind yield DKIMNotFound; they are never
// returned as errors.
func (v *Verifier) Check(ctx context.Context, domain, selector, key string) model.DKIMStatus {
	return v.Inspect(ctx, domain, selector, key).Status
}

// Inspect is Check with the record and extracted key kept for display.
func (v *Verifier) Inspect(ctx context.Context, domain, selector, key string) Result {
	res := Result{RecordName: RecordName(selector, domain)}
	res.Status = v.inspect(ctx, &res, selector, key)
	metricChecks.WithLabelValues(res.Status.String()).Inc()
	return res
}

func (v *Verifier) inspect(ctx context.Context, res *Result, selector, key string) model.DKIMStatus {
	if selector == "" || key == "" {
		return model.DKIMNotSet
	}

	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	records, err := v.resolver.LookupTXT(lookupCtx, res.RecordName)
	if err != nil || len(records) == 0 {
		zerolog.Ctx(ctx).Debug().Err(err).Str("record", res.RecordName).Msg("dkim record lookup failed")
		return model.DKIMNotFound
	}

	res.Record = records[0]
	found, ok := ParseKey(res.Record)
	if !ok {
		return model.DKIMNoDNSKey
	}
	res.Key = found
	if found != key {
		return model.DKIMNoMatch
	}
	return model.DKIMOK
}
