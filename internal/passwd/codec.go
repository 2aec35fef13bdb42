package passwd

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricEncodings = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailpanel_password_encodings_total",
		Help: "Number of credentials encoded, by scheme.",
	},
	[]string{"scheme"},
)

// ErrMalformed is returned when an encoded credential cannot be parsed.
var ErrMalformed = errors.New("malformed encoded credential")

const (
	randomPasswordLength   = 16
	randomPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Codec encodes credentials with a configured default scheme.
type Codec struct {
	scheme Scheme
}

// NewCodec creates a Codec whose Encode uses scheme.
func NewCodec(scheme Scheme) *Codec {
	return &Codec{scheme: scheme}
}

// Scheme returns the default scheme of the codec.
func (c *Codec) Scheme() Scheme {
	return c.scheme
}

// Encode encodes plaintext with the default scheme.
func (c *Codec) Encode(plaintext string) (string, error) {
	return Encode(c.scheme, plaintext)
}

// EncodeWith encodes plaintext with an explicit scheme.
func (c *Codec) EncodeWith(s Scheme, plaintext string) (string, error) {
	return Encode(s, plaintext)
}

// Verify reports whether encoded was derived from plaintext. The scheme is
// taken from the prefix of encoded, not from the codec default.
func (c *Codec) Verify(plaintext, encoded string) (bool, error) {
	return Verify(plaintext, encoded)
}

// GenerateRandom encodes a fresh random 16 character alphanumeric password
// with the default scheme. It seeds new mailboxes until an operator sets a
// real password.
func (c *Codec) GenerateRandom() (string, error) {
	plaintext, err := RandomPassword()
	if err != nil {
		return "", err
	}
	return c.Encode(plaintext)
}

// Encode returns "{SCHEME}payload" for plaintext. Salted schemes draw a new
// salt on every call.
func Encode(s Scheme, plaintext string) (string, error) {
	if !s.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownScheme, s)
	}
	payload, err := schemes[s].encode(plaintext)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", s, err)
	}
	metricEncodings.WithLabelValues(s.String()).Inc()
	return "{" + s.String() + "}" + payload, nil
}

// Split separates an encoded credential into its scheme and payload.
func Split(encoded string) (Scheme, string, error) {
	if !strings.HasPrefix(encoded, "{") {
		return 0, "", fmt.Errorf("%w: missing scheme prefix", ErrMalformed)
	}
	end := strings.IndexByte(encoded, '}')
	if end < 0 {
		return 0, "", fmt.Errorf("%w: unterminated scheme prefix", ErrMalformed)
	}
	s, err := ParseScheme(encoded[1:end])
	if err != nil {
		return 0, "", err
	}
	return s, encoded[end+1:], nil
}

// Verify reports whether encoded was derived from plaintext, re-deriving the
// payload with the salt and parameters embedded in it.
func Verify(plaintext, encoded string) (bool, error) {
	s, payload, err := Split(encoded)
	if err != nil {
		return false, err
	}
	ok, err := schemes[s].verify(plaintext, payload)
	if err != nil {
		return false, fmt.Errorf("verify %s: %w", s, err)
	}
	return ok, nil
}

// RandomPassword returns 16 characters drawn uniformly from [A-Za-z0-9]
// using crypto/rand.
func RandomPassword() (string, error) {
	max := big.NewInt(int64(len(randomPasswordAlphabet)))
	b := make([]byte, randomPasswordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random password: %w", err)
		}
		b[i] = randomPasswordAlphabet[n.Int64()]
	}
	return string(b), nil
}
