package platform

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const shortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const shortIDLength = 12

// NewID returns a random UUID string used as the primary key of every row.
func NewID() string {
	return uuid.New().String()
}

// NewSortableID returns a UUIDv7 string. Its lexical order follows creation
// time, so it doubles as a cursor for newest-first listings.
func NewSortableID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewRequestID returns a short random identifier for correlating the log
// lines of one request.
func NewRequestID() string {
	b := make([]byte, shortIDLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = shortIDAlphabet[b[i]%byte(len(shortIDAlphabet))]
	}
	return "req_" + string(b)
}
