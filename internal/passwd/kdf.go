package passwd

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// argon2Params are the libsodium "moderate" defaults Dovecot uses.
const (
	argon2Memory  = 64 * 1024
	argon2Time    = 3
	argon2Threads = 4
	argon2KeyLen  = 32
)

type argon2Variant struct {
	name string
	key  func(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte
}

var (
	argon2i  = argon2Variant{name: "argon2i", key: argon2.Key}
	argon2id = argon2Variant{name: "argon2id", key: argon2.IDKey}
)

// encode returns a PHC string: $argon2id$v=19$m=65536,t=3,p=4$salt$key.
func (a argon2Variant) encode(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := a.key([]byte(plaintext), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		a.name, argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (a argon2Variant) verify(plaintext, payload string) (bool, error) {
	parts := strings.Split(payload, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != a.name {
		return false, fmt.Errorf("%w: not a %s PHC string", ErrMalformed, a.name)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: version: %v", ErrMalformed, err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported argon2 version %d", ErrMalformed, version)
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("%w: parameters: %v", ErrMalformed, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrMalformed, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: key: %v", ErrMalformed, err)
	}

	got := a.key([]byte(plaintext), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func encodeBcrypt(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

func verifyBcrypt(plaintext, payload string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(payload), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
