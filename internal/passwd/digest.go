package passwd

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
)

// saltSize is the salt length of the SSHA family and the KDF schemes.
const saltSize = 16

var (
	md5Hash    = md5.New
	sha1Hash   = sha1.New
	sha256Hash = sha256.New
	sha512Hash = sha512.New
)

func encodeIdentity(plaintext string) (string, error) {
	return plaintext, nil
}

func verifyIdentity(plaintext, payload string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(plaintext), []byte(payload)) == 1, nil
}

func sum(h func() hash.Hash, parts ...[]byte) []byte {
	d := h()
	for _, p := range parts {
		d.Write(p)
	}
	return d.Sum(nil)
}

func hexDigest(h func() hash.Hash) encodeFunc {
	return func(plaintext string) (string, error) {
		return hex.EncodeToString(sum(h, []byte(plaintext))), nil
	}
}

func verifyHexDigest(h func() hash.Hash) verifyFunc {
	return func(plaintext, payload string) (bool, error) {
		want, err := hex.DecodeString(payload)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return subtle.ConstantTimeCompare(sum(h, []byte(plaintext)), want) == 1, nil
	}
}

func base64Digest(h func() hash.Hash) encodeFunc {
	return func(plaintext string) (string, error) {
		return base64.StdEncoding.EncodeToString(sum(h, []byte(plaintext))), nil
	}
}

func verifyBase64Digest(h func() hash.Hash) verifyFunc {
	return func(plaintext, payload string) (bool, error) {
		want, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return subtle.ConstantTimeCompare(sum(h, []byte(plaintext)), want) == 1, nil
	}
}

// saltedDigest produces base64(digest(password || salt) || salt).
func saltedDigest(h func() hash.Hash) encodeFunc {
	return func(plaintext string) (string, error) {
		salt := make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		digest := sum(h, []byte(plaintext), salt)
		return base64.StdEncoding.EncodeToString(append(digest, salt...)), nil
	}
}

func verifySaltedDigest(h func() hash.Hash) verifyFunc {
	return func(plaintext, payload string) (bool, error) {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		size := h().Size()
		if len(raw) <= size {
			return false, fmt.Errorf("%w: salted digest too short", ErrMalformed)
		}
		digest, salt := raw[:size], raw[size:]
		return subtle.ConstantTimeCompare(sum(h, []byte(plaintext), salt), digest) == 1, nil
	}
}
