package passwd

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/GehirnInc/crypt"
	_ "github.com/GehirnInc/crypt/md5_crypt"
	_ "github.com/GehirnInc/crypt/sha256_crypt"
	_ "github.com/GehirnInc/crypt/sha512_crypt"
)

// cryptAlphabet is the crypt(3) base64 alphabet, also used for salts.
const cryptAlphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func randomCryptSalt(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	for i := range b {
		b[i] = cryptAlphabet[b[i]&0x3f]
	}
	return string(b), nil
}

// modularCrypt is a "$id$salt$hash" crypt(3) variant.
type modularCrypt struct {
	alg     crypt.Crypt
	magic   string
	saltLen int
}

var (
	md5Crypt    = modularCrypt{alg: crypt.MD5, magic: "$1$", saltLen: 8}
	sha256Crypt = modularCrypt{alg: crypt.SHA256, magic: "$5$", saltLen: 16}
	sha512Crypt = modularCrypt{alg: crypt.SHA512, magic: "$6$", saltLen: 16}
)

func (m modularCrypt) encode(plaintext string) (string, error) {
	salt, err := randomCryptSalt(m.saltLen)
	if err != nil {
		return "", err
	}
	return m.generate(plaintext, m.magic+salt)
}

func (m modularCrypt) generate(plaintext, salt string) (string, error) {
	out, err := m.alg.New().Generate([]byte(plaintext), []byte(salt))
	if err != nil {
		return "", fmt.Errorf("crypt %s: %w", m.magic, err)
	}
	return out, nil
}

// verify regenerates the hash using the stored string as salt, which carries
// the magic, the optional rounds and the salt.
func (m modularCrypt) verify(plaintext, payload string) (bool, error) {
	if len(payload) < len(m.magic) || payload[:len(m.magic)] != m.magic {
		return false, fmt.Errorf("%w: expected %s prefix", ErrMalformed, m.magic)
	}
	got, err := m.generate(plaintext, payload)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(payload)) == 1, nil
}
