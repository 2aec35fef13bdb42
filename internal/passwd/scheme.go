// Package passwd encodes mailbox credentials in the "{SCHEME}payload" format
// understood by Dovecot's password databases.
package passwd

import (
	"errors"
	"fmt"
)

// ErrUnknownScheme is returned when a scheme identifier is not one of the
// supported schemes. It is a configuration error.
var ErrUnknownScheme = errors.New("unknown password scheme")

// Scheme identifies a password encoding. The set is closed: every value
// between Plain and LANMAN has an entry in the scheme table.
type Scheme int

const (
	Plain Scheme = iota
	PlainTrunc
	Clear
	Cleartext
	PlainMD5
	LDAPMD5
	SHA
	SSHA
	SHA256
	SSHA256
	SHA512
	SSHA512
	Crypt
	DESCrypt
	MD5Crypt
	SHA256Crypt
	SHA512Crypt
	Argon2I
	Argon2ID
	BLFCrypt
	LANMAN

	numSchemes
)

// DefaultScheme is used when no scheme is configured.
const DefaultScheme = SSHA512

type (
	// encodeFunc returns the payload that follows the "{SCHEME}" prefix.
	encodeFunc func(plaintext string) (string, error)
	// verifyFunc reports whether payload was derived from plaintext.
	verifyFunc func(plaintext, payload string) (bool, error)
)

type schemeDef struct {
	name   string
	encode encodeFunc
	verify verifyFunc
}

var schemes = [numSchemes]schemeDef{
	Plain:       {"PLAIN", encodeIdentity, verifyIdentity},
	PlainTrunc:  {"PLAIN-TRUNC", encodeIdentity, verifyIdentity},
	Clear:       {"CLEAR", encodeIdentity, verifyIdentity},
	Cleartext:   {"CLEARTEXT", encodeIdentity, verifyIdentity},
	PlainMD5:    {"PLAIN-MD5", hexDigest(md5Hash), verifyHexDigest(md5Hash)},
	LDAPMD5:     {"LDAP-MD5", base64Digest(md5Hash), verifyBase64Digest(md5Hash)},
	SHA:         {"SHA", base64Digest(sha1Hash), verifyBase64Digest(sha1Hash)},
	SSHA:        {"SSHA", saltedDigest(sha1Hash), verifySaltedDigest(sha1Hash)},
	SHA256:      {"SHA256", base64Digest(sha256Hash), verifyBase64Digest(sha256Hash)},
	SSHA256:     {"SSHA256", saltedDigest(sha256Hash), verifySaltedDigest(sha256Hash)},
	SHA512:      {"SHA512", base64Digest(sha512Hash), verifyBase64Digest(sha512Hash)},
	SSHA512:     {"SSHA512", saltedDigest(sha512Hash), verifySaltedDigest(sha512Hash)},
	Crypt:       {"CRYPT", encodeDESCrypt, verifyDESCrypt},
	DESCrypt:    {"DES-CRYPT", encodeDESCrypt, verifyDESCrypt},
	MD5Crypt:    {"MD5-CRYPT", md5Crypt.encode, md5Crypt.verify},
	SHA256Crypt: {"SHA256-CRYPT", sha256Crypt.encode, sha256Crypt.verify},
	SHA512Crypt: {"SHA512-CRYPT", sha512Crypt.encode, sha512Crypt.verify},
	Argon2I:     {"ARGON2I", argon2i.encode, argon2i.verify},
	Argon2ID:    {"ARGON2ID", argon2id.encode, argon2id.verify},
	BLFCrypt:    {"BLF-CRYPT", encodeBcrypt, verifyBcrypt},
	LANMAN:      {"LANMAN", encodeLANMAN, verifyLANMAN},
}

var schemesByName = make(map[string]Scheme, numSchemes)

func init() {
	for s := Scheme(0); s < numSchemes; s++ {
		def := schemes[s]
		if def.name == "" || def.encode == nil || def.verify == nil {
			panic(fmt.Sprintf("passwd: scheme %d has no definition", int(s)))
		}
		schemesByName[def.name] = s
	}
}

// ParseScheme maps a case-sensitive identifier such as "SSHA512" to its
// Scheme.
func ParseScheme(name string) (Scheme, error) {
	s, ok := schemesByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return s, nil
}

// Valid reports whether s is one of the defined schemes.
func (s Scheme) Valid() bool {
	return s >= 0 && s < numSchemes
}

func (s Scheme) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
	return schemes[s].name
}

// Schemes returns every supported scheme in table order.
func Schemes() []Scheme {
	out := make([]Scheme, 0, numSchemes)
	for s := Scheme(0); s < numSchemes; s++ {
		out = append(out, s)
	}
	return out
}
