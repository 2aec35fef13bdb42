package passwd

import (
	"crypto/des"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// lanmanMagic is the constant block both halves of the password encrypt.
var lanmanMagic = []byte("KGS!@#$%")

// lanmanHash computes the LAN Manager hash: the upper-cased password in the
// OEM code page, padded to 14 bytes, split into two DES keys.
func lanmanHash(plaintext string) ([]byte, error) {
	oem, err := charmap.CodePage437.NewEncoder().String(strings.ToUpper(plaintext))
	if err != nil {
		return nil, fmt.Errorf("password not representable in code page 437: %w", err)
	}
	pw := make([]byte, 14)
	copy(pw, oem)

	out := make([]byte, 0, 16)
	for _, half := range [][]byte{pw[:7], pw[7:]} {
		block, err := des.NewCipher(lanmanKey(half))
		if err != nil {
			return nil, fmt.Errorf("lanman cipher: %w", err)
		}
		dst := make([]byte, des.BlockSize)
		block.Encrypt(dst, lanmanMagic)
		out = append(out, dst...)
	}
	return out, nil
}

// lanmanKey spreads 56 bits over 8 bytes, leaving the low parity bit clear.
func lanmanKey(s []byte) []byte {
	k := []byte{
		s[0] >> 1,
		(s[0]&0x01)<<6 | s[1]>>2,
		(s[1]&0x03)<<5 | s[2]>>3,
		(s[2]&0x07)<<4 | s[3]>>4,
		(s[3]&0x0f)<<3 | s[4]>>5,
		(s[4]&0x1f)<<2 | s[5]>>6,
		(s[5]&0x3f)<<1 | s[6]>>7,
		s[6] & 0x7f,
	}
	for i := range k {
		k[i] <<= 1
	}
	return k
}

func encodeLANMAN(plaintext string) (string, error) {
	h, err := lanmanHash(plaintext)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h), nil
}

func verifyLANMAN(plaintext, payload string) (bool, error) {
	want, err := hex.DecodeString(payload)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	got, err := lanmanHash(plaintext)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
