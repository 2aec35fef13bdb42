package passwd

import (
	"crypto/des"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Scheme ----------

func TestParseScheme(t *testing.T) {
	for _, s := range Schemes() {
		got, err := ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestParseScheme_Unknown(t *testing.T) {
	_, err := ParseScheme("ROT13")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestParseScheme_CaseSensitive(t *testing.T) {
	_, err := ParseScheme("ssha512")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestSchemes_Count(t *testing.T) {
	assert.Len(t, Schemes(), 21)
	assert.Equal(t, SSHA512, DefaultScheme)
}

func TestScheme_StringInvalid(t *testing.T) {
	assert.Equal(t, "Scheme(99)", Scheme(99).String())
	assert.False(t, Scheme(-1).Valid())
}

func TestEncode_InvalidScheme(t *testing.T) {
	_, err := Encode(Scheme(99), "secret")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

// ---------- Unsalted vectors ----------

func TestEncode_Vectors(t *testing.T) {
	tests := []struct {
		scheme Scheme
		want   string
	}{
		{Plain, "{PLAIN}plopiplop"},
		{PlainTrunc, "{PLAIN-TRUNC}plopiplop"},
		{Clear, "{CLEAR}plopiplop"},
		{Cleartext, "{CLEARTEXT}plopiplop"},
		{PlainMD5, "{PLAIN-MD5}93bd5de10674d5619acb229111e38d0d"},
		{LDAPMD5, "{LDAP-MD5}k71d4QZ01WGayyKREeONDQ=="},
		{SHA, "{SHA}h6LOSkDf2MedKPoixyR/U1o7V2E="},
		{SHA256, "{SHA256}lxvwhomWBVVYwV0BAKTO3L75pfNtG9k9utfXa0G2NTU="},
		{SHA512, "{SHA512}R0mrqf4kSN9gL90YdYZJHkHtL2qeEZN//m9PkkLjX9uZhfIOsDg43Xgnz5W9Pa7hLIdV2Vgn1uOlmoJlM6BngA=="},
	}
	for _, tt := range tests {
		t.Run(tt.scheme.String(), func(t *testing.T) {
			got, err := Encode(tt.scheme, "plopiplop")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			ok, err := Verify("plopiplop", got)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestEncode_LANMANVectors(t *testing.T) {
	got, err := Encode(LANMAN, "password")
	require.NoError(t, err)
	assert.Equal(t, "{LANMAN}e52cac67419a9a224a3b108f3fa6cb6d", got)

	got, err = Encode(LANMAN, "")
	require.NoError(t, err)
	assert.Equal(t, "{LANMAN}aad3b435b51404eeaad3b435b51404ee", got)
}

func TestLANMAN_CaseInsensitive(t *testing.T) {
	ok, err := Verify("PassWord", "{LANMAN}e52cac67419a9a224a3b108f3fa6cb6d")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLANMAN_Unrepresentable(t *testing.T) {
	_, err := Encode(LANMAN, "пароль中")
	assert.Error(t, err)
}

// ---------- Salted schemes ----------

func TestEncode_SaltedRoundTrip(t *testing.T) {
	for _, s := range []Scheme{SSHA, SSHA256, SSHA512, Crypt, DESCrypt, MD5Crypt, SHA256Crypt, SHA512Crypt, Argon2I, Argon2ID, BLFCrypt} {
		t.Run(s.String(), func(t *testing.T) {
			first, err := Encode(s, "plopiplop")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(first, "{"+s.String()+"}"))

			ok, err := Verify("plopiplop", first)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = Verify("wrong", first)
			require.NoError(t, err)
			assert.False(t, ok)

			second, err := Encode(s, "plopiplop")
			require.NoError(t, err)
			assert.NotEqual(t, first, second, "fresh salt expected")
		})
	}
}

func TestEncode_EmptyPlaintext(t *testing.T) {
	for _, s := range Schemes() {
		t.Run(s.String(), func(t *testing.T) {
			got, err := Encode(s, "")
			require.NoError(t, err)
			ok, err := Verify("", got)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestSSHA512_Layout(t *testing.T) {
	got, err := Encode(SSHA512, "secret")
	require.NoError(t, err)
	_, payload, err := Split(got)
	require.NoError(t, err)
	// 64 byte digest plus 16 byte salt, base64 encoded.
	assert.Len(t, payload, 108)
}

func TestSHA512Crypt_Vector(t *testing.T) {
	got, err := sha512Crypt.generate("Hello world!", "$6$saltstring")
	require.NoError(t, err)
	assert.Equal(t, "$6$saltstring$svn8UoSVapNtMuq1ukKS4tPQd8iKwSMHWjl/O817G3uBnIFNjnQJuesI68u4OTLiBFdcbYEdFCoEOfaS35inz1", got)

	ok, err := sha512Crypt.verify("Hello world!", got)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2ID_PHCFormat(t *testing.T) {
	got, err := Encode(Argon2ID, "secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "{ARGON2ID}$argon2id$v=19$m=65536,t=3,p=4$"))
}

func TestArgon2_VariantMismatch(t *testing.T) {
	got, err := argon2i.encode("secret")
	require.NoError(t, err)
	_, err = argon2id.verify("secret", got)
	assert.ErrorIs(t, err, ErrMalformed)
}

// ---------- DES crypt ----------

func TestDESCrypt_ZeroSaltMatchesDES(t *testing.T) {
	plaintext := "password"
	key := make([]byte, 8)
	for i := 0; i < 8; i++ {
		key[i] = plaintext[i] << 1
	}
	block, err := des.NewCipher(key)
	require.NoError(t, err)
	buf := make([]byte, 8)
	for i := 0; i < desCryptRounds; i++ {
		block.Encrypt(buf, buf)
	}

	want := ".." + encodeCryptBlock(binary.BigEndian.Uint64(buf))
	got, err := desCrypt(plaintext, "..")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDESCrypt_Vectors(t *testing.T) {
	tests := []struct {
		plaintext string
		salt      string
		want      string
	}{
		{"password", "ab", "abJnggxhB/yWI"},
		{"test", "aa", "aaqPiZY5xR5l."},
		{"hello world", "zZ", "zZ7jlovpK0l9."},
	}
	for _, tt := range tests {
		t.Run(tt.salt, func(t *testing.T) {
			got, err := desCrypt(tt.plaintext, tt.salt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			ok, err := Verify(tt.plaintext, "{CRYPT}"+tt.want)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestDESCrypt_SaltChangesOutput(t *testing.T) {
	a, err := desCrypt("password", "ab")
	require.NoError(t, err)
	b, err := desCrypt("password", "ac")
	require.NoError(t, err)
	assert.Len(t, a, 13)
	assert.Equal(t, "ab", a[:2])
	assert.NotEqual(t, a[2:], b[2:])
}

func TestDESCrypt_TruncatesAtEight(t *testing.T) {
	a, err := desCrypt("password", "xy")
	require.NoError(t, err)
	b, err := desCrypt("password123", "xy")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDESCrypt_InvalidSalt(t *testing.T) {
	_, err := desCrypt("password", "!!")
	assert.ErrorIs(t, err, ErrMalformed)
}

// ---------- Split / Verify ----------

func TestSplit(t *testing.T) {
	s, payload, err := Split("{SHA}h6LOSkDf2MedKPoixyR/U1o7V2E=")
	require.NoError(t, err)
	assert.Equal(t, SHA, s)
	assert.Equal(t, "h6LOSkDf2MedKPoixyR/U1o7V2E=", payload)
}

func TestSplit_Malformed(t *testing.T) {
	for _, in := range []string{"", "SHA}abc", "{SHA abc"} {
		_, _, err := Split(in)
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
	_, _, err := Split("{NOPE}abc")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestVerify_MalformedPayload(t *testing.T) {
	_, err := Verify("x", "{SSHA512}not base64!")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Verify("x", "{SSHA}AAAA")
	assert.ErrorIs(t, err, ErrMalformed)
}

// ---------- Codec ----------

func TestCodec_GenerateRandom(t *testing.T) {
	c := NewCodec(SSHA512)
	assert.Equal(t, SSHA512, c.Scheme())

	a, err := c.GenerateRandom()
	require.NoError(t, err)
	b, err := c.GenerateRandom()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "{SSHA512}"))
	assert.Greater(t, len(a), 9)
	assert.NotEqual(t, a, b)
}

func TestRandomPassword(t *testing.T) {
	pw, err := RandomPassword()
	require.NoError(t, err)
	assert.Len(t, pw, 16)
	for _, r := range pw {
		assert.Contains(t, randomPasswordAlphabet, string(r))
	}
}
