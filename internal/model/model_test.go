package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDKIMStatus_Values(t *testing.T) {
	assert.Equal(t, DKIMStatus(0), DKIMNotSet)
	assert.Equal(t, DKIMStatus(1), DKIMNotFound)
	assert.Equal(t, DKIMStatus(2), DKIMNoDNSKey)
	assert.Equal(t, DKIMStatus(3), DKIMNoMatch)
	assert.Equal(t, DKIMStatus(4), DKIMOK)
}

func TestDKIMStatus_String(t *testing.T) {
	assert.Equal(t, "NOTSET", DKIMNotSet.String())
	assert.Equal(t, "OK", DKIMOK.String())
	assert.Equal(t, "DKIMStatus(7)", DKIMStatus(7).String())
	assert.Equal(t, "key and dns record don't match", DKIMNoMatch.Description())
}

func TestDKIMStatus_JSON(t *testing.T) {
	b, err := json.Marshal(DKIMNoDNSKey)
	require.NoError(t, err)
	assert.Equal(t, `"NODNSKEY"`, string(b))

	var s DKIMStatus
	require.NoError(t, json.Unmarshal([]byte(`"NOMATCH"`), &s))
	assert.Equal(t, DKIMNoMatch, s)

	assert.Error(t, json.Unmarshal([]byte(`"BROKEN"`), &s))
}

func TestReadableQuota(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1 kB"},
		{1500, "1 kB"},
		{999999, "999 kB"},
		{1000000, "1 MB"},
		{2500000000, "2 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadableQuota(tt.in))
	}
}

func TestDomain_ServerDefaults(t *testing.T) {
	d := &Domain{Name: "example.org"}
	assert.Equal(t, "imap.example.org", d.IMAPServer())
	assert.Equal(t, "smtp.example.org", d.SMTPServer())

	d.IMAPHost = "mail.example.net"
	assert.Equal(t, "mail.example.net", d.IMAPServer())
}

func TestMailbox_PasswordNotSerialised(t *testing.T) {
	b, err := json.Marshal(Mailbox{Address: "a@b.c", Password: "{PLAIN}secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
}

func TestMailbox_ReadableQuotaField(t *testing.T) {
	b, err := json.Marshal(Mailbox{Address: "a@b.c", QuotaBytes: 2000000})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "2 MB", out["readable_quota"])
	assert.Equal(t, float64(2000000), out["quota_bytes"])
	assert.Equal(t, "a@b.c", out["address"])
}
