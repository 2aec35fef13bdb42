package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailpanel/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		logger := NewLogger(&config.Config{LogLevel: tt.level, ServiceName: "mailpanel-api"})
		assert.Equal(t, tt.want, logger.GetLevel(), tt.level)
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Config{LogFormat: "json", ServiceName: "mailpanel-api"})
	logger.Info().Str("domain", "example.com").Msg("created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "mailpanel-api", line["service"])
	assert.Equal(t, "example.com", line["domain"])

	buf.Reset()
	logger = newLogger(&buf, &config.Config{LogFormat: "console"})
	logger.Info().Str("domain", "example.com").Msg("created")
	assert.Contains(t, buf.String(), "created")
	assert.Contains(t, buf.String(), "domain=example.com")
	assert.False(t, json.Valid(buf.Bytes()))
}
