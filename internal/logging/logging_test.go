package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw    string
		want   zerolog.Level
		wantOK bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.raw)
		assert.Equal(t, tt.want, got, "level for %q", tt.raw)
		assert.Equal(t, tt.wantOK, ok, "ok for %q", tt.raw)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "true")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)

	assert.Equal(t, zerolog.ErrorLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.True(t, cfg.NoColor)
}

func TestDefaultConfigProfiles(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, defaultConfig(ProfileTest).Level)
	assert.True(t, defaultConfig(ProfileRuntime).Timestamp)
}
