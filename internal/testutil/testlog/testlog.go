// Package testlog routes component logs into the running test.
package testlog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nftmeta/internal/logging"
)

// Start configures test logging and returns a logger that writes through
// t.Log, so output only shows for failing or verbose tests.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logging.ConfigureTests()
	return zerolog.New(zerolog.NewConsoleWriter(zerolog.ConsoleTestWriter(t))).
		Level(zerolog.DebugLevel).
		With().Str("test", t.Name()).Logger()
}

// Capture is Start plus a buffer holding every event as a JSON line, for
// tests that assert on diagnostics.
func Capture(t *testing.T) (zerolog.Logger, *bytes.Buffer) {
	t.Helper()
	logging.ConfigureTests()
	buf := &bytes.Buffer{}
	w := zerolog.MultiLevelWriter(
		zerolog.NewConsoleWriter(zerolog.ConsoleTestWriter(t)),
		buf,
	)
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Str("test", t.Name()).Logger(), buf
}
