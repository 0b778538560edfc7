package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Configure mutates process-wide state, so each test restores the defaults
func restoreDefaults() {
	Configure(Config{Level: InfoLevel, Pretty: true})
}

func TestConfigureFiltersBelowLevel(t *testing.T) {
	defer restoreDefaults()

	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})

	Info().Msg("suppressed entry")
	Warn().Msg("surfaced entry")

	out := buf.String()
	assert.NotContains(t, out, "suppressed entry")
	assert.Contains(t, out, "surfaced entry")
	assert.Contains(t, out, `"level":"warn"`)
}

func TestConfigureUnknownLevelDefaultsToInfo(t *testing.T) {
	defer restoreDefaults()

	var buf bytes.Buffer
	Configure(Config{Level: "verbose", Output: &buf})

	Debug().Msg("below threshold")
	Info().Str("schoolID", "1").Msg("at threshold")

	out := buf.String()
	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, `"schoolID":"1"`)
}

func TestConfigureEmitsJSONWithoutPretty(t *testing.T) {
	defer restoreDefaults()

	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf})

	Error().Str("code", "GRN").Msg("lookup failed")

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"code":"GRN"`)
	assert.Contains(t, out, `"time"`)
}
