package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("info", "json", &buf))

	Debug().Msg("hidden")
	Warn().Str("metric", "pulls:acme/api").Err(errors.New("boom")).Msg("live fetch failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug is below the configured level")

	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, "pulls:acme/api", event["metric"])
	assert.Equal(t, "boom", event["error"])
	assert.Equal(t, "live fetch failed", event["message"])
	assert.Contains(t, event, "time")
}

func TestInitConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("debug", "console", &buf))

	Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("info", "json", &buf))

	l := With("ingest")
	l.Info().Msg("run started")
	assert.Contains(t, buf.String(), `"component":"ingest"`)
}

func TestInitErrors(t *testing.T) {
	assert.Error(t, Init("loud", "json", nil))
	assert.Error(t, Init("info", "xml", nil))
}
