package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	var buf bytes.Buffer

	_, err := SetupWriter(Config{Level: "WARN", Format: "json"}, &buf)
	require.NoError(t, err)

	log := WithComponent("bas")
	log.Info().Msg("dropped")
	log.Warn().Int("exceptions", 2).Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "bas", line["component"])
	assert.Equal(t, "kept", line["message"])
	assert.EqualValues(t, 2, line["exceptions"])
	assert.Contains(t, line, "time")
}

func TestSetupWriter_Console(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	var buf bytes.Buffer

	log, err := SetupWriter(Config{Format: "console"}, &buf)
	require.NoError(t, err)
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestSetupWriter_BadLevel(t *testing.T) {
	_, err := SetupWriter(Config{Level: "loud"}, &bytes.Buffer{})

	assert.Error(t, err)
}
