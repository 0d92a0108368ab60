package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "WARN")
	log.Info().Msg("dropped")
	log.Warn().Str("court", "Court 1").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "Court 1", line["court"])
	assert.Equal(t, "courtbook", line["service"])
}

func TestNewWithWriter_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "chatty")
	log.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())
	log.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}
