package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddWriter ensures that duplicate writers are ignored.
func TestAddWriter(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)

	var structured, unstructured bytes.Buffer
	logger.AddWriter(&structured, STRUCTURED)
	logger.AddWriter(&unstructured, UNSTRUCTURED)
	assert.Len(t, logger.writers, 2)

	logger.AddWriter(&structured, STRUCTURED)
	assert.Len(t, logger.writers, 2)
}

// TestSubLoggerStructuredOutput verifies that sub-logger context, errors and structured info end up in JSON output.
func TestSubLoggerStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false, &buf)
	sub := logger.NewSubLogger("service", "solver")

	sub.Info("solver returned ", 3, " models", errors.New("boom"), StructuredLogInfo{"queries": 3})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "solver", line["service"])
	assert.Equal(t, "solver returned 3 models", line["message"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, map[string]any{"queries": float64(3)}, line["info"])
}

// TestSetLevel verifies that events below the level are dropped.
func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false, &buf)

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	logger.SetLevel(zerolog.DebugLevel)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Equal(t, zerolog.DebugLevel, logger.Level())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
