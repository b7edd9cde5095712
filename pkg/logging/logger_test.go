package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasforge/oasforge/pkg/logging"
)

func TestDefault(t *testing.T) {
	logger := logging.Default()
	require.NotNil(t, logger)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)
	logger.Info().Str("component", "merger").Msg("test message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test message", entry["message"])
	assert.Equal(t, "merger", entry["component"])
}

func TestSetDefault(t *testing.T) {
	original := *logging.Default()
	defer logging.SetDefault(original)

	var buf bytes.Buffer
	logging.SetDefault(logging.New(&buf))
	logging.Warn().Msg("replaced")

	assert.Contains(t, buf.String(), "replaced")
}

func TestNewLoggerFromConfig(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(nil)
		assert.NotEqual(t, zerolog.Disabled, logger.GetLevel())
	})

	t.Run("level parsing", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "error",
			Format: "json",
			Output: "discard",
		})
		assert.Equal(t, zerolog.ErrorLevel, logger.GetLevel())
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "loud",
			Format: "json",
			Output: "discard",
		})
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}
