package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"boqdesk/internal/config"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("event_id", "evt-1").Info("import preview built")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "evt-1", entry["event_id"])
	require.Equal(t, "import preview built", entry["msg"])
}

func TestNew_Defaults(t *testing.T) {
	logger, err := NewWithOutput(config.LogConfig{}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
	require.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestNew_Invalid(t *testing.T) {
	_, err := NewWithOutput(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)

	_, err = NewWithOutput(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
	require.Error(t, err)
}
