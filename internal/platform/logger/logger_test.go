package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.Debug("hidden")
	l.Info("credential issued", "credential_id", "cred_1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "credential issued", line["msg"])
	assert.Equal(t, "cred_1", line["credential_id"])
	assert.Equal(t, "identrust", line["service"])
}
