package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"k": 2})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter(&buf, "controller", "info")
	l.Infow("dispatched", map[string]any{"request_id": "1001"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "controller", entry["component"])
	assert.Equal(t, "1001", entry["request_id"])
	assert.Equal(t, "dispatched", entry["message"])
}

func TestZerologLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter(&buf, "c", "warn")
	l.Infof("hidden")
	l.Debugw("hidden", nil)
	assert.Zero(t, buf.Len())
	l.Warnf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigureDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")
	Configure("error", false)
	t.Cleanup(func() { Configure("info", false) })
	l := NewZerologLogger("c").(*ZerologLogger)
	assert.Equal(t, "error", l.log.GetLevel().String())

	t.Setenv("LOG_LEVEL", "debug")
	l = NewZerologLogger("c").(*ZerologLogger)
	assert.Equal(t, "debug", l.log.GetLevel().String())
}
