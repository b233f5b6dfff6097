package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "console", cfg: &Config{Level: "info", Format: "console"}},
		{name: "json stdout", cfg: &Config{Level: "warn", Format: "json", Output: "stdout", TimeFormat: "2006-01-02"}},
		{name: "stderr debug", cfg: &Config{Level: "debug", Format: "json", Output: "stderr"}},
		{name: "file", cfg: &Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "app.log")}},
		{name: "unwritable file", cfg: &Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "missing", "app.log")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path}, Service("landerp", "1.2.0", "staging"))
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("sale created", zap.String("sale_number", "SL-202601-00001"))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "sale created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "landerp", entry["service"])
	assert.Equal(t, "1.2.0", entry["version"])
	assert.Equal(t, "staging", entry["env"])
	assert.Equal(t, "SL-202601-00001", entry["sale_number"])
}

func TestNew_TeesIntoExtraCores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	extra, extraLogs := observer.New(zapcore.WarnLevel)

	l, err := New(&Config{Level: "debug", Format: "json", Output: path}, Tee(extra), Service("landerp", "dev", "test"))
	require.NoError(t, err)
	l.Info("only primary")
	l.Warn("receipt rejected", zap.String("receipt_number", "RC-202601-00004"))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, bytes.Split(bytes.TrimSpace(raw), []byte("\n")), 2)

	require.Equal(t, 1, extraLogs.Len())
	entry := extraLogs.All()[0]
	assert.Equal(t, "receipt rejected", entry.Message)
	assert.Equal(t, "landerp", entry.ContextMap()["service"])
	assert.Equal(t, "RC-202601-00004", entry.ContextMap()["receipt_number"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
