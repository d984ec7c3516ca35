package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ZapLoggerConfig
		wantErr bool
		enabled zapcore.Level
	}{
		{"nil uses default", nil, false, zapcore.WarnLevel},
		{"debug console", &ZapLoggerConfig{Level: "debug", Encoding: "console"}, false, zapcore.DebugLevel},
		{"info json dev", &ZapLoggerConfig{Level: "INFO", Encoding: "json", IsDevelopment: true}, false, zapcore.InfoLevel},
		{"bad level", &ZapLoggerConfig{Level: "loud"}, true, 0},
		{"bad encoding", &ZapLoggerConfig{Level: "info", Encoding: "xml"}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewZapLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			if tt.enabled > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.enabled-1))
			}
		})
	}
}

func TestNewZapLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lector.log")
	l, err := NewZapLogger(&ZapLoggerConfig{
		Level:       "info",
		Encoding:    "json",
		OutputPaths: []string{path},
	})
	require.NoError(t, err)

	l.Info("catalog synced", zap.Int("count", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"catalog synced"`)
	assert.Contains(t, string(data), `"count":3`)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
