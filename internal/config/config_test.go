package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func clearChatEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT",
		"CHAT_BACKEND", "CHAT_BACKEND_URL", "CHAT_TIMEOUT", "CHAT_PERSONA",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearChatEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, zapcore.InfoLevel, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, BackendLocal, cfg.Dispatch.Backend)
	assert.Equal(t, "http://localhost:8080/chat", cfg.Dispatch.ChatURL)
	assert.Zero(t, cfg.Dispatch.Timeout)
	assert.False(t, cfg.AI.Enabled())
}

func TestLoadGeminiRequiresKey(t *testing.T) {
	clearChatEnv(t)
	t.Setenv("CHAT_BACKEND", "gemini")

	cfg, err := Load()
	require.NoError(t, err, "loading defers backend validation")
	require.Error(t, cfg.Dispatch.Validate())

	t.Setenv("GEMINI_API_KEY", "secret")
	cfg, err = Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Dispatch.Validate())
	assert.Equal(t, BackendGemini, cfg.Dispatch.Backend)
	assert.Equal(t, "secret", cfg.Dispatch.GeminiAPIKey)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearChatEnv(t)
	t.Setenv("CHAT_BACKEND", "carrier-pigeon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Dispatch.Validate())
}

func TestLoadTimeout(t *testing.T) {
	clearChatEnv(t)
	t.Setenv("CHAT_TIMEOUT", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Dispatch.Timeout)

	t.Setenv("CHAT_TIMEOUT", "-1")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("CHAT_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadServerAddr(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		want    string
		wantErr bool
	}{
		{"bare port", "9000", ":9000", false},
		{"host and port", "127.0.0.1:9000", "127.0.0.1:9000", false},
		{"contains space", "90 00", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PORT", tc.port)

			got, err := loadServerConfig()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Addr)
		})
	}
}

func TestLoadLogConfig(t *testing.T) {
	clearChatEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := loadLogConfig()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	t.Setenv("LOG_LEVEL", "loud")
	_, err = loadLogConfig()
	assert.Error(t, err)
}

func TestAIConfigEnabled(t *testing.T) {
	assert.False(t, AIConfig{}.Enabled())
	assert.False(t, AIConfig{APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{APIKey: "k", Model: "m"}.Enabled())
	assert.True(t, AIConfig{AccessKey: "a", SecretKey: "s", Model: "m"}.Enabled())
	assert.False(t, AIConfig{AccessKey: "a", Model: "m"}.Enabled())
}

func TestParseOptionalEnv(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.5")
	f, err := parseOptionalFloatEnv("TEST_FLOAT")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 0.5, *f)

	t.Setenv("TEST_INT", "")
	i, err := parseOptionalIntEnv("TEST_INT")
	require.NoError(t, err)
	assert.Nil(t, i)

	t.Setenv("TEST_INT", "abc")
	_, err = parseOptionalIntEnv("TEST_INT")
	assert.Error(t, err)
}

func TestNewFileLogger(t *testing.T) {
	cfg := LogConfig{Level: zapcore.InfoLevel, Format: "json"}

	nop, err := cfg.NewFileLogger("")
	require.NoError(t, err)
	assert.False(t, nop.Core().Enabled(zapcore.ErrorLevel))

	path := filepath.Join(t.TempDir(), "tui.log")
	logger, err := cfg.NewFileLogger(path)
	require.NoError(t, err)
	logger.Info("hello file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}
