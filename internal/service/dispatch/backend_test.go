package dispatch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-chat/internal/config"
	"github.com/zhouzirui/z-chat/internal/service/dispatch"
)

func TestNewBackendSelectsExactlyOne(t *testing.T) {
	local, err := dispatch.NewBackend(config.DispatchConfig{
		Backend: config.BackendLocal,
		ChatURL: "http://localhost:8080/chat",
	})
	require.NoError(t, err)
	assert.Equal(t, "local", local.Name())

	gemini, err := dispatch.NewBackend(config.DispatchConfig{
		Backend:      config.BackendGemini,
		GeminiAPIKey: "k",
		Timeout:      time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini", gemini.Name())
}

func TestNewBackendRejectsInvalidConfig(t *testing.T) {
	_, err := dispatch.NewBackend(config.DispatchConfig{Backend: config.BackendGemini})
	assert.Error(t, err)

	_, err = dispatch.NewBackend(config.DispatchConfig{Backend: "both"})
	assert.Error(t, err)
}
