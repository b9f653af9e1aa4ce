package dispatch

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/zhouzirui/z-chat/internal/config"
)

// NewBackend builds the single backend selected by cfg.
func NewBackend(cfg config.DispatchConfig) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// zero Timeout leaves the client unbounded
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Backend {
	case config.BackendLocal:
		return NewLocal(cfg.ChatURL, client), nil
	case config.BackendGemini:
		return NewGemini(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, client), nil
	default:
		return nil, errors.Errorf("unsupported backend %q", cfg.Backend)
	}
}
