package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/model/chat"
)

// FallbackText is shown whenever a backend cannot be reached.
const FallbackText = "I'm sorry, I couldn't connect to the backend. Please check if the server is running."

// Backend performs exactly one outbound call for a user message.
type Backend interface {
	Name() string
	Send(ctx context.Context, text string) (string, error)
}

// Dispatcher turns backend results into displayable bot messages.
type Dispatcher struct {
	backend Backend
	logger  *zap.Logger
}

// New wraps backend.
func New(backend Backend, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{backend: backend, logger: logger.Named("dispatch")}
}

// Dispatch sends text and always returns a bot message. Failures are logged
// and replaced by FallbackText.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) chat.Message {
	started := time.Now()

	reply, err := d.backend.Send(ctx, text)
	if err != nil {
		d.logger.Warn("error connecting to backend",
			zap.String("backend", d.backend.Name()),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return chat.BotMessage(FallbackText)
	}

	d.logger.Debug("backend replied",
		zap.String("backend", d.backend.Name()),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("length", len(reply)),
	)
	return chat.BotMessage(reply)
}
