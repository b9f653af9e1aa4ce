package conversation

import (
	"context"

	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/model/chat"
)

// Dispatcher resolves one user message into a displayable bot message.
// Implementations never fail: errors become a fallback reply.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string) chat.Message
}

// Controller drives the submit lifecycle of one Store:
// idle -> sending -> (success | failure) -> idle.
type Controller struct {
	store      *Store
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewController binds a store to a dispatcher.
func NewController(store *Store, dispatcher Dispatcher, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{store: store, dispatcher: dispatcher, logger: logger}
}

// Store exposes the underlying conversation store.
func (c *Controller) Store() *Store {
	return c.store
}

// Begin applies the optimistic part of a submission. See Store.Begin.
func (c *Controller) Begin() (chat.Message, bool) {
	return c.store.Begin()
}

// Resolve dispatches a message returned by Begin and appends the reply.
// The dispatch is detached from ctx cancellation; values are kept.
func (c *Controller) Resolve(ctx context.Context, sent chat.Message) chat.Message {
	reply := c.dispatcher.Dispatch(context.WithoutCancel(ctx), sent.Text)
	reply.Sender = chat.SenderBot

	reply = c.store.Complete(reply)
	c.logger.Debug("dispatch resolved",
		zap.Int("userMessageId", sent.ID),
		zap.Int("botMessageId", reply.ID),
	)
	return reply
}

// Submit runs a full cycle and blocks until the reply is appended.
// It reports false without touching the store when the submission is refused.
func (c *Controller) Submit(ctx context.Context) (chat.Message, bool) {
	sent, ok := c.Begin()
	if !ok {
		return chat.Message{}, false
	}
	return c.Resolve(ctx, sent), true
}
