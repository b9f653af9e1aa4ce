package chat_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	model "github.com/zhouzirui/z-chat/internal/model/chat"
	chat "github.com/zhouzirui/z-chat/internal/service/chat"
)

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(_ context.Context, text string) model.Message {
	return model.BotMessage("echo: " + text)
}

func newService(t *testing.T) *chat.Service {
	return chat.NewService(echoDispatcher{}, zaptest.NewLogger(t))
}

func TestServiceGetSession(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "realtime-assistant")
	require.NoError(t, err)

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "realtime-assistant", got.PersonaID)
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetSession(context.Background(), "missing")
	assert.True(t, errors.Is(err, chat.ErrSessionNotFound))
}

func TestServiceCreateSessionRequiresPersona(t *testing.T) {
	svc := newService(t)

	_, err := svc.CreateSession(context.Background(), "")
	assert.Equal(t, chat.ErrPersonaRequired, err)
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.CreateSession(ctx, "plain")
	require.NoError(t, err)
	b, err := svc.CreateSession(ctx, "plain")
	require.NoError(t, err)

	ctrlA, err := svc.Controller(ctx, a.ID)
	require.NoError(t, err)
	ctrlA.Store().SetInput("Hello")
	_, ok := ctrlA.Submit(ctx)
	require.True(t, ok)

	transcriptA := ctrlA.Store().Snapshot().Messages
	require.Len(t, transcriptA, 2)
	assert.Equal(t, "echo: Hello", transcriptA[1].Text)

	ctrlB, err := svc.Controller(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, ctrlB.Store().Snapshot().Messages)
	assert.Equal(t, 2, svc.Count())
}

func TestServiceDeleteSession(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "plain")
	require.NoError(t, err)
	ctrl, err := svc.Controller(ctx, session.ID)
	require.NoError(t, err)
	updates, _ := ctrl.Store().Subscribe()
	<-updates

	require.NoError(t, svc.DeleteSession(ctx, session.ID))
	assert.Equal(t, 0, svc.Count())

	_, open := <-updates
	assert.False(t, open)

	assert.Equal(t, chat.ErrSessionNotFound, svc.DeleteSession(ctx, session.ID))
}
