package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zhouzirui/z-chat/internal/model/chat"
	chatService "github.com/zhouzirui/z-chat/internal/service/chat"
)

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(_ context.Context, text string) chat.Message {
	return chat.BotMessage("echo: " + text)
}

// readEvent returns the next named event, skipping comments.
func readEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func readState(t *testing.T, reader *bufio.Reader) chat.State {
	t.Helper()
	event, data := readEvent(t, reader)
	require.Equal(t, "state", event)

	var state chat.State
	require.NoError(t, json.Unmarshal([]byte(data), &state))
	return state
}

func setup(t *testing.T) (*chatService.Service, *httptest.Server) {
	t.Helper()
	svc := chatService.NewService(echoDispatcher{}, zaptest.NewLogger(t))

	r := chi.NewRouter()
	New(svc, zaptest.NewLogger(t)).WithKeepAlive(time.Hour).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return svc, srv
}

func TestEventsUnknownSession(t *testing.T) {
	_, srv := setup(t)

	resp, err := http.Get(srv.URL + "/session/missing/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventsPushesStateChanges(t *testing.T) {
	svc, srv := setup(t)
	session, err := svc.CreateSession(context.Background(), "plain")
	require.NoError(t, err)
	ctrl, err := svc.Controller(context.Background(), session.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/session/"+session.ID+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	initial := readState(t, reader)
	assert.Empty(t, initial.Messages)

	ctrl.Store().SetInput("Hello")
	assert.Equal(t, "Hello", readState(t, reader).PendingInput)

	_, ok := ctrl.Submit(context.Background())
	require.True(t, ok)

	// intermediate snapshots may be skipped; the final one always arrives
	var final chat.State
	for len(final.Messages) < 2 {
		final = readState(t, reader)
	}
	assert.Equal(t, "echo: Hello", final.Messages[1].Text)
	assert.False(t, final.Busy)
}

func TestEventsClosedWhenSessionDiscarded(t *testing.T) {
	svc, srv := setup(t)
	session, err := svc.CreateSession(context.Background(), "plain")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/session/"+session.ID+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readState(t, reader)

	require.NoError(t, svc.DeleteSession(context.Background(), session.ID))

	event, _ := readEvent(t, reader)
	assert.Equal(t, "closed", event)
}
