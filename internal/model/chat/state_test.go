package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-chat/internal/model/chat"
)

func TestBeginSubmitAppendsUserMessageAndClearsInput(t *testing.T) {
	state := chat.State{}.WithInput("  Hello ")

	next, sent, ok := state.BeginSubmit(1)
	require.True(t, ok)

	assert.Equal(t, chat.Message{ID: 1, Text: "  Hello ", Sender: chat.SenderUser}, sent)
	assert.Equal(t, "", next.PendingInput)
	assert.True(t, next.Busy)
	require.Len(t, next.Messages, 1)

	// the previous value is left untouched
	assert.Empty(t, state.Messages)
	assert.Equal(t, "  Hello ", state.PendingInput)
	assert.False(t, state.Busy)
}

func TestBeginSubmitRefusesBlankOrBusy(t *testing.T) {
	cases := []struct {
		name  string
		state chat.State
	}{
		{"empty input", chat.State{}},
		{"whitespace only", chat.State{}.WithInput(" \t\n")},
		{"busy", chat.State{}.WithInput("Hello").WithBusy(true)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, _, ok := tc.state.BeginSubmit(1)
			assert.False(t, ok)
			assert.Equal(t, tc.state, next)
		})
	}
}

func TestWithMessageDoesNotAliasPreviousSnapshot(t *testing.T) {
	base := chat.State{}.WithMessage(chat.UserMessage("one"))
	a := base.WithMessage(chat.BotMessage("two"))
	b := base.WithMessage(chat.BotMessage("three"))

	require.Len(t, a.Messages, 2)
	require.Len(t, b.Messages, 2)
	assert.Equal(t, "two", a.Messages[1].Text)
	assert.Equal(t, "three", b.Messages[1].Text)
	assert.Len(t, base.Messages, 1)
}
