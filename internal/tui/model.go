// Package tui renders one conversation in the terminal.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/z-chat/internal/model/chat"
	"github.com/zhouzirui/z-chat/internal/model/persona"
	"github.com/zhouzirui/z-chat/internal/service/conversation"
)

// lines used by header, status, input and help
const chromeHeight = 6

// resolvedMsg is delivered when a dispatch has appended its reply.
type resolvedMsg struct {
	reply chat.Message
}

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctx     context.Context
	ctrl    *conversation.Controller
	persona persona.Persona

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	state  chat.State
	width  int
	height int
}

// New builds the chat screen over ctrl.
func New(ctx context.Context, ctrl *conversation.Controller, p persona.Persona) Model {
	ti := textinput.New()
	ti.Placeholder = p.Placeholder
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		persona:  p,
		input:    ti,
		viewport: viewport.New(80, 20-chromeHeight),
		spinner:  sp,
		state:    ctrl.Store().Snapshot(),
		width:    80,
		height:   20,
	}
	m.refresh()
	return m
}

// State returns the last rendered snapshot.
func (m Model) State() chat.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-4)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.state = m.ctrl.Store().SetInput(m.input.Value())
		return m, cmd

	case resolvedMsg:
		m.state = m.ctrl.Store().Snapshot()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.state.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// submit commits the pending input. While busy or blank it does nothing.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.ctrl.Store().SetInput(m.input.Value())

	sent, ok := m.ctrl.Begin()
	if !ok {
		m.state = m.ctrl.Store().Snapshot()
		return m, nil
	}

	m.input.Reset()
	m.state = m.ctrl.Store().Snapshot()
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.resolve(sent))
}

func (m Model) resolve(sent chat.Message) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return resolvedMsg{reply: ctrl.Resolve(ctx, sent)}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderMessages(m.state.Messages, m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderMessages(messages []chat.Message, width int) string {
	if len(messages) == 0 {
		return ""
	}

	bubbleWidth := max(10, width*3/4)
	rows := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Sender == chat.SenderUser {
			bubble := userBubble.MaxWidth(bubbleWidth).Render(msg.Text)
			rows = append(rows, lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
			continue
		}
		rows = append(rows, botBubble.MaxWidth(bubbleWidth).Render(msg.Text))
	}
	return strings.Join(rows, "\n")
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.persona.Name))
	b.WriteString("\n")
	b.WriteString(greetingStyle.Render(m.persona.Greeting))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.state.Busy {
		b.WriteString(m.spinner.View() + " thinking...")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send  pgup/pgdown: scroll  esc: quit"))

	return b.String()
}
