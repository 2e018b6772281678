// Package tui provides the Bubble Tea dashboard shown by `glint watch`.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/glint/internal/connection"
	"github.com/fakeyudi/glint/internal/presence"
	"github.com/fakeyudi/glint/internal/render"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
)

// ── Keys ────────────

type keyMap struct {
	Reconnect  key.Binding
	Disconnect key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reconnect, k.Disconnect, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Reconnect: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reconnect"),
	),
	Disconnect: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "disconnect"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ── Messages ────────────

// Request is a user action forwarded to the event loop that owns the
// connection manager.
type Request int

const (
	RequestReconnect Request = iota
	RequestDisconnect
)

// EventMsg carries a connection event into the dashboard.
type EventMsg connection.Event

// FileMsg reports that path changed and produced case c.
type FileMsg struct {
	Path string
	Case presence.Case
}

type tickMsg time.Time

// ── Model ────────────

// Model is the root Bubble Tea model for the dashboard.
type Model struct {
	dir      string
	requests chan<- Request
	help     help.Model
	now      func() time.Time

	state     connection.State
	activity  presence.Activity
	published bool
	lastEvent string
	lastAt    time.Time
	width     int
}

// New creates a dashboard watching dir. Key presses are sent on requests.
func New(dir string, requests chan<- Request) Model {
	return Model{
		dir:       dir,
		requests:  requests,
		help:      help.New(),
		now:       time.Now,
		lastEvent: "waiting for changes",
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Reconnect):
			m.request(RequestReconnect, "reconnect requested")
		case key.Matches(msg, keys.Disconnect):
			m.request(RequestDisconnect, "disconnect requested")
		}
		return m, nil

	case EventMsg:
		m.state = msg.State
		switch {
		case msg.Published:
			m.activity = msg.Activity
			m.published = true
			m.note("presence published")
		case msg.Err != nil && msg.State == connection.Connected:
			m.note("update rejected: " + msg.Err.Error())
		case msg.Err != nil:
			m.note("connection lost: " + msg.Err.Error())
		default:
			m.note(msg.State.String())
		}
		return m, nil

	case FileMsg:
		m.note(fmt.Sprintf("%s changed (%s)", msg.Path, msg.Case))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tick()
	}
	return m, nil
}

// request hands r to the event loop without blocking the UI.
func (m *Model) request(r Request, label string) {
	select {
	case m.requests <- r:
		m.note(label)
	default:
		m.note("busy, try again")
	}
}

func (m *Model) note(s string) {
	m.lastEvent = s
	m.lastAt = m.now()
}

func (m Model) View() string {
	title := titleStyle.Render("  glint  " + m.dir)
	if m.width > 0 {
		title = titleStyle.Width(m.width).Render("  glint  " + m.dir)
	}

	state := disconnectedStyle.Render("● " + m.state.String())
	if m.state == connection.Connected {
		state = connectedStyle.Render("● " + m.state.String())
	}

	card := dimStyle.Render("nothing published yet")
	if m.published {
		card = render.Card(m.activity, m.now())
	}

	last := labelStyle.Render("Last event: ") + m.lastEvent
	if !m.lastAt.IsZero() {
		last += " " + timeStyle.Render(m.lastAt.Format("15:04:05"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		labelStyle.Render("Discord: ")+state,
		"",
		card,
		"",
		last,
		"",
		m.help.View(keys),
	)
}
