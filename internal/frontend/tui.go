package frontend

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MicahPeacock/snipgossip/internal/ioqueue"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	accentColor  = lipgloss.Color("#10B981")
	mutedColor   = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	peerPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	messagePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(mutedColor).
				Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	senderStyle    = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	peerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	timestampStyle = lipgloss.NewStyle().Foreground(mutedColor).Faint(true)
	peerUpStyle    = lipgloss.NewStyle().Foreground(accentColor)
)

// chatLine is one rendered row of the message panel.
type chatLine struct {
	sender    string
	text      string
	timestamp uint64
}

type tickMsg time.Time
type incomingMsg ioqueue.Incoming

// TUI is a Bubble Tea frontend for the snippet stream: the left panel
// shows delivered snippets in arrival order, the right panel shows the
// current peer set, and the input line feeds typed text into the outgoing
// queue. It satisfies the same stdin/incoming contract as Stdio.
type TUI struct {
	self  string
	q     *ioqueue.Queue
	peers func() []string

	lines    []chatLine
	viewport viewport.Model
	input    textarea.Model
	ready    bool
	width    int
	height   int
}

// NewTUI returns a TUI frontend. self labels the local user's own
// messages; peers is polled once per second to refresh the peer panel.
func NewTUI(self string, q *ioqueue.Queue, peers func() []string) *TUI {
	ta := textarea.New()
	ta.Placeholder = "Type a snippet and press Enter..."
	ta.Focus()
	ta.Prompt = "> "
	ta.CharLimit = 500
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)

	return &TUI{self: self, q: q, peers: peers, viewport: vp, input: ta}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func (t *TUI) Run() error {
	p := tea.NewProgram(t, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (t *TUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, t.pollIncoming(), t.tick())
}

func (t *TUI) pollIncoming() tea.Cmd {
	return func() tea.Msg {
		for !t.q.HasIncoming() {
			time.Sleep(20 * time.Millisecond)
		}
		return incomingMsg(t.q.PopIncoming())
	}
}

func (t *TUI) tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var inputCmd, vpCmd tea.Cmd
	t.input, inputCmd = t.input.Update(msg)
	t.viewport, vpCmd = t.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return t, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(t.input.Value())
			if text != "" {
				t.q.PutOutgoing(text)
				t.lines = append(t.lines, chatLine{sender: t.self, text: text})
				t.updateViewport()
				t.input.Reset()
			}
			return t, nil
		}

	case tea.WindowSizeMsg:
		t.width, t.height = msg.Width, msg.Height
		t.ready = true
		t.viewport.Width = t.width - 35
		t.viewport.Height = t.height - 10
		t.input.SetWidth(t.width - 4)
		t.updateViewport()

	case incomingMsg:
		t.lines = append(t.lines, chatLine{sender: msg.Sender, text: msg.Text, timestamp: msg.Timestamp})
		t.updateViewport()
		t.viewport.GotoBottom()
		return t, t.pollIncoming()

	case tickMsg:
		return t, t.tick()
	}

	return t, tea.Batch(inputCmd, vpCmd)
}

func (t *TUI) updateViewport() {
	var b strings.Builder
	for _, line := range t.lines {
		b.WriteString(t.renderLine(line))
		b.WriteString("\n")
	}
	t.viewport.SetContent(b.String())
}

func (t *TUI) renderLine(line chatLine) string {
	ts := timestampStyle.Render(fmt.Sprintf("[%d]", line.timestamp))
	style := peerStyle
	label := line.sender
	if line.sender == t.self {
		style = senderStyle
		label = "you"
	}
	return fmt.Sprintf("%s %s %s", ts, style.Render(label+">"), line.text)
}

func (t *TUI) View() string {
	if !t.ready {
		return "\n  starting snipgossip...\n"
	}

	header := headerStyle.Render("snipgossip")
	messagePanel := messagePanelStyle.Width(t.width - 35).Height(t.viewport.Height + 2).Render(t.viewport.View())
	peerPanel := t.renderPeerPanel()
	main := lipgloss.JoinHorizontal(lipgloss.Top, messagePanel, peerPanel)
	input := inputStyle.Width(t.width - 4).Render(t.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, main, input)
}

func (t *TUI) renderPeerPanel() string {
	var b strings.Builder
	b.WriteString("peers\n")
	for _, p := range t.peers() {
		b.WriteString(peerUpStyle.Render("* ") + p + "\n")
	}
	return peerPanelStyle.Width(30).Height(t.viewport.Height + 2).Render(b.String())
}
