// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent panel (the attached "display
// peripheral" surface), a status bar, and an input prompt at the
// bottom of the terminal. All application output is printed above the
// rendered area via Program.Println / Printf, ensuring concurrent
// writes never garble the display.
package display

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/waker/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	panelBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#d4d4d8"))

	panelRingBg = lipgloss.NewStyle().
			Background(lipgloss.Color("#7f1d1d")).
			Foreground(lipgloss.Color("#fecaca")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Chat — soft sky blue for assistant replies.
	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Primary text — light zinc.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Secondary text — dimmed zinc for hints and metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent — soft coral for alarms and errors.
	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ErrDisconnected is returned when a message is pushed while the UI is
// not running.
var ErrDisconnected = errors.New("display not connected")

// Compile-time interface check.
var _ domain.DisplayPeripheral = (*UI)(nil)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea and doubles as the
// engine's display peripheral: DisplayMessage renders into the panel
// area above the prompt.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely
// call [UI.Println], [UI.Printf], [UI.DisplayMessage], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	stateFn func() domain.RingState
	done    atomic.Bool
}

// NewUI creates the display. stateFn supplies the ring state for the
// panel styling and window title. Call Run() to start.
func NewUI(stateFn func() domain.RingState) *UI {
	return &UI{
		stateFn: stateFn,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// DisplayMessage pushes text onto the panel. Implements
// domain.DisplayPeripheral; an empty string clears the panel.
func (u *UI) DisplayMessage(text string) error {
	if !u.IsConnected() {
		return ErrDisconnected
	}
	u.program.Send(panelMsg(text))
	return nil
}

// IsConnected reports whether the terminal display is up.
func (u *UI) IsConnected() bool {
	return u.program != nil && !u.done.Load()
}

// Println prints a line above the prompt. Thread-safe. If the program
// hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.IsConnected() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.IsConnected() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintChat prints a conversational assistant line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintInfo prints a plain information line.
func (u *UI) PrintInfo(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("waker") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt so the textinput width math stays correct;
	// styled prompts add invisible ANSI bytes that break scrolling.
	ti.Prompt = "waker> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		stateFn: u.stateFn,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	stateFn func() domain.RingState
	echoFn  func(string) // prints user input into scrollback
	panel   string       // the peripheral surface content
	ringing bool
	width   int
}

// Messages.
type tickMsg time.Time
type panelMsg string

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo outside Update so it won't deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		const promptLen = 7 // "waker> "
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case panelMsg:
		m.panel = string(msg)
		return m, nil

	case tickMsg:
		if m.stateFn != nil {
			m.ringing = m.stateFn().Ringing
		}
		cmds := []tea.Cmd{tickCmd()}
		if m.ringing {
			cmds = append(cmds, tea.SetWindowTitle("Waker — ALARM"))
		} else {
			cmds = append(cmds, tea.SetWindowTitle("Waker"))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	if m.panel != "" {
		b.WriteString(m.renderPanel())
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// renderPanel draws the peripheral surface as a full-width bar, one
// bar line per panel line.
func (m model) renderPanel() string {
	style := panelBg
	if m.ringing {
		style = panelRingBg
	}

	w := m.width
	if w <= 0 {
		w = 80
	}

	lines := strings.Split(m.panel, "\n")
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = style.Width(w).Render(" " + l)
	}
	return strings.Join(rendered, "\n")
}
