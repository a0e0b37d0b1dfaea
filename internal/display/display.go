// Package display is the recipe viewer's terminal front end, built on
// Bubble Tea.
//
// The program owns only the bottom of the terminal: a status bar and the
// input line. Everything else is printed into the scrollback through
// Program.Println, so output from other goroutines never tears the prompt.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	appTitle   = "Recipe Book"
	promptText = "recipes> " // plain, so the input width math stays correct
	inputLimit = 200
	lineBuffer = 16
)

// Palette.
const (
	colSlate  = lipgloss.Color("#94a3b8")
	colSky    = lipgloss.Color("#bae6fd")
	colMint   = lipgloss.Color("#bbf7d0")
	colZinc   = lipgloss.Color("#d4d4d8")
	colMuted  = lipgloss.Color("#a1a1aa")
	colDim    = lipgloss.Color("#71717a")
	colCoral  = lipgloss.Color("#fca5a5")
	colAmber  = lipgloss.Color("#fde68a")
	colBarBg  = lipgloss.Color("#27272a")
	colChipBg = lipgloss.Color("#3f3f46")
	colSep    = lipgloss.Color("#52525b")
	colInk    = lipgloss.Color("#18181b")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	// BannerStyle colours the startup banner and greeting.
	BannerStyle = fg(colSlate)

	barStyle    = lipgloss.NewStyle().Background(colBarBg).Foreground(colMuted)
	barSepStyle = fg(colSep)
	promptStyle = fg(colSlate)
	echoStyle   = fg(colMuted)

	chatStyle      = fg(colSky)
	headingStyle   = fg(colMint)
	primaryStyle   = fg(colZinc)
	secondaryStyle = fg(colDim)
	urgentStyle    = fg(colCoral)
	quantityStyle  = fg(colAmber).Bold(true)

	activeTagStyle   = lipgloss.NewStyle().Foreground(colInk).Background(colAmber).Padding(0, 1)
	inactiveTagStyle = lipgloss.NewStyle().Foreground(colMuted).Background(colChipBg).Padding(0, 1)
)

// UI is the Bubble Tea front end. Create it with [NewUI], start it with
// [UI.Run] (blocking) and, once [UI.WaitReady] returns, print and read
// input from any goroutine.
type UI struct {
	program *tea.Program
	lines   chan string
	ready   chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI() *UI {
	return &UI{
		lines:   make(chan string, lineBuffer),
		ready:   make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// live reports whether output should go through the program.
func (u *UI) live() bool { return u.program != nil && !u.closed.Load() }

// Println prints above the prompt, or to stdout before Run / after quit.
func (u *UI) Println(a ...interface{}) {
	if u.live() {
		u.program.Println(a...)
		return
	}
	fmt.Println(a...)
}

// Printf is the formatted form of Println.
func (u *UI) Printf(format string, a ...interface{}) {
	u.Println(fmt.Sprintf(format, a...))
}

// InputChan delivers each submitted, non-blank input line.
func (u *UI) InputChan() <-chan string { return u.lines }

// SetStatus replaces the status bar segments. Empty hides the bar.
func (u *UI) SetStatus(segments ...string) {
	if u.live() {
		u.program.Send(statusMsg(segments))
	}
}

func (u *UI) styled(s lipgloss.Style, text string) { u.Println(s.Render("  " + text)) }

// PrintChat prints a conversational line.
func (u *UI) PrintChat(text string) { u.styled(chatStyle, text) }

// PrintHeading prints a section header.
func (u *UI) PrintHeading(text string) { u.styled(headingStyle, text) }

// PrintInstruction prints body text.
func (u *UI) PrintInstruction(text string) { u.styled(primaryStyle, text) }

// PrintHint prints dimmed secondary text.
func (u *UI) PrintHint(text string) { u.styled(secondaryStyle, text) }

// PrintUrgent prints an error.
func (u *UI) PrintUrgent(text string) { u.styled(urgentStyle, text) }

// echo copies a submitted command into the scrollback.
func (u *UI) echo(text string) {
	u.Println(promptStyle.Render(strings.TrimSuffix(promptText, " ")) + " " + echoStyle.Render(text))
}

// WaitReady blocks until the event loop is running.
func (u *UI) WaitReady() { <-u.ready }

// Quit asks the event loop to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed once Run has returned.
func (u *UI) QuitChan() <-chan struct{} { return u.stopped }

// Run starts the event loop and blocks until the user quits.
func (u *UI) Run() error {
	in := textinput.New()
	in.Prompt = promptText
	in.PromptStyle = promptStyle
	in.TextStyle = echoStyle
	in.Cursor.Style = fg(colSlate)
	in.CharLimit = inputLimit
	in.Width = 60 // replaced on the first WindowSizeMsg
	in.Focus()

	u.program = tea.NewProgram(model{
		input:  in,
		submit: u.lines,
		ready:  u.ready,
		echo:   u.echo,
	})
	_, err := u.program.Run()
	u.closed.Store(true)
	close(u.stopped)
	return err
}

// statusMsg carries new status bar segments into the model.
type statusMsg []string

type model struct {
	input  textinput.Model
	submit chan<- string
	ready  chan struct{}
	echo   func(string)
	status []string
	width  int
}

func (m model) Init() tea.Cmd {
	ready := m.ready
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle(appTitle),
		func() tea.Msg {
			close(ready)
			return nil
		},
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.submitLine()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case statusMsg:
		m.status = msg
		title := appTitle
		if len(msg) > 0 {
			title += " - " + strings.Join(msg, " | ")
		}
		return m, tea.SetWindowTitle(title)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submitLine() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()
	if strings.TrimSpace(line) == "" {
		return m, nil
	}
	m.submit <- line
	// Println from inside Update would block on the program's own queue.
	echo := m.echo
	return m, func() tea.Msg {
		echo(line)
		return nil
	}
}

func (m model) View() string {
	var b strings.Builder
	if len(m.status) > 0 {
		b.WriteString(m.bar())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) bar() string {
	w := m.width
	if w <= 0 {
		w = 80
	}
	return barStyle.Width(w).Render(" " + strings.Join(m.status, barSepStyle.Render("  │  ")) + " ")
}
