// Package tui renders an interactive chat session on top of the agent using
// Bubble Tea: a scrolling transcript viewport, a prompt textarea, and a
// spinner while a prompt is running.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	glam "github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/glasshouse/diffagent/internal/core/agent"
)

type eventMsg struct{ evt agent.Event }

type eventsClosedMsg struct{}

type answerMsg struct {
	answer string
	err    error
}

type transcriptKind int

const (
	itemPlain transcriptKind = iota
	itemUser
	itemAssistantMD
)

type transcriptItem struct {
	kind transcriptKind
	text string // raw content; assistant content is markdown
}

type model struct {
	ctx       context.Context
	assistant *agent.Agent
	events    <-chan agent.Event
	cancel    context.CancelFunc

	vp     viewport.Model
	ta     textarea.Model
	spin   spinner.Model
	width  int
	height int
	ready  bool
	busy   bool

	glam  *glam.TermRenderer
	items []transcriptItem

	border     lipgloss.Style
	userStyle  lipgloss.Style
	statusTint lipgloss.Style
	errorTint  lipgloss.Style
}

func newModel(ctx context.Context, assistant *agent.Agent, cancel context.CancelFunc) *model {
	ta := textarea.New()
	ta.Placeholder = "Type a prompt… (Enter to send)"
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New()
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	m := &model{
		ctx:       ctx,
		assistant: assistant,
		events:    assistant.Events(),
		cancel:    cancel,
		vp:        viewport.Model{},
		ta:        ta,
		spin:      sp,
		border:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
		userStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("129")).
			Foreground(lipgloss.Color("252")).
			PaddingLeft(1).
			PaddingRight(1),
		statusTint: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		errorTint:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
	_ = m.rebuildRenderer(80)
	return m
}

func waitForEvent(ch <-chan agent.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{evt: evt}
	}
}

func (m *model) ask(prompt string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.assistant.Ask(m.ctx, prompt)
		return answerMsg{answer: answer, err: err}
	}
}

// rebuildRenderer recreates the Glamour renderer with the given wrap width.
func (m *model) rebuildRenderer(wrap int) error {
	if wrap < 10 {
		wrap = 10
	}
	r, err := glam.NewTermRenderer(
		glam.WithStylePath("dark"), // fixed style to avoid OSC queries
		glam.WithWordWrap(wrap),
	)
	if err != nil {
		return err
	}
	m.glam = r
	return nil
}

func (m *model) renderTranscript() string {
	var out strings.Builder
	userWidth := m.vp.Width - 4
	if userWidth < 1 {
		userWidth = 1
	}
	for _, it := range m.items {
		switch it.kind {
		case itemUser:
			block := m.userStyle.Width(userWidth).Render(it.text)
			out.WriteString(block)
			if !strings.HasSuffix(block, "\n") {
				out.WriteString("\n")
			}
		case itemAssistantMD:
			if m.glam == nil {
				out.WriteString(it.text)
			} else if rendered, err := m.glam.Render(it.text); err == nil {
				out.WriteString(rendered)
			} else {
				out.WriteString(it.text)
			}
			if !strings.HasSuffix(out.String(), "\n") {
				out.WriteString("\n")
			}
		default:
			out.WriteString(it.text)
		}
	}
	return out.String()
}

func (m *model) refresh() {
	m.vp.SetContent(m.renderTranscript())
	m.vp.GotoBottom()
}

func (m *model) recalcLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	inner := m.width - 2
	if inner < 1 {
		inner = 1
	}
	m.ta.SetWidth(inner)
	vpH := m.height - 3
	if vpH < 3 {
		vpH = 3
	}
	m.vp.Width = m.width
	m.vp.Height = vpH
	_ = m.rebuildRenderer(m.vp.Width - 2)
}

func (m *model) appendLine(s string) {
	m.items = append(m.items, transcriptItem{kind: itemPlain, text: s})
	m.refresh()
}

func (m *model) appendUserBlock(text string) {
	m.items = append(m.items, transcriptItem{kind: itemUser, text: text})
	m.refresh()
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), textarea.Blink, m.spin.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	cmds = append(cmds, cmd)
	m.spin, cmd = m.spin.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			prompt := strings.TrimSpace(m.ta.Value())
			if prompt != "" && !m.busy {
				m.busy = true
				m.appendUserBlock(prompt)
				m.ta.Reset()
				cmds = append(cmds, m.ask(prompt))
			}
			return m, tea.Batch(cmds...)
		}
		return m, tea.Batch(cmds...)

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.appendLine(m.errorTint.Render("[error] ") + msg.err.Error() + "\n")
		} else if strings.TrimSpace(msg.answer) != "" {
			m.items = append(m.items, transcriptItem{kind: itemAssistantMD, text: msg.answer})
			m.refresh()
		}
		return m, tea.Batch(cmds...)

	case eventMsg:
		evt := msg.evt
		switch evt.Type {
		case agent.EventTypeAssistantMessage:
			// The final answer arrives through answerMsg; skip the duplicate.
		case agent.EventTypeToolCall:
			m.appendLine(m.statusTint.Render("[tool] ") + evt.Message + "\n")
		case agent.EventTypeToolResult:
			m.appendLine(m.statusTint.Render("[result] ") + evt.Message + "\n")
		case agent.EventTypeError:
			m.appendLine(m.errorTint.Render("[error] ") + evt.Message + "\n")
		default:
			m.appendLine(m.statusTint.Render("[status] ") + evt.Message + "\n")
		}
		return m, tea.Batch(append(cmds, waitForEvent(m.events))...)

	case eventsClosedMsg:
		m.appendLine(m.statusTint.Render("[closed] agent event stream ended\n"))
		return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg { return tea.Quit() })
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return "Initializing…"
	}
	top := m.border.Render(m.vp.View())
	inputBlock := m.ta.View()
	if m.busy {
		inputBlock = m.spin.View() + " working…\n" + inputBlock
	}
	bottom := m.border.Render(inputBlock)
	return top + "\n" + bottom
}

// Run starts the terminal UI over an already-configured agent and blocks
// until the user quits.
func Run(ctx context.Context, assistant *agent.Agent) error {
	// Prevent OSC background color queries from contaminating stdin by
	// explicitly setting color profile and background for lipgloss/termenv.
	lipgloss.SetColorProfile(termenv.TrueColor)
	lipgloss.SetHasDarkBackground(true)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(runCtx, assistant, cancel), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
