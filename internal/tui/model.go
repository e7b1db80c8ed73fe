package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfchat/internal/domain"
	"pdfchat/internal/session"
	"pdfchat/internal/summarizer"
)

// ChatPort is the TUI-facing subset of the chain manager.
type ChatPort interface {
	RetrieveDocuments(ctx context.Context, question string) (domain.ParsedContext, error)
	Invoke(ctx context.Context, question string) (string, error)
}

// answerMsg carries the outcome of one question back to Update.
type answerMsg struct {
	question string
	context  *domain.ParsedContext
	answer   string
	err      error
	elapsed  time.Duration
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	chain   ChatPort
	session *session.Session
	summary *summarizer.FrequencySummarizer
	input   textinput.Model
	chat    viewport.Model
	sidebar viewport.Model
	spinner spinner.Model
	title   string
	status  string
	busy    bool
	ready   bool
	lastAsk string
	timeout time.Duration
}

// New creates a chat model. timeout bounds each question; zero means none.
func New(chain ChatPort, title string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about the document and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		chain:   chain,
		session: session.New(),
		summary: summarizer.NewFrequencySummarizer(),
		input:   ti,
		chat:    viewport.New(0, 0),
		sidebar: viewport.New(0, 0),
		spinner: sp,
		title:   title,
		status:  "Ready. Ask a question, ctrl+n starts a new chat.",
		timeout: timeout,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and question results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input line
		vh := max(3, msg.Height-reserved-fh)
		sideW := max(24, msg.Width/3)
		chatW := max(20, msg.Width-sideW-4)
		m.chat.Width, m.chat.Height = chatW, vh
		m.sidebar.Width, m.sidebar.Height = sideW-4, vh
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case answerMsg:
		m.busy = false
		if msg.context != nil {
			m.session.SetContext(*msg.context)
		}
		if msg.err != nil {
			m.session.Append(domain.RoleAssistant, "Error: "+msg.err.Error())
			m.status = "Question failed."
		} else {
			m.session.Append(domain.RoleAssistant, msg.answer)
			m.status = fmt.Sprintf("Answered %q in %s.", msg.question, msg.elapsed.Round(10*time.Millisecond))
		}
		m.refresh()
		m.chat.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+n":
			if m.busy {
				return m, nil
			}
			m.session.Reset()
			m.lastAsk = ""
			m.status = "New chat started."
			m.refresh()
			return m, nil
		case "enter":
			if m.busy {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.Reset()
			m.session.Append(domain.RoleUser, q)
			m.lastAsk = q
			m.busy = true
			m.status = "Thinking..."
			m.refresh()
			m.chat.GotoBottom()
			return m, tea.Batch(m.spinner.Tick, m.ask(q))
		case "pgup":
			m.chat.HalfViewUp()
			return m, nil
		case "pgdown":
			m.chat.HalfViewDown()
			return m, nil
		case "up":
			m.sidebar.LineUp(1)
			return m, nil
		case "down":
			m.sidebar.LineDown(1)
			return m, nil
		}
	}
	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask retrieves the context for display first and then runs the full chain.
func (m Model) ask(q string) tea.Cmd {
	chain, timeout := m.chain, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		pc, err := chain.RetrieveDocuments(ctx, q)
		if err != nil {
			return answerMsg{question: q, err: err, elapsed: time.Since(start)}
		}
		answer, err := chain.Invoke(ctx, q)
		return answerMsg{question: q, context: &pc, answer: answer, err: err, elapsed: time.Since(start)}
	}
}

// View renders the chat pane, the context sidebar, the input and the status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render(m.title)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		chatBoxStyle.Render(m.chat.View()),
		sidebarBoxStyle.Render(m.sidebar.View()),
	)
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + body + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.chat.SetContent(renderMessages(m.session.Messages, m.chat.Width))
	m.sidebar.SetContent(renderSidebar(m.session.LastContext, m.lastAsk, m.summary, m.sidebar.Width))
}

func renderMessages(msgs []domain.ChatMessage, width int) string {
	if len(msgs) == 0 {
		return helpStyle.Render("No messages yet.")
	}
	wrap := lipgloss.NewStyle().Width(max(10, width))
	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch {
		case msg.Role == domain.RoleUser:
			sb.WriteString(userStyle.Render("You"))
		case strings.HasPrefix(msg.Content, "Error: "):
			sb.WriteString(errorStyle.Render("Assistant"))
		default:
			sb.WriteString(assistantStyle.Render("Assistant"))
		}
		sb.WriteString("\n")
		sb.WriteString(wrap.Render(msg.Content))
	}
	return sb.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	chatBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sidebarBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)
