package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/routerchat/internal/chat"
	"github.com/diogo/routerchat/internal/models"
	"github.com/diogo/routerchat/internal/render"
)

// stage selects which screen the model shows
type stage int

const (
	stageKey stage = iota
	stageChat
)

// KeyCommand switches back to the API key prompt
const KeyCommand = "/key"

// Animation tick message
type animationTickMsg time.Time

// historyMsg carries the history pushed by the session after a round trip
type historyMsg []models.Message

// noticeMsg is a transient status line message
type noticeMsg string

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// Model represents the TUI state
type Model struct {
	session    *chat.Session
	modelName  string
	renderOpts render.Options

	// UI components
	keyInput textinput.Model
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	stage          stage
	history        []models.Message
	pending        string // submitted text awaiting its reply
	loading        bool
	ready          bool
	notice         string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model bound to session. The key prompt is
// shown first when the session has no credential.
func NewChatModel(session *chat.Session, modelName string, renderOpts render.Options) Model {
	ki := textinput.New()
	ki.Placeholder = "sk-or-..."
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.Prompt = "🔑 "
	ki.PromptStyle = inputLabelStyle
	ki.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ki.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		session:    session,
		modelName:  modelName,
		renderOpts: renderOpts,
		keyInput:   ki,
		textarea:   ta,
		spinner:    s,
		history:    session.History(),
	}

	if session.HasCredential() {
		m.enterChat()
	} else {
		m.enterKey()
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		textinput.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

func (m *Model) enterKey() {
	m.stage = stageKey
	m.keyInput.Reset()
	m.keyInput.Focus()
	m.textarea.Blur()
}

func (m *Model) enterChat() {
	m.stage = stageChat
	m.keyInput.Blur()
	m.textarea.Focus()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.keyInput.Width = contentWidth - 12
		m.updateViewport()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.stage == stageKey {
			return m.updateKey(msg)
		}

		switch msg.String() {
		case "esc":
			if !m.loading {
				return m, tea.Quit
			}

		case "ctrl+y":
			if !m.loading {
				return m, m.copyLastReply()
			}

		case "enter":
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			switch input {
			case "exit", "quit", "/exit", "/quit":
				return m, tea.Quit
			case KeyCommand:
				m.textarea.Reset()
				m.notice = ""
				m.enterKey()
				return m, textinput.Blink
			}

			text := m.textarea.Value()
			m.textarea.Reset()
			m.pending = text
			m.loading = true
			m.notice = ""
			m.animationFrame = 0
			m.updateViewport()
			m.viewport.GotoBottom()

			return m, tea.Batch(
				m.submit(text),
				m.spinner.Tick,
				animationTick(),
			)
		}

	case historyMsg:
		m.loading = false
		m.pending = ""
		m.history = msg
		m.updateViewport()
		m.viewport.GotoBottom()

	case noticeMsg:
		m.notice = string(msg)

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.loading && m.stage == stageChat {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// updateKey handles keys while the API key prompt is shown
func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.enterChat()
		return m, nil

	case "enter":
		m.session.SetCredential(m.keyInput.Value())
		m.enterChat()
		if m.session.HasCredential() {
			m.notice = "API key set for this session"
		} else {
			m.notice = models.MissingKeyReply
		}
		return m, textarea.Blink
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

// submit runs one round trip off the UI goroutine. The reply reaches the
// model through the session renderer as a historyMsg.
func (m Model) submit(text string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if !session.Submit(text) {
			return historyMsg(session.History())
		}
		return nil
	}
}

// copyLastReply copies the most recent assistant reply to the clipboard
func (m Model) copyLastReply() tea.Cmd {
	reply, ok := lastReply(m.history)
	if !ok {
		return func() tea.Msg { return noticeMsg("Nothing to copy yet") }
	}
	return func() tea.Msg {
		if err := copyToClipboard(reply); err != nil {
			return noticeMsg("Copy failed: " + err.Error())
		}
		return noticeMsg("Reply copied to clipboard")
	}
}

func lastReply(history []models.Message) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleAssistant {
			return history[i].Content, true
		}
	}
	return "", false
}

// isFailureReply reports whether content is a stored failure description
func isFailureReply(content string) bool {
	return content == models.MissingKeyReply || strings.HasPrefix(content, chat.ErrorPrefix)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.stage == stageKey {
		return m.renderKeyPrompt()
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ OpenRouter Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelName),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	if len(m.history) == 0 && m.pending == "" {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}

	if !m.loading {
		if err := m.session.LastError(); err != nil {
			sections = append(sections, FormatError(err))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderKeyPrompt renders the API key entry screen
func (m Model) renderKeyPrompt() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		keyTitleStyle.Render("Enter your OpenRouter API key"),
		hintStyle.Render("The key is kept in memory for this session only."),
		"",
		m.keyInput.View(),
		"",
		statusKeyStyle.Render("Enter")+statusDescStyle.Render(" Save")+
			statusDescStyle.Render("  │  ")+
			statusKeyStyle.Render("Esc")+statusDescStyle.Render(" Skip"),
	)

	return keyPanelStyle.Width(width).Render(content)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✦")
	title := welcomeTitleStyle.Width(width).Render("Welcome to OpenRouter Chat")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Waiting for " + m.modelName + " ")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots.String())
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy reply"},
		{KeyCommand, "API key"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	entries := m.history
	if m.pending != "" {
		entries = append(entries[:len(entries):len(entries)], models.NewUserMessage(m.pending))
	}

	for i, msg := range entries {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			label := userLabelStyle.Render("⬤ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("✦ " + m.modelName)
			var bubble string
			if isFailureReply(msg.Content) {
				bubble = errorBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			} else {
				rendered := render.Reply(msg.Content, m.renderOpts.WithWidth(bubbleWidth-4))
				bubble = assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			}
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// ChatOptions configures RunChat
type ChatOptions struct {
	ModelName string
	APIKey    string
	Render    render.Options
	Logger    *zap.Logger
}

// RunChat starts the chat TUI. The session renderer feeds each completed
// round trip back into the program.
func RunChat(completer chat.Completer, opts ChatOptions) error {
	var p *tea.Program

	session := chat.NewSession(completer,
		chat.WithCredential(opts.APIKey),
		chat.WithLogger(opts.Logger),
		chat.WithRenderer(chat.RendererFunc(func(history []models.Message) {
			if p != nil {
				p.Send(historyMsg(history))
			}
		})),
	)

	p = tea.NewProgram(
		NewChatModel(session, opts.ModelName, opts.Render),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
