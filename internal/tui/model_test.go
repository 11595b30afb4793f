package tui

import (
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/routerchat/internal/api"
	"github.com/diogo/routerchat/internal/chat"
	apierrors "github.com/diogo/routerchat/internal/errors"
	"github.com/diogo/routerchat/internal/models"
	"github.com/diogo/routerchat/internal/render"
)

// captureRenderer records every history pushed by the session
type captureRenderer struct {
	mu      sync.Mutex
	renders [][]models.Message
}

func (c *captureRenderer) Render(history []models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renders = append(c.renders, history)
}

func (c *captureRenderer) last() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.renders) == 0 {
		return nil
	}
	return c.renders[len(c.renders)-1]
}

func newTestModel(t *testing.T, apiKey string, mock *api.MockClient) (Model, *captureRenderer) {
	t.Helper()
	r := &captureRenderer{}
	session := chat.NewSession(mock, chat.WithCredential(apiKey), chat.WithRenderer(r))
	m := NewChatModel(session, models.DefaultModel, render.DefaultOptions().WithStyle(render.StyleNoTTY))
	return resize(m, 100, 40), r
}

func resize(m Model, w, h int) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return updated.(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyCopy  = tea.KeyMsg{Type: tea.KeyCtrlY}
)

func TestNewChatModel_Stage(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   stage
	}{
		{"no credential starts at key prompt", "", stageKey},
		{"blank credential starts at key prompt", "   ", stageKey},
		{"credential starts in chat", "sk-or-test", stageChat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, tt.apiKey, &api.MockClient{})
			if m.stage != tt.want {
				t.Errorf("stage = %v, want %v", m.stage, tt.want)
			}
		})
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	session := chat.NewSession(&api.MockClient{}, chat.WithCredential("key"))
	m := NewChatModel(session, "test-model", render.DefaultOptions())

	if m.ready {
		t.Fatal("model should not be ready before the first size message")
	}
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("View() before sizing should show the initializing message")
	}

	m = resize(m, 80, 24)
	if !m.ready {
		t.Error("model should be ready after WindowSizeMsg")
	}
	if m.viewport.Width != 76 {
		t.Errorf("viewport width = %d, want 76", m.viewport.Width)
	}

	m = resize(m, 10, 5)
	if m.viewport.Height != 5 {
		t.Errorf("viewport height should clamp to 5, got %d", m.viewport.Height)
	}
}

func TestKeyStage_EnterSetsCredential(t *testing.T) {
	m, _ := newTestModel(t, "", &api.MockClient{})

	if !strings.Contains(m.View(), "Enter your OpenRouter API key") {
		t.Error("key prompt should be visible")
	}

	m.keyInput.SetValue("sk-or-secret")
	if strings.Contains(m.View(), "sk-or-secret") {
		t.Error("key prompt must mask the credential")
	}

	m, cmd := press(m, keyEnter)
	if cmd == nil {
		t.Error("expected a blink command after entering the key")
	}
	if m.stage != stageChat {
		t.Errorf("stage = %v, want chat", m.stage)
	}
	if !m.session.HasCredential() {
		t.Error("credential should be set on the session")
	}
	if m.notice != "API key set for this session" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestKeyStage_EmptyKeyWarns(t *testing.T) {
	m, _ := newTestModel(t, "", &api.MockClient{})

	m, _ = press(m, keyEnter)
	if m.stage != stageChat {
		t.Errorf("stage = %v, want chat", m.stage)
	}
	if m.session.HasCredential() {
		t.Error("empty key must leave the credential unset")
	}
	if m.notice != models.MissingKeyReply {
		t.Errorf("notice = %q, want %q", m.notice, models.MissingKeyReply)
	}
}

func TestKeyStage_EscSkips(t *testing.T) {
	m, _ := newTestModel(t, "", &api.MockClient{})

	m, _ = press(m, keyEsc)
	if m.stage != stageChat {
		t.Errorf("stage = %v, want chat", m.stage)
	}
}

func TestChat_KeyCommandReturnsToPrompt(t *testing.T) {
	m, _ := newTestModel(t, "key", &api.MockClient{})

	m.textarea.SetValue(KeyCommand)
	m, _ = press(m, keyEnter)

	if m.stage != stageKey {
		t.Errorf("stage = %v, want key", m.stage)
	}
	if m.textarea.Value() != "" {
		t.Error("textarea should be cleared")
	}
	if m.session.Len() != 0 {
		t.Error("/key must not be sent as a message")
	}
}

func TestChat_ExitCommands(t *testing.T) {
	for _, input := range []string{"exit", "quit", "/exit", "/quit"} {
		t.Run(input, func(t *testing.T) {
			m, _ := newTestModel(t, "key", &api.MockClient{})
			m.textarea.SetValue(input)

			_, cmd := press(m, keyEnter)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}
}

func TestChat_BlankInputIgnored(t *testing.T) {
	mock := &api.MockClient{CompleteVal: "never"}
	m, r := newTestModel(t, "key", mock)

	m.textarea.SetValue("   ")
	m, cmd := press(m, keyEnter)

	if cmd != nil {
		t.Error("blank input must not return a command")
	}
	if got := m.textarea.Value(); got != "   " {
		t.Errorf("textarea = %q, blank Enter must not insert a newline", got)
	}
	if m.loading {
		t.Error("blank input must not start a round trip")
	}
	if mock.CallCount() != 0 {
		t.Errorf("completer called %d times", mock.CallCount())
	}
	if r.last() != nil {
		t.Error("blank input must not re-render")
	}
}

func TestChat_SubmitRoundTrip(t *testing.T) {
	mock := &api.MockClient{CompleteVal: "pong"}
	m, r := newTestModel(t, "sk-or-test", mock)

	m.textarea.SetValue("ping")
	m, cmd := press(m, keyEnter)

	if cmd == nil {
		t.Fatal("expected a command batch")
	}
	if !m.loading {
		t.Error("model should be loading")
	}
	if m.pending != "ping" {
		t.Errorf("pending = %q, want ping", m.pending)
	}
	if m.textarea.Value() != "" {
		t.Error("textarea should be cleared after submit")
	}
	if !strings.Contains(m.viewport.View(), "ping") {
		t.Error("pending user message should be visible while loading")
	}

	if msg := m.submit("ping")(); msg != nil {
		t.Errorf("submit returned %v, want nil", msg)
	}
	if mock.LastAPIKey != "sk-or-test" || mock.LastPrompt != "ping" {
		t.Errorf("completer got key=%q prompt=%q", mock.LastAPIKey, mock.LastPrompt)
	}

	pushed := r.last()
	if len(pushed) != 2 {
		t.Fatalf("renderer got %d messages, want 2", len(pushed))
	}

	updated, _ := m.Update(historyMsg(pushed))
	m = updated.(Model)

	if m.loading {
		t.Error("loading should end when the history arrives")
	}
	if m.pending != "" {
		t.Error("pending should be cleared")
	}
	if len(m.history) != 2 {
		t.Errorf("history len = %d, want 2", len(m.history))
	}
	view := m.viewport.View()
	if !strings.Contains(view, "ping") || !strings.Contains(view, "pong") {
		t.Errorf("viewport should show both messages, got:\n%s", view)
	}
}

func TestChat_LoadingIgnoresEnter(t *testing.T) {
	mock := &api.MockClient{CompleteVal: "pong"}
	m, _ := newTestModel(t, "key", mock)
	m.loading = true
	m.textarea.SetValue("second")

	m, cmd := press(m, keyEnter)
	if cmd != nil {
		t.Error("enter while loading should do nothing")
	}
	if m.pending != "" {
		t.Error("no new submission while loading")
	}
}

func TestChat_FailureShownWithHint(t *testing.T) {
	mock := &api.MockClient{CompleteErr: apierrors.NewAuthError(401, "No auth credentials found")}
	m, r := newTestModel(t, "bad-key", mock)

	m.submit("hi")()
	updated, _ := m.Update(historyMsg(r.last()))
	m = updated.(Model)

	reply, ok := lastReply(m.history)
	if !ok || !isFailureReply(reply) {
		t.Fatalf("last reply = %q, want a failure reply", reply)
	}

	view := m.View()
	if !strings.Contains(view, "HTTP Status: 401") {
		t.Errorf("view should include error details, got:\n%s", view)
	}
	if !strings.Contains(view, KeyCommand) {
		t.Error("view should hint at the key command")
	}
}

func TestChat_MissingKeyReply(t *testing.T) {
	mock := &api.MockClient{CompleteVal: "never"}
	m, r := newTestModel(t, "", mock)
	m, _ = press(m, keyEsc)

	m.submit("hello")()
	if mock.CallCount() != 0 {
		t.Error("no request without a credential")
	}

	updated, _ := m.Update(historyMsg(r.last()))
	m = updated.(Model)

	reply, _ := lastReply(m.history)
	if reply != models.MissingKeyReply {
		t.Errorf("reply = %q, want %q", reply, models.MissingKeyReply)
	}
}

func TestCopyLastReply(t *testing.T) {
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error {
		copied = s
		return nil
	}
	defer func() { copyToClipboard = orig }()

	m, _ := newTestModel(t, "key", &api.MockClient{})

	_, cmd := press(m, keyCopy)
	if msg := cmd(); msg != noticeMsg("Nothing to copy yet") {
		t.Errorf("empty history: got %v", msg)
	}

	m.history = []models.Message{
		models.NewUserMessage("q"),
		models.NewAssistantMessage("first"),
		models.NewUserMessage("q2"),
		models.NewAssistantMessage("second"),
	}
	m, cmd = press(m, keyCopy)
	msg := cmd()
	if copied != "second" {
		t.Errorf("copied %q, want second", copied)
	}

	updated, _ := m.Update(msg)
	if got := updated.(Model).notice; got != "Reply copied to clipboard" {
		t.Errorf("notice = %q", got)
	}
}

func TestCopyLastReply_Error(t *testing.T) {
	orig := copyToClipboard
	copyToClipboard = func(string) error { return errors.New("no clipboard") }
	defer func() { copyToClipboard = orig }()

	m, _ := newTestModel(t, "key", &api.MockClient{})
	m.history = []models.Message{models.NewAssistantMessage("x")}

	if msg := m.copyLastReply()(); msg != noticeMsg("Copy failed: no clipboard") {
		t.Errorf("got %v", msg)
	}
}

func TestIsFailureReply(t *testing.T) {
	tests := map[string]bool{
		"Error: timeout":       true,
		models.MissingKeyReply: true,
		"all good":             false,
		"":                     false,
		"An Error: inside":     false,
	}
	for content, want := range tests {
		if got := isFailureReply(content); got != want {
			t.Errorf("isFailureReply(%q) = %v, want %v", content, got, want)
		}
	}
}

func TestView_Chat(t *testing.T) {
	m, _ := newTestModel(t, "key", &api.MockClient{})

	view := m.View()
	for _, want := range []string{"OpenRouter Chat", models.DefaultModel, "Welcome", "Ctrl+Y"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}

	m.loading = true
	m.pending = "x"
	if !strings.Contains(m.View(), "Waiting for") {
		t.Error("loading view should show the animation")
	}
}

func TestAnimationTick(t *testing.T) {
	m, _ := newTestModel(t, "key", &api.MockClient{})

	updated, _ := m.Update(animationTickMsg{})
	if updated.(Model).animationFrame != 0 {
		t.Error("frame should not advance when idle")
	}

	m.loading = true
	updated, cmd := m.Update(animationTickMsg{})
	if updated.(Model).animationFrame != 1 {
		t.Error("frame should advance while loading")
	}
	if cmd == nil {
		t.Error("expected next tick")
	}
}

func TestErrorHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"auth", apierrors.NewAuthError(401, "bad"), "API key"},
		{"rate limit", apierrors.NewUsageLimitError("slow down"), "Rate limit"},
		{"timeout", apierrors.NewTimeoutError("chat completion", "", errors.New("deadline")), "timed out"},
		{"network", apierrors.NewNetworkError("chat completion", "x", errors.New("refused")), "internet"},
		{"parse", apierrors.NewParseError("bad", ""), "unexpected response"},
		{"plain", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorHint(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("ErrorHint() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ErrorHint() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("FormatError(nil) should be empty")
	}

	err := apierrors.NewAPIError(502, models.EndpointChatCompletions, "Bad Gateway")
	out := FormatError(err)
	for _, want := range []string{"Bad Gateway", "HTTP Status: 502", models.EndpointChatCompletions} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatError() should contain %q, got:\n%s", want, out)
		}
	}
}

func TestUpdateTheme(t *testing.T) {
	defer func() {
		render.SetTUITheme("tokyonight")
		UpdateTheme()
	}()

	render.SetTUITheme("dracula")
	UpdateTheme()

	if colorPrimary != render.GetTUITheme().Primary {
		t.Errorf("colorPrimary = %v, want %v", colorPrimary, render.GetTUITheme().Primary)
	}
}
