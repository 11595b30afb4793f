// Package chat implements the conversation loop: one blocking completion per
// submitted line, appended to an in-memory history that is never persisted.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diogo/routerchat/internal/models"
)

// ErrorPrefix is prepended to a failure description stored as an assistant reply
const ErrorPrefix = "Error: "

// Completer turns a prompt into reply text. *api.Client satisfies it.
type Completer interface {
	Complete(apiKey, prompt string) (string, error)
}

// Renderer is the display surface notified after every round trip
type Renderer interface {
	Render(history []models.Message)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(history []models.Message)

// Render calls f(history)
func (f RendererFunc) Render(history []models.Message) {
	f(history)
}

// Session owns one conversation: its credential, its history and the
// completer used for round trips.
type Session struct {
	id        string
	completer Completer
	renderer  Renderer
	logger    *zap.Logger

	mu         sync.RWMutex
	credential string
	history    []models.Message
	lastErr    error
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithCredential sets the initial API key
func WithCredential(apiKey string) SessionOption {
	return func(s *Session) {
		s.credential = strings.TrimSpace(apiKey)
	}
}

// WithRenderer sets the display surface notified after each round trip
func WithRenderer(r Renderer) SessionOption {
	return func(s *Session) {
		s.renderer = r
	}
}

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates an empty session backed by completer
func NewSession(completer Completer, opts ...SessionOption) *Session {
	s := &Session{
		id:        uuid.NewString(),
		completer: completer,
		logger:    zap.NewNop(),
		history:   []models.Message{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	return s
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// SetCredential replaces the API key used for subsequent round trips
func (s *Session) SetCredential(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = strings.TrimSpace(apiKey)
}

// HasCredential reports whether a non-empty API key is set
func (s *Session) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != ""
}

// History returns a copy of the conversation in insertion order
func (s *Session) History() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of messages in the history
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// LastError returns the failure behind the most recent error reply, or nil
// if the most recent round trip succeeded.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Submit runs one round trip for text and reports whether it did anything.
// Blank text is ignored: no history change, no request, no re-render.
func (s *Session) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.appendMessage(models.NewUserMessage(text))

	reply := s.Complete(text)

	s.appendMessage(models.NewAssistantMessage(reply))
	s.render()
	return true
}

// Complete returns the reply for text, or a description of why there is none.
// It never fails: a missing credential yields models.MissingKeyReply without
// any request, and a failed request yields ErrorPrefix plus the error message.
func (s *Session) Complete(text string) string {
	s.mu.RLock()
	apiKey := s.credential
	s.mu.RUnlock()

	if apiKey == "" {
		s.setLastError(nil)
		return models.MissingKeyReply
	}

	start := time.Now()
	reply, err := s.completer.Complete(apiKey, text)
	if err != nil {
		s.logger.Warn("round trip failed", zap.Duration("latency", time.Since(start)), zap.Error(err))
		s.setLastError(err)
		return FormatError(err)
	}

	s.logger.Debug("round trip complete", zap.Duration("latency", time.Since(start)), zap.Int("reply_len", len(reply)))
	s.setLastError(nil)
	return reply
}

// Render pushes the current history to the display surface
func (s *Session) Render() {
	s.render()
}

// FormatError renders err the way it is stored in the history
func FormatError(err error) string {
	if err == nil {
		return ErrorPrefix
	}
	return ErrorPrefix + err.Error()
}

func (s *Session) appendMessage(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msg)
}

func (s *Session) setLastError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

func (s *Session) render() {
	if s.renderer == nil {
		return
	}
	s.renderer.Render(s.History())
}
