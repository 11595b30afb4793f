package api

import "sync"

// MockClient is a canned completion source for tests of callers of Client
type MockClient struct {
	// Mock return values
	CompleteVal string
	CompleteErr error

	// Call recorders
	mu         sync.Mutex
	Calls      int
	LastAPIKey string
	LastPrompt string
}

// Complete records the call and returns the configured values
func (m *MockClient) Complete(apiKey, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastAPIKey = apiKey
	m.LastPrompt = prompt
	return m.CompleteVal, m.CompleteErr
}

// CallCount returns how many times Complete was invoked
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
