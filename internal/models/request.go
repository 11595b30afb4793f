package models

// ChatRequest is the JSON body posted to the chat completions endpoint
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// NewSingleTurnRequest builds a request carrying only one user message
func NewSingleTurnRequest(model, prompt string) ChatRequest {
	return ChatRequest{
		Model:    model,
		Messages: []Message{NewUserMessage(prompt)},
	}
}

// Usage holds token accounting reported by the API, when present
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Completion is the parsed result of a successful completion request
type Completion struct {
	ID      string
	Model   string
	Content string
	Usage   Usage
}
