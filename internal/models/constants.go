// Package models contains data types and constants for the OpenRouter chat API.
package models

// Endpoints for the OpenRouter API
const (
	EndpointChatCompletions = "https://openrouter.ai/api/v1/chat/completions"
)

// DefaultModel is the model identifier sent when none is configured
const DefaultModel = "deepseek/deepseek-r1:free"

// MissingKeyReply is the assistant text used when no API key is set
const MissingKeyReply = "Please enter a valid API key."

// Role identifies the author of a message
type Role string

// Message roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire name of the role
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DefaultHeaders returns the headers sent with every completion request.
// Authorization is added per request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "routerchat",
	}
}

// AuthorizationHeader formats the bearer credential header value
func AuthorizationHeader(apiKey string) string {
	return "Bearer " + apiKey
}
