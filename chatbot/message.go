package chatbot

import (
	"encoding/json"

	"github.com/korylprince/jobmatch-server/chatstream"
)

// Roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in OpenAI format
type Message struct {
	Role      string     `json:"role"`                 // system, user, assistant
	Content   *string    `json:"content"`              // text content (nil for tool_calls-only messages)
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // for assistant tool call responses
}

// MarshalJSON sends null for empty content strings
func (m Message) MarshalJSON() ([]byte, error) {
	type Alias Message
	aux := struct {
		Alias
		Content *string `json:"content"`
	}{
		Alias: Alias(m),
	}
	if m.Content != nil && *m.Content != "" {
		aux.Content = m.Content
	}
	return json.Marshal(aux)
}

// ToolCall represents a tool call from the assistant
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall contains the function name and arguments
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// TextMessage returns a Message with the given role and content
func TextMessage(role, content string) Message {
	return Message{Role: role, Content: &content}
}

// Conversation returns the system prompt followed by the user and assistant messages of history.
// Messages with other roles are dropped so clients cannot inject system instructions.
func Conversation(history []chatstream.Message) []Message {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, TextMessage(RoleSystem, SystemPrompt()))
	for _, m := range history {
		if m.Role != chatstream.RoleUser && m.Role != chatstream.RoleAssistant {
			continue
		}
		messages = append(messages, TextMessage(m.Role, m.Content))
	}
	return messages
}
