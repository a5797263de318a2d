package chatbot

import "github.com/korylprince/jobmatch-server/chatstream"

// ClientMessage is the message format from client to server
type ClientMessage struct {
	Messages []chatstream.Message `json:"messages"`
}

// ServerMessage is the message format from server to client
type ServerMessage struct {
	Type    string `json:"type"`              // "text", "done", or "error"
	Content string `json:"content,omitempty"` // partial response text
	Error   string `json:"error,omitempty"`   // sent with "error"
}

// Message types
const (
	MessageTypeText  = "text"
	MessageTypeDone  = "done"
	MessageTypeError = "error"
)
