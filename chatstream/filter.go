package chatstream

import (
	"encoding/json"
	"strings"
)

// Protocol markers of the chat event stream
const (
	DataPrefix    = "data: "
	CommentPrefix = ":"
	DoneSentinel  = "[DONE]"
)

// Kind is the classification of one protocol line
type Kind int

// Kinds
const (
	// KindSkip is a blank, comment or non-data line
	KindSkip Kind = iota
	// KindEmpty is a well-formed event carrying no text
	KindEmpty
	// KindFragment is a well-formed event carrying text
	KindFragment
	// KindDone is the completion sentinel
	KindDone
	// KindIncomplete is a data line whose payload is not yet valid JSON
	KindIncomplete
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "skip"
	case KindEmpty:
		return "empty"
	case KindFragment:
		return "fragment"
	case KindDone:
		return "done"
	case KindIncomplete:
		return "incomplete"
	}
	return "unknown"
}

// event is the subset of a chat completion chunk that carries text.
// Every level is optional.
type event struct {
	Choices []struct {
		Delta *struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// content returns choices[0].delta.content, or an empty string when any level is absent
func (e *event) content() string {
	if len(e.Choices) == 0 {
		return ""
	}
	delta := e.Choices[0].Delta
	if delta == nil || delta.Content == nil {
		return ""
	}
	return *delta.Content
}

// Classify returns the Kind of line and, for KindFragment, the text it carries
func Classify(line string) (Kind, string) {
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, CommentPrefix) {
		return KindSkip, ""
	}
	if !strings.HasPrefix(line, DataPrefix) {
		return KindSkip, ""
	}

	raw := strings.TrimSpace(line[len(DataPrefix):])
	if raw == DoneSentinel {
		return KindDone, ""
	}

	if !json.Valid([]byte(raw)) {
		return KindIncomplete, ""
	}

	var ev event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		// valid JSON of an unexpected shape carries no text
		return KindEmpty, ""
	}

	text := ev.content()
	if text == "" {
		return KindEmpty, ""
	}

	return KindFragment, text
}
