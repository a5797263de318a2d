package chatstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultErrorDetail is used when a failed response does not explain itself
const DefaultErrorDetail = "Failed to connect to AI"

// ErrorPrefix starts the assistant message recorded for a failed cycle
const ErrorPrefix = "Sorry, I encountered an error: "

// Errors returned by Send when no cycle was started
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a response is already streaming")
)

// TransportError is a failure to obtain or read the response stream
type TransportError struct {
	// Status is the HTTP status code, or 0 if no response was received
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	return e.Detail
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type chatRequest struct {
	Messages []Message `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Session is one conversation with a chat endpoint.
// At most one response streams at a time; it is safe for concurrent use.
type Session struct {
	endpoint string
	token    string
	client   Doer
	logger   *zap.Logger

	// OnUpdate, if set, is called with every new or updated assistant message.
	// It is called without holding the Session lock.
	OnUpdate func(Message)

	mu       sync.Mutex
	log      ConversationLog
	inFlight bool
}

// NewSession returns a Session posting to endpoint with token as bearer credential.
// A nil client uses http.DefaultClient and a nil logger discards logs.
func NewSession(endpoint, token string, client Doer, logger *zap.Logger) *Session {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{endpoint: endpoint, token: token, client: client, logger: logger}
}

// Send runs one cycle: it records text as a user message, posts the whole conversation
// and assembles the streamed response into one assistant message.
// On failure an assistant message starting with ErrorPrefix is recorded and the error returned.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	s.inFlight = true
	s.log.Append(Message{Role: RoleUser, Content: text})
	history := s.log.Snapshot()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if err := s.stream(ctx, history); err != nil {
		s.logger.Warn("chat stream failed", zap.String("endpoint", s.endpoint), zap.Error(err))
		s.record(Message{Role: RoleAssistant, Content: ErrorPrefix + err.Error()})
		return err
	}

	return nil
}

func (s *Session) stream(ctx context.Context, history []Message) error {
	body, err := json.Marshal(chatRequest{Messages: history})
	if err != nil {
		return &TransportError{Detail: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Detail: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return &TransportError{Detail: err.Error(), Err: err}
	}
	if resp.Body == nil {
		return &TransportError{Status: resp.StatusCode, Detail: DefaultErrorDetail}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := DefaultErrorDetail
		var e errorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			detail = e.Error
		}
		return &TransportError{Status: resp.StatusCode, Detail: detail}
	}

	s.mu.Lock()
	asm := NewAssembler(&s.log)
	s.mu.Unlock()

	p := NewPipeline()
	err = p.Run(resp.Body, func(fragment string) {
		s.mu.Lock()
		m, err := asm.Append(fragment)
		s.mu.Unlock()
		if err == nil && s.OnUpdate != nil {
			s.OnUpdate(m)
		}
	})

	s.mu.Lock()
	asm.Finalize()
	s.mu.Unlock()

	if retries := p.Retries(); retries > 0 {
		s.logger.Debug("chat stream lines pushed back", zap.Int("retries", retries))
	}

	if err != nil {
		return &TransportError{Status: resp.StatusCode, Detail: err.Error(), Err: fmt.Errorf("reading stream: %w", err)}
	}

	return nil
}

func (s *Session) record(m Message) {
	s.mu.Lock()
	s.log.Append(m)
	s.mu.Unlock()
	if s.OnUpdate != nil {
		s.OnUpdate(m)
	}
}

// Messages returns a copy of the conversation
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Snapshot()
}

// InFlight reports whether a response is streaming
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}
