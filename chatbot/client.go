package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/korylprince/jobmatch-server/api"
	"go.uber.org/zap"
)

// Gateway defaults
const (
	DefaultEndpoint = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultModel    = "google/gemini-3-flash-preview"
)

// Messages returned to users for gateway failures
const (
	RateLimitedMessage    = "Rate limited, please try again shortly."
	QuotaExhaustedMessage = "AI credits exhausted. Please add credits."
	GatewayErrorMessage   = "AI gateway error"
)

// Tool represents an OpenAI function tool
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a function tool
type ToolFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

// ForceTool returns a tool_choice value that forces the model to call the named function
func ForceTool(name string) interface{} {
	return map[string]interface{}{
		"type":     "function",
		"function": map[string]string{"name": name},
	}
}

// ChatRequest is the request body for the chat completions API
type ChatRequest struct {
	Model      string      `json:"model"`
	Messages   []Message   `json:"messages"`
	Tools      []Tool      `json:"tools,omitempty"`
	ToolChoice interface{} `json:"tool_choice,omitempty"` // "auto", "none", or ForceTool
	Stream     bool        `json:"stream"`
}

// ChatResponse is the response from the chat completions API
type ChatResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice represents a single completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage contains token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolCaller calls a forced tool and decodes its arguments into out
type ToolCaller interface {
	CallTool(ctx context.Context, messages []Message, tool Tool, out interface{}) error
}

// AIClient is a client for an OpenAI-compatible chat completions gateway
type AIClient struct {
	endpoint   string
	model      string
	key        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAIClient creates a new AI client. Empty endpoint and model use the defaults and a nil logger discards logs.
func NewAIClient(endpoint, model, key string, logger *zap.Logger) *AIClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIClient{
		endpoint:   endpoint,
		model:      model,
		key:        key,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *AIClient) do(ctx context.Context, req ChatRequest) (*http.Response, error) {
	if c.key == "" {
		return nil, &api.Error{Description: "AI gateway is not configured", Type: api.ErrorTypeConfiguration, Err: errors.New("AI key is not configured")}
	}

	req.Model = c.model
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &api.Error{Description: "Could not encode AI request", Type: api.ErrorTypeServer, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &api.Error{Description: "Could not create AI request", Type: api.ErrorTypeServer, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.key)
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &api.Error{Description: GatewayErrorMessage, Type: api.ErrorTypeProvider, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, c.statusError(resp.StatusCode, respBody)
	}

	return resp, nil
}

func (c *AIClient) statusError(status int, body []byte) error {
	err := fmt.Errorf("API error (status %d): %s", status, string(body))
	switch status {
	case http.StatusTooManyRequests:
		return &api.Error{Description: RateLimitedMessage, Type: api.ErrorTypeRateLimited, Err: err}
	case http.StatusPaymentRequired:
		return &api.Error{Description: QuotaExhaustedMessage, Type: api.ErrorTypeQuotaExhausted, Err: err}
	}
	c.logger.Error("AI gateway error", zap.Int("status", status), zap.ByteString("body", body))
	return &api.Error{Description: GatewayErrorMessage, Type: api.ErrorTypeProvider, Err: err}
}

// Chat makes a non-streaming chat request. toolChoice may be nil, "auto", "none" or ForceTool.
func (c *AIClient) Chat(ctx context.Context, messages []Message, tools []Tool, toolChoice interface{}) (*ChatResponse, error) {
	req := ChatRequest{
		Messages: messages,
		Tools:    tools,
		Stream:   false,
	}
	if len(tools) > 0 {
		req.ToolChoice = toolChoice
		if req.ToolChoice == nil {
			req.ToolChoice = "auto"
		}
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, &api.Error{Description: "Unexpected AI response format", Type: api.ErrorTypeProvider, Err: err}
	}

	return &chatResp, nil
}

// ChatStream makes a streaming chat request and returns the raw event stream.
// The caller must close it.
func (c *AIClient) ChatStream(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	resp, err := c.do(ctx, ChatRequest{Messages: messages, Stream: true})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// CallTool forces the model to call tool and decodes the call's arguments into out
func (c *AIClient) CallTool(ctx context.Context, messages []Message, tool Tool, out interface{}) error {
	resp, err := c.Chat(ctx, messages, []Tool{tool}, ForceTool(tool.Function.Name))
	if err != nil {
		return err
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return &api.Error{Description: "Unexpected AI response format", Type: api.ErrorTypeProvider, Err: fmt.Errorf("no call to %s in response", tool.Function.Name)}
	}

	call := resp.Choices[0].Message.ToolCalls[0]
	if err := json.Unmarshal([]byte(call.Function.Arguments), out); err != nil {
		return &api.Error{Description: "Unexpected AI response format", Type: api.ErrorTypeProvider, Err: fmt.Errorf("could not decode %s arguments: %w", tool.Function.Name, err)}
	}

	return nil
}
