package chatbot

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/chatstream"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Streamer opens a streamed chat completion
type Streamer interface {
	ChatStream(ctx context.Context, messages []Message) (io.ReadCloser, error)
}

// Handler relays one streamed chat completion over a WebSocket.
// The client sends one ClientMessage; the server answers with text messages
// followed by done, or with error.
type Handler struct {
	client Streamer
	logger *zap.Logger
}

// NewHandler creates a new chat relay handler. A nil logger discards logs.
func NewHandler(client Streamer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{client: client, logger: logger}
}

// ServeHTTP handles the WebSocket upgrade and chat flow
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger
	if user, ok := r.Context().Value(api.UserKey).(*api.User); ok && user != nil {
		logger = logger.With(zap.String("user", user.ID))
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var clientMsg ClientMessage
	if err := conn.ReadJSON(&clientMsg); err != nil {
		h.sendError(conn, "Failed to read message")
		return
	}

	if err := ValidateHistory(clientMsg.Messages); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	stream, err := h.client.ChatStream(r.Context(), Conversation(clientMsg.Messages))
	if err != nil {
		logger.Warn("chat stream failed", zap.Error(err))
		h.sendError(conn, ErrorMessage(err))
		return
	}
	defer stream.Close()

	var writeErr error
	p := chatstream.NewPipeline()
	err = p.Run(stream, func(fragment string) {
		if writeErr != nil {
			return
		}
		writeErr = conn.WriteJSON(ServerMessage{Type: MessageTypeText, Content: fragment})
	})

	if writeErr != nil {
		logger.Warn("failed to write chunk", zap.Error(writeErr))
		return
	}
	if err != nil {
		logger.Warn("chat stream read failed", zap.Error(err))
		h.sendError(conn, "Stream error: "+err.Error())
		return
	}

	conn.WriteJSON(ServerMessage{Type: MessageTypeDone})
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) {
	conn.WriteJSON(ServerMessage{
		Type:  MessageTypeError,
		Error: msg,
	})
}

// ValidateHistory requires a non-empty conversation ending with a user message
func ValidateHistory(messages []chatstream.Message) error {
	if len(messages) == 0 {
		return errors.New("Messages cannot be empty")
	}
	last := messages[len(messages)-1]
	if last.Role != chatstream.RoleUser || last.Content == "" {
		return errors.New("Last message must be a non-empty user message")
	}
	return nil
}

// ErrorMessage returns the user-facing description of err
func ErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Description
	}
	return err.Error()
}
