package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/chatbot"
)

//streamBufferSize is the read size used when relaying the provider's event stream
const streamBufferSize = 4096

//POST /chat
//The provider's event stream is relayed unchanged. Errors before the stream starts are JSON {"error": ...} bodies.
func handleChat(ai chatbot.Streamer) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *ChatRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		if err = chatbot.ValidateHistory(req.Messages); err != nil {
			return handleErrorMessage(http.StatusBadRequest, err.Error(), err)
		}

		body, err := ai.ChatStream(r.Context(), chatbot.Conversation(req.Messages))
		if resp := checkAPIError(err); resp != nil {
			return resp
		}
		defer body.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		flusher, _ := w.(http.Flusher)
		if flusher != nil {
			flusher.Flush()
		}

		buf := make([]byte, streamBufferSize)
		for {
			n, rErr := body.Read(buf)
			if n > 0 {
				if _, wErr := w.Write(buf[:n]); wErr != nil {
					return &handlerResponse{Code: http.StatusOK, Written: true, Err: fmt.Errorf("Could not write stream: %v", wErr)}
				}
				if flusher != nil {
					flusher.Flush()
				}
			}
			if rErr == io.EOF {
				break
			}
			if rErr != nil {
				return &handlerResponse{Code: http.StatusOK, Written: true, Err: &api.Error{Description: "Could not read stream", Type: api.ErrorTypeProvider, Err: rErr}}
			}
		}

		return &handlerResponse{Code: http.StatusOK, Written: true}
	}
}
