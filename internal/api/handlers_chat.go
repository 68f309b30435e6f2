package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ChatRequest is the JSON body for POST /v1/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is one entry of ChatRequest.Messages.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatChunk is the payload of one streamed data frame.
type chatChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Choices []chunkChoice `json:"choices"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type chunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type streamError struct {
	Error ErrorResponse `json:"error"`
}

type recvResult struct {
	msg *schema.Message
	err error
}

// handleChat handles POST /v1/chat. The reply is a server-sent event stream
// of completion chunks terminated by "data: [DONE]".
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		s.writeError(w, http.StatusTooManyRequests, "rate limited")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	messages, err := s.buildModelInput(req.Messages)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	logger := s.logger.With("request_id", middleware.GetReqID(ctx))
	start := time.Now()

	stream, err := s.chatModel.Stream(ctx, messages, model.WithMaxTokens(s.config.MaxTokens))
	if err != nil {
		logger.Error("model stream failed", "error", err)
		s.writeError(w, http.StatusBadGateway, "model request failed")
		return
	}
	defer stream.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	results := make(chan recvResult)
	go func() {
		defer close(results)
		for {
			msg, err := stream.Recv()
			select {
			case results <- recvResult{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(s.config.StreamHeartbeatInterval)
	defer heartbeat.Stop()

	completionID := "chatcmpl-" + uuid.NewString()
	created := time.Now().Unix()
	deltas := 0

	for {
		select {
		case <-ctx.Done():
			logger.Info("chat client disconnected", "deltas", deltas)
			return
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case res, ok := <-results:
			if !ok {
				return
			}
			if errors.Is(res.err, io.EOF) {
				stop := "stop"
				writeEvent(w, chatChunk{
					ID: completionID, Object: "chat.completion.chunk", Created: created,
					Choices: []chunkChoice{{Delta: chunkDelta{}, FinishReason: &stop}},
				})
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
				flusher.Flush()
				logger.Info("chat stream completed",
					"deltas", deltas,
					"duration_ms", time.Since(start).Milliseconds(),
				)
				return
			}
			if res.err != nil {
				// Headers are gone; report in-band and end without the sentinel.
				logger.Error("model stream interrupted", "error", res.err, "deltas", deltas)
				writeEvent(w, streamError{Error: ErrorResponse{Error: "model stream interrupted"}})
				flusher.Flush()
				return
			}
			if res.msg == nil || res.msg.Content == "" {
				continue
			}
			delta := chunkDelta{Content: res.msg.Content}
			if deltas == 0 {
				delta.Role = string(schema.Assistant)
			}
			deltas++
			writeEvent(w, chatChunk{
				ID: completionID, Object: "chat.completion.chunk", Created: created,
				Choices: []chunkChoice{{Delta: delta}},
			})
			flusher.Flush()
		}
	}
}

// buildModelInput validates the conversation and maps it to model messages.
// A leading system message is appended to the configured base prompt.
func (s *Server) buildModelInput(in []ChatMessage) ([]*schema.Message, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("messages is required")
	}

	system := s.config.SystemPrompt
	rest := in
	if in[0].Role == string(schema.System) {
		system += in[0].Content
		rest = in[1:]
	}
	if len(rest) == 0 || rest[len(rest)-1].Role != string(schema.User) {
		return nil, fmt.Errorf("last message must have role user")
	}

	offset := len(in) - len(rest)
	out := make([]*schema.Message, 0, len(rest)+1)
	if strings.TrimSpace(system) != "" {
		out = append(out, schema.SystemMessage(system))
	}
	for j, m := range rest {
		i := j + offset
		switch m.Role {
		case string(schema.User):
			if strings.TrimSpace(m.Content) == "" {
				return nil, fmt.Errorf("messages[%d]: content is required", i)
			}
			out = append(out, schema.UserMessage(m.Content))
		case string(schema.Assistant):
			out = append(out, schema.AssistantMessage(m.Content, nil))
		case string(schema.System):
			return nil, fmt.Errorf("messages[%d]: system message must come first", i)
		default:
			return nil, fmt.Errorf("messages[%d]: unknown role %q", i, m.Role)
		}
	}
	return out, nil
}

func writeEvent(w io.Writer, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
