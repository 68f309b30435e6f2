package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/airaware/internal/sse"
)

// ErrNoResponseBody is returned when a successful response carries no body
// to stream from.
var ErrNoResponseBody = errors.New("no response body")

// StatusError is returned for a non-success HTTP status. Message is the
// server's {error} text, or "Error <status>" when none could be read.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Streamer sends a conversation and streams the reply as text fragments.
type Streamer interface {
	Stream(ctx context.Context, messages []Turn, onDelta sse.DeltaFunc) (sse.Outcome, error)
}

type chatRequest struct {
	Messages []Turn `json:"messages"`
}

// Client posts conversations to the chat endpoint.
type Client struct {
	endpoint   string
	credential string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a chat endpoint client. The request deadline comes from
// the caller's context; a streamed reply may legitimately take minutes.
func NewClient(endpoint, credential string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		credential: credential,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Stream posts messages and hands every text fragment of the streamed reply
// to onDelta in arrival order.
func (c *Client) Stream(ctx context.Context, messages []Turn, onDelta sse.DeltaFunc) (sse.Outcome, error) {
	body, err := json.Marshal(chatRequest{Messages: messages})
	if err != nil {
		return sse.Outcome{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return sse.Outcome{}, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Request-Id", requestID)
	if c.credential != "" {
		req.Header.Set("Authorization", "Bearer "+c.credential)
	}

	logger := c.logger.With("request_id", requestID)
	start := time.Now()
	logger.Debug("chat request sent", "messages", len(messages), "bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sse.Outcome{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		serr := &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, respBody)}
		logger.Warn("chat request rejected", "status", resp.StatusCode, "error", serr.Message)
		return sse.Outcome{}, serr
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return sse.Outcome{}, ErrNoResponseBody
	}

	out, err := sse.ReadDeltas(ctx, resp.Body, onDelta)
	if err != nil {
		return out, err
	}
	if out.Dropped != "" {
		logger.Debug("stream ended with undecoded data", "bytes", len(out.Dropped))
	}
	logger.Info("chat stream finished",
		"deltas", out.Deltas,
		"sentinel", out.Sentinel,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// errorMessage extracts the error text from a failure body. It accepts both
// {"error":"..."} and {"error":{"message":"..."}}.
func errorMessage(status int, body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Error, &text); err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
			return nested.Message
		}
	}
	return fmt.Sprintf("Error %d", status)
}
