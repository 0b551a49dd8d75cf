package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wayfare/pkg/schema"
)

// TokenFunc receives one streamed text fragment. Fragments arrive in strict
// order; no call is made after StreamTurn returns.
type TokenFunc func(fragment string)

// Service is the agent boundary consumed by the session core. The agent is
// an opaque remote collaborator: one streamed turn endpoint plus two state
// reads.
type Service interface {
	// StreamTurn posts a human turn for the thread and delivers the reply
	// token-by-token. On failure no further tokens are emitted; fragments
	// already delivered are never rolled back.
	StreamTurn(ctx context.Context, threadID, message string, onToken TokenFunc) error

	// ThreadState fetches the combined agent state: the authoritative
	// message list plus the HIL descriptor for the last turn.
	ThreadState(ctx context.Context, threadID string) (*schema.ThreadState, error)

	// History fetches prior agent state for the thread, used on open before
	// any turn is sent.
	History(ctx context.Context, threadID string) ([]schema.Message, error)
}

// Client is the HTTP client for the agent service.
type Client struct {
	config *Config
	http   *http.Client
	stream *http.Client
}

// NewClient creates a new agent service client.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.SetDefaults()

	return &Client{
		config: config,
		http: &http.Client{
			Timeout: config.Timeout,
		},
		// Streams outlive the regular request timeout.
		stream: &http.Client{
			Timeout: config.StreamTimeout,
		},
	}, nil
}

// turnRequest is the body of a streamed turn POST.
type turnRequest struct {
	Message string `json:"message"`
}

// StreamTurn implements Service.
func (c *Client) StreamTurn(ctx context.Context, threadID, message string, onToken TokenFunc) error {
	body, err := json.Marshal(turnRequest{Message: message})
	if err != nil {
		return fmt.Errorf("marshal turn request: %w", err)
	}

	endpoint := c.config.BaseURL + "/threads/" + url.PathEscape(threadID) + "/turns"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := c.stream.Do(req)
	if err != nil {
		slog.Error("agent turn request failed",
			"thread_id", threadID,
			"error", err.Error(),
		)
		return NewNetworkError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close stream body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		var errBody bytes.Buffer
		if _, err := errBody.ReadFrom(resp.Body); err != nil {
			return NewAPIError(resp.StatusCode, fmt.Sprintf("status %d (failed to read error body)", resp.StatusCode))
		}
		return NewAPIError(resp.StatusCode, errBody.String())
	}

	tokens, err := c.consumeStream(resp.Body, onToken)

	slog.Info("agent turn stream completed",
		"thread_id", threadID,
		"tokens", tokens,
		"duration", time.Since(start),
		"failed", err != nil,
	)

	return err
}

// consumeStream reads an SSE-style body line by line. Each "data:" line is
// one token fragment; "event: done" terminates the stream; "event: error"
// turns the following data line into the failure message.
func (c *Client) consumeStream(body io.Reader, onToken TokenFunc) (int, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tokens := 0
	event := ""

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			event = ""

		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			if event == "done" {
				return tokens, nil
			}

		case strings.HasPrefix(line, "data:"):
			data := strings.TrimPrefix(line, "data:")
			// SSE strips a single leading space after the colon.
			data = strings.TrimPrefix(data, " ")

			if event == "error" {
				return tokens, NewAPIError(0, data)
			}

			onToken(data)
			tokens++
		}
	}

	if err := scanner.Err(); err != nil {
		return tokens, NewNetworkError(err)
	}

	// EOF without a done event: the server closed the stream cleanly, treat
	// it as completion.
	return tokens, nil
}

// ThreadState implements Service.
func (c *Client) ThreadState(ctx context.Context, threadID string) (*schema.ThreadState, error) {
	var state schema.ThreadState
	endpoint := c.config.BaseURL + "/threads/" + url.PathEscape(threadID) + "/state"
	if err := c.getJSON(ctx, endpoint, &state); err != nil {
		return nil, err
	}

	if err := schema.ValidateHILState(&state.HIL); err != nil {
		return nil, NewProtocolError(err.Error(), err)
	}

	return &state, nil
}

// History implements Service.
func (c *Client) History(ctx context.Context, threadID string) ([]schema.Message, error) {
	var state schema.ThreadState
	endpoint := c.config.BaseURL + "/threads/" + url.PathEscape(threadID) + "/history"
	if err := c.getJSON(ctx, endpoint, &state); err != nil {
		return nil, err
	}
	return state.Messages, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("agent state request failed",
			"url", endpoint,
			"error", err.Error(),
		)
		return NewNetworkError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	slog.Debug("agent state request completed",
		"url", endpoint,
		"status_code", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		var errBody bytes.Buffer
		if _, err := errBody.ReadFrom(resp.Body); err != nil {
			return NewAPIError(resp.StatusCode, fmt.Sprintf("status %d (failed to read error body)", resp.StatusCode))
		}
		return NewAPIError(resp.StatusCode, errBody.String())
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewParseError("invalid JSON body", err)
	}

	return nil
}
