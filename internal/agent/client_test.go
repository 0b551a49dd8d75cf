package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wayfare/pkg/schema"
)

func TestNewClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config := &Config{
			BaseURL: "https://agent.test.com",
			APIKey:  "test-key",
		}

		client, err := NewClient(config)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if client == nil {
			t.Fatal("expected client, got nil")
		}

		if client.config.Timeout != 30*time.Second {
			t.Errorf("expected default timeout 30s, got %v", client.config.Timeout)
		}

		if client.config.StreamTimeout != 5*time.Minute {
			t.Errorf("expected default stream timeout 5m, got %v", client.config.StreamTimeout)
		}
	})

	t.Run("invalid config - missing base URL", func(t *testing.T) {
		config := &Config{APIKey: "test-key"}

		_, err := NewClient(config)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("invalid config - missing API key", func(t *testing.T) {
		config := &Config{BaseURL: "https://agent.test.com"}

		_, err := NewClient(config)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestClient_StreamTurn(t *testing.T) {
	t.Run("tokens arrive in order", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "POST" {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/threads/trip-1/turns") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}

			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: Sure\n\n")
			fmt.Fprint(w, "data: , \n\n")
			fmt.Fprint(w, "data: done.\n\n")
			fmt.Fprint(w, "event: done\n\n")
		}))

		var got string
		err := client.StreamTurn(context.Background(), "trip-1", "make it 9 days", func(fragment string) {
			got += fragment
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got != "Sure, done." {
			t.Errorf("expected %q, got %q", "Sure, done.", got)
		}
	})

	t.Run("zero tokens is a valid stream", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "event: done\n\n")
		}))

		calls := 0
		err := client.StreamTurn(context.Background(), "trip-1", "hi", func(string) { calls++ })
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls != 0 {
			t.Errorf("expected 0 token callbacks, got %d", calls)
		}
	})

	t.Run("stream error event keeps partial content", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "data: partial\n\n")
			fmt.Fprint(w, "event: error\n")
			fmt.Fprint(w, "data: model overloaded\n\n")
		}))

		var got string
		err := client.StreamTurn(context.Background(), "trip-1", "hi", func(fragment string) {
			got += fragment
		})
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		agentErr, ok := err.(*AgentError)
		if !ok {
			t.Fatalf("expected *AgentError, got %T", err)
		}
		if agentErr.Type != ErrorTypeAPI {
			t.Errorf("expected API error, got %s", agentErr.Type)
		}

		// Partial content is a visible, expected artifact of interrupted
		// streams; it is never rolled back.
		if got != "partial" {
			t.Errorf("expected %q, got %q", "partial", got)
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream unavailable")
		}))

		err := client.StreamTurn(context.Background(), "trip-1", "hi", func(string) {
			t.Error("no token callback expected on HTTP failure")
		})
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		agentErr, ok := err.(*AgentError)
		if !ok {
			t.Fatalf("expected *AgentError, got %T", err)
		}
		if agentErr.Code != http.StatusBadGateway {
			t.Errorf("expected code 502, got %d", agentErr.Code)
		}
	})

	t.Run("network failure", func(t *testing.T) {
		client, err := NewClient(&Config{
			BaseURL: "http://127.0.0.1:1", // nothing listens here
			APIKey:  "test-key",
		})
		if err != nil {
			t.Fatalf("create client: %v", err)
		}

		err = client.StreamTurn(context.Background(), "trip-1", "hi", func(string) {})
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		agentErr, ok := err.(*AgentError)
		if !ok {
			t.Fatalf("expected *AgentError, got %T", err)
		}
		if agentErr.Type != ErrorTypeNetwork {
			t.Errorf("expected network error, got %s", agentErr.Type)
		}
	})
}

func TestClient_ThreadState(t *testing.T) {
	t.Run("no HIL", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/threads/trip-1/state") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(schema.ThreadState{
				Messages: []schema.Message{
					{ID: "MSG-1", Role: schema.RoleHuman, Content: "make it 9 days"},
					{ID: "MSG-2", Role: schema.RoleAI, Content: "Sure, done."},
				},
			})
		}))

		state, err := client.ThreadState(context.Background(), "trip-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(state.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(state.Messages))
		}
		if state.HIL.IsHIL {
			t.Error("expected no HIL flag")
		}
	})

	t.Run("HIL with full descriptor", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(schema.ThreadState{
				HIL: schema.HILState{
					IsHIL:               true,
					ConfirmationMessage: "Apply 9-day plan?",
					Summary:             "Extend the trip to 9 days",
					ProposedChanges:     &schema.Itinerary{ID: "trip-1"},
				},
			})
		}))

		state, err := client.ThreadState(context.Background(), "trip-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !state.HIL.IsHIL {
			t.Fatal("expected HIL flag")
		}
		if state.HIL.ConfirmationMessage != "Apply 9-day plan?" {
			t.Errorf("unexpected confirmation message: %q", state.HIL.ConfirmationMessage)
		}
	})

	t.Run("HIL with missing fields is a protocol error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(schema.ThreadState{
				HIL: schema.HILState{IsHIL: true},
			})
		}))

		_, err := client.ThreadState(context.Background(), "trip-1")
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		agentErr, ok := err.(*AgentError)
		if !ok {
			t.Fatalf("expected *AgentError, got %T", err)
		}
		if agentErr.Type != ErrorTypeProtocol {
			t.Errorf("expected protocol error, got %s", agentErr.Type)
		}
	})

	t.Run("malformed JSON is a parse error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "{not json")
		}))

		_, err := client.ThreadState(context.Background(), "trip-1")
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		agentErr, ok := err.(*AgentError)
		if !ok {
			t.Fatalf("expected *AgentError, got %T", err)
		}
		if agentErr.Type != ErrorTypeParse {
			t.Errorf("expected parse error, got %s", agentErr.Type)
		}
	})
}

func TestClient_History(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/threads/trip-1/history") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(schema.ThreadState{
			Messages: []schema.Message{
				{ID: "MSG-1", Role: schema.RoleHuman, Content: "hello"},
			},
		})
	}))

	messages, err := client.History(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "hello" {
		t.Errorf("unexpected content: %q", messages[0].Content)
	}
}
