package agent

import (
	"context"

	"wayfare/pkg/schema"
)

// Mock is a scriptable agent service for testing. Turns consume queued token
// scripts in order; state fetches consume queued thread states. Unscripted
// calls fall back to an empty reply and an idle state.
type Mock struct {
	// Turns is a queue of token sequences, one per streamed turn.
	Turns [][]string

	// States is a queue of combined-state responses, one per ThreadState call.
	States []*schema.ThreadState

	// HistoryMessages is returned by every History call.
	HistoryMessages []schema.Message

	// StreamErr, StateErr, HistoryErr inject failures. StreamErrAfter
	// controls how many tokens of the current script are delivered before
	// StreamErr is returned (0 means fail before any token).
	StreamErr      error
	StreamErrAfter int
	StateErr       error
	HistoryErr     error

	// Call counters.
	StreamCalls  int
	StateCalls   int
	HistoryCalls int

	// SentMessages records every message posted via StreamTurn.
	SentMessages []string
}

var _ Service = (*Mock)(nil)

// StreamTurn implements Service.
func (m *Mock) StreamTurn(ctx context.Context, threadID, message string, onToken TokenFunc) error {
	m.StreamCalls++
	m.SentMessages = append(m.SentMessages, message)

	var tokens []string
	if len(m.Turns) > 0 {
		tokens = m.Turns[0]
		m.Turns = m.Turns[1:]
	}

	if m.StreamErr != nil {
		for i, tok := range tokens {
			if i >= m.StreamErrAfter {
				break
			}
			onToken(tok)
		}
		return m.StreamErr
	}

	for _, tok := range tokens {
		onToken(tok)
	}
	return nil
}

// ThreadState implements Service.
func (m *Mock) ThreadState(ctx context.Context, threadID string) (*schema.ThreadState, error) {
	m.StateCalls++

	if m.StateErr != nil {
		return nil, m.StateErr
	}

	if len(m.States) > 0 {
		state := m.States[0]
		m.States = m.States[1:]
		return state, nil
	}

	return &schema.ThreadState{}, nil
}

// History implements Service.
func (m *Mock) History(ctx context.Context, threadID string) ([]schema.Message, error) {
	m.HistoryCalls++

	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}

	return m.HistoryMessages, nil
}
