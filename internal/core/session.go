package core

import (
	"context"
	"sync"

	"wayfare/internal/agent"
	"wayfare/internal/pubsub"
	"wayfare/internal/store"
	"wayfare/pkg/schema"
)

// State is the session lifecycle tag. Exactly one state holds at a time.
type State string

const (
	StateClosed               State = "closed"
	StateOpenInitializing     State = "open-initializing"
	StateOpenIdle             State = "open-idle"
	StateOpenStreaming        State = "open-streaming"
	StateAwaitingConfirmation State = "open-awaiting-confirmation"
	StateOpenError            State = "open-error"
)

// StateChange is published to subscribers on every transition. Consumers
// read current session state through the accessors; the event only signals
// that something changed.
type StateChange struct {
	From State
	To   State
}

// ItineraryStore is the store surface the session depends on, satisfied by
// *store.Client.
type ItineraryStore interface {
	GetItinerary(ctx context.Context, id string) (*schema.Itinerary, error)
	RefreshItinerary(ctx context.Context, id string) (*schema.Itinerary, error)
}

// Session owns one conversation thread bound to one itinerary. The itinerary
// ID doubles as the thread ID; at most one thread is live per session object,
// and opening a new thread tears the previous one down completely.
//
// Late callbacks from a torn-down thread are detected by generation tagging:
// every Open and Close bumps the generation, and every asynchronous
// continuation re-checks it under the lock before touching session state.
// The underlying transport is never cancelled; stale deliveries are simply
// discarded.
type Session struct {
	agent   agent.Service
	store   ItineraryStore
	logger  Logger
	broker  *pubsub.Broker[StateChange]
	lookups *store.Coalescer

	mu          sync.Mutex
	gen         uint64
	state       State
	itineraryID string
	messages    []schema.Message
	hil         *HILRecord
	lastErr     error
	thinking    bool
	itinerary   *schema.Itinerary
}

// NewSession creates a closed session.
func NewSession(agentSvc agent.Service, itineraries ItineraryStore, logger Logger) *Session {
	if logger == nil {
		logger = NopLogger()
	}
	return &Session{
		agent:   agentSvc,
		store:   itineraries,
		logger:  logger,
		broker:  pubsub.NewBroker[StateChange](),
		lookups: store.NewCoalescer(),
		state:   StateClosed,
	}
}

// Open binds the session to an itinerary and fetches prior thread history.
// Prior thread state is cleared unconditionally, even when reopening the
// same itinerary. Failure lands in the error slot, never in a panic or
// return value.
func (s *Session) Open(ctx context.Context, itineraryID string) {
	s.mu.Lock()
	s.reset()
	s.itineraryID = itineraryID
	gen := s.gen
	s.setState(StateOpenInitializing)
	s.mu.Unlock()

	s.logger.Info("thread opened", "itinerary_id", itineraryID)

	history, err := store.FetchOnceTyped(s.lookups, "thread:"+itineraryID+":history", func() ([]schema.Message, error) {
		return s.agent.History(ctx, itineraryID)
	})
	if err != nil {
		s.fail(gen, "open", "history fetch failed", err)
		return
	}

	s.withGen(gen, func() {
		s.messages = append([]schema.Message(nil), history...)
		s.setState(StateOpenIdle)
	})
}

// Close discards the thread. An in-flight stream is not aborted at the
// transport level; its late callbacks are discarded by the generation check.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.setState(StateClosed)
}

// Send posts a human turn and streams the reply. Accepted from open-idle and
// open-error (retry); ignored while a turn is in flight or a confirmation is
// pending, because input is blocked there.
func (s *Session) Send(ctx context.Context, text string) {
	s.mu.Lock()
	if s.state != StateOpenIdle && s.state != StateOpenError {
		s.logger.Warn("send rejected", "state", string(s.state))
		s.mu.Unlock()
		return
	}

	s.appendMessage(schema.RoleHuman, text)
	aiIdx := s.appendMessage(schema.RoleAI, "")
	s.thinking = true
	gen := s.gen
	threadID := s.itineraryID
	s.setState(StateOpenStreaming)
	s.mu.Unlock()

	s.runTurn(ctx, gen, threadID, aiIdx, text, "send")
}

// runTurn streams one turn into the AI message at aiIdx, then reconciles the
// combined agent state. Returns false when the turn failed or was superseded
// by a newer generation.
func (s *Session) runTurn(ctx context.Context, gen uint64, threadID string, aiIdx int, text, op string) bool {
	err := s.agent.StreamTurn(ctx, threadID, text, func(fragment string) {
		s.withGen(gen, func() {
			// The first fragment ends the "agent is thinking" phase.
			s.thinking = false
			s.messages[aiIdx].Content += fragment
		})
	})
	if err != nil {
		s.fail(gen, op, "stream failed", err)
		return false
	}

	state, err := store.FetchOnceTyped(s.lookups, "thread:"+threadID+":state", func() (*schema.ThreadState, error) {
		return s.agent.ThreadState(ctx, threadID)
	})
	if err != nil {
		s.fail(gen, op, "combined state fetch failed", err)
		return false
	}

	return s.withGen(gen, func() {
		s.applyThreadState(state)
	})
}

// reset clears all thread state and invalidates outstanding continuations.
// Must hold mu.
func (s *Session) reset() {
	s.gen++
	s.itineraryID = ""
	s.messages = nil
	s.hil = nil
	s.lastErr = nil
	s.thinking = false
	s.itinerary = nil
}

// setState transitions and notifies subscribers. A successful transition
// clears the error slot. Must hold mu.
func (s *Session) setState(to State) {
	from := s.state
	s.state = to
	if to == StateOpenIdle || to == StateAwaitingConfirmation {
		s.lastErr = nil
	}
	s.broker.Publish(StateChange{From: from, To: to})
}

// withGen runs fn under the lock only if the session generation still
// matches; stale continuations are discarded.
func (s *Session) withGen(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return false
	}
	fn()
	return true
}

// fail parks the session in open-error, preserving message history.
func (s *Session) fail(gen uint64, op, msg string, err error) {
	applied := s.withGen(gen, func() {
		s.lastErr = &SessionError{Op: op, Message: msg, Err: err}
		s.thinking = false
		s.hil = nil
		s.setState(StateOpenError)
	})

	if applied {
		s.logger.Error("session operation failed", "op", op, "error", err.Error())
	} else {
		s.logger.Debug("stale failure discarded", "op", op, "error", err.Error())
	}
}

// appendMessage appends a message and returns its index. Must hold mu.
func (s *Session) appendMessage(role, content string) int {
	id, _ := schema.NewMessageID()
	s.messages = append(s.messages, schema.Message{ID: id, Role: role, Content: content})
	return len(s.messages) - 1
}

// Subscribe registers for state-change notifications. The channel is closed
// when ctx is cancelled.
func (s *Session) Subscribe(ctx context.Context) <-chan StateChange {
	return s.broker.Subscribe(ctx)
}

// State returns the current session state tag.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ItineraryID returns the bound itinerary (and thread) ID, empty when closed.
func (s *Session) ItineraryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itineraryID
}

// Messages returns a copy of the ordered message history.
func (s *Session) Messages() []schema.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.Message(nil), s.messages...)
}

// HIL returns the pending confirmation record, or nil. Non-nil exactly when
// the session state is open-awaiting-confirmation.
func (s *Session) HIL() *HILRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hil == nil {
		return nil
	}
	record := *s.hil
	return &record
}

// Err returns the last session error, or nil. Cleared automatically on the
// next successful state transition.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Thinking reports whether a turn is in flight with no token received yet.
func (s *Session) Thinking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thinking
}

// Itinerary returns the last authoritative itinerary fetched after a
// confirmed change, or nil.
func (s *Session) Itinerary() *schema.Itinerary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itinerary
}
