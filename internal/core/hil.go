package core

import (
	"context"

	"wayfare/pkg/schema"
)

// HILRecord is a pending human-in-the-loop confirmation. It exists exactly
// while the session is in open-awaiting-confirmation; confirming or
// cancelling always clears it. The confirmation prompt is rendered from the
// record, never injected into message history.
type HILRecord struct {
	ConfirmationMessage string
	Summary             string
	ProposedChanges     *schema.Itinerary
}

// Synthetic feedback shown in the conversation once the user decides.
const (
	feedbackConfirmed = "Changes confirmed."
	feedbackCancelled = "Changes cancelled."
)

// Fixed system-level follow-up turns, so the agent can react to the
// decision. The cancel sentinel is a natural-language convention, not a
// structured signal the agent contractually honors.
const (
	followUpConfirmed = "The user confirmed the proposed changes. Apply them to the itinerary and continue."
	followUpCancelled = "The user cancelled the proposed changes. Keep the itinerary as it is and continue."
)

// applyThreadState reconciles the post-stream combined agent state into the
// session: a set HIL flag installs the confirmation record, anything else
// clears a stale one. Message history is left untouched. Must hold mu.
func (s *Session) applyThreadState(ts *schema.ThreadState) {
	s.thinking = false

	if ts.HIL.IsHIL {
		s.hil = &HILRecord{
			ConfirmationMessage: ts.HIL.ConfirmationMessage,
			Summary:             ts.HIL.Summary,
			ProposedChanges:     ts.HIL.ProposedChanges,
		}
		s.setState(StateAwaitingConfirmation)
		return
	}

	s.hil = nil
	s.setState(StateOpenIdle)
}

// Confirm accepts the pending confirmation: the feedback message lands and
// the record clears synchronously, then a follow-up turn streams, then the
// itinerary is refreshed from the authoritative store.
func (s *Session) Confirm(ctx context.Context) {
	s.resolveHIL(ctx, true)
}

// Cancel rejects the pending confirmation. Symmetric to Confirm except no
// itinerary refresh happens: nothing was merged server-side.
func (s *Session) Cancel(ctx context.Context) {
	s.resolveHIL(ctx, false)
}

func (s *Session) resolveHIL(ctx context.Context, confirmed bool) {
	s.mu.Lock()
	if s.state != StateAwaitingConfirmation || s.hil == nil {
		s.logger.Warn("confirm/cancel rejected", "state", string(s.state))
		s.mu.Unlock()
		return
	}

	feedback, followUp, op := feedbackCancelled, followUpCancelled, "cancel"
	if confirmed {
		feedback, followUp, op = feedbackConfirmed, followUpConfirmed, "confirm"
	}

	// Feedback is appended and the record cleared before any suspension
	// point, so the UI never shows a stale confirmation prompt while the
	// follow-up is in flight. Neither is rolled back if the follow-up
	// fails: the user's decision was already acted upon.
	s.appendMessage(schema.RoleAI, feedback)
	s.hil = nil
	aiIdx := s.appendMessage(schema.RoleAI, "")
	gen := s.gen
	threadID := s.itineraryID
	s.setState(StateOpenStreaming)
	s.mu.Unlock()

	s.logger.Info("confirmation resolved", "itinerary_id", threadID, "confirmed", confirmed)

	ok := s.runTurn(ctx, gen, threadID, aiIdx, followUp, op)
	if !confirmed || !ok {
		return
	}

	// The backend has merged the change; re-fetch the authoritative
	// itinerary rather than applying the diff locally.
	it, err := s.store.RefreshItinerary(ctx, threadID)
	if err != nil {
		s.fail(gen, op, "itinerary refresh failed", &ReconcileError{
			ItineraryID: threadID,
			Message:     "authoritative refresh after confirmation",
			Err:         err,
		})
		return
	}

	s.withGen(gen, func() {
		s.itinerary = it
	})
}
