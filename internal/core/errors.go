package core

import "fmt"

// SessionError represents a failure of a session operation. It is never
// returned across the public session surface; it lands in the session's
// observable error slot so the UI always has a defined state to render.
type SessionError struct {
	Op      string // "open", "send", "confirm", "cancel"
	Message string
	Err     error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %s", e.Op, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// ReconcileError represents a failure to refresh an itinerary from the
// authoritative store after a confirmed change.
type ReconcileError struct {
	ItineraryID string
	Message     string
	Err         error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile %s: %s", e.ItineraryID, e.Message)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid or unreadable configuration.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
