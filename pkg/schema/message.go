package schema

// Message roles. Human messages are complete at creation; AI messages start
// empty and accumulate streamed fragments until the turn finishes.
const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// Message is one unit of conversation history within a thread.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ThreadState is the combined agent-side view of a thread: the authoritative
// message list plus the human-in-the-loop descriptor for the last turn.
type ThreadState struct {
	Messages []Message `json:"messages"`
	HIL      HILState  `json:"hil"`
}

// HILState describes a pending confirmation requested by the agent. When
// IsHIL is false the remaining fields are empty.
type HILState struct {
	IsHIL               bool       `json:"isHIL"`
	ConfirmationMessage string     `json:"confirmationMessage,omitempty"`
	Summary             string     `json:"summary,omitempty"`
	ProposedChanges     *Itinerary `json:"proposedChanges,omitempty"`
}
