package agent

import "fmt"

// AgentError represents an error from the agent service client.
type AgentError struct {
	// Type categorizes the error
	Type string

	// Message is a human-readable error message
	Message string

	// Code is the HTTP status code (if applicable)
	Code int

	// Err is the underlying error
	Err error
}

// Error types.
const (
	ErrorTypeNetwork  = "network"
	ErrorTypeAPI      = "api"
	ErrorTypeParse    = "parse"
	ErrorTypeProtocol = "protocol"
	ErrorTypeTimeout  = "timeout"
)

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("agent %s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("agent %s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a network error.
func NewNetworkError(err error) *AgentError {
	return &AgentError{
		Type:    ErrorTypeNetwork,
		Message: "Failed to reach the agent service. Check your network connection.",
		Err:     err,
	}
}

// NewAPIError creates an API error with status code.
func NewAPIError(code int, message string) *AgentError {
	return &AgentError{
		Type:    ErrorTypeAPI,
		Code:    code,
		Message: fmt.Sprintf("agent service error: %s", message),
	}
}

// NewParseError creates a parse error.
func NewParseError(message string, err error) *AgentError {
	return &AgentError{
		Type:    ErrorTypeParse,
		Message: fmt.Sprintf("failed to parse agent response: %s", message),
		Err:     err,
	}
}

// NewProtocolError creates a protocol error for a malformed combined-state
// response. Treated like a transport failure by the session: the system must
// not proceed as if no confirmation were pending.
func NewProtocolError(message string, err error) *AgentError {
	return &AgentError{
		Type:    ErrorTypeProtocol,
		Message: fmt.Sprintf("agent state violates the HIL contract: %s", message),
		Err:     err,
	}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError() *AgentError {
	return &AgentError{
		Type:    ErrorTypeTimeout,
		Message: "Request timed out. The agent may be under heavy load.",
	}
}
