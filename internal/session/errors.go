package session

import "fmt"

// SessionNotFoundError indicates no live session exists for an ID.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.ID)
}

// InvalidStateError indicates an operation was attempted in a state that does
// not permit it.
type InvalidStateError struct {
	ID        string
	State     State
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session %s: cannot %s in state %s", e.ID, e.Operation, e.State)
}

// NotCompletedError indicates feedback was requested before the interview
// finished.
type NotCompletedError struct {
	ID    string
	State State
}

func (e *NotCompletedError) Error() string {
	return fmt.Sprintf("session %s is not completed (state %s); feedback is available after the final round", e.ID, e.State)
}

// SessionBusyError indicates another request is already mutating the session.
type SessionBusyError struct {
	ID string
}

func (e *SessionBusyError) Error() string {
	return fmt.Sprintf("session %s has a request in flight", e.ID)
}
