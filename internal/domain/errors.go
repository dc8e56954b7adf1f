package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the moderation engine
var (
	// ErrNotFound is returned when a queue item does not exist
	ErrNotFound = errors.New("queue item not found")

	// ErrStorageUnavailable wraps infrastructure faults from the storage
	// layer. A transition that fails with it has not been applied, in whole
	// or in part; the caller may retry with backoff.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FieldViolation names one invalid or missing field in an action payload
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every payload violation found in one pass,
// not just the first.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return "invalid action payload: " + strings.Join(parts, "; ")
}

// Fields returns the names of all violated fields
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// IllegalTransitionError identifies the offending (fromState, action) pair.
// Role is set when the pair itself is legal but the acting role is not
// permitted to perform it.
type IllegalTransitionError struct {
	From   State
	Action Action
	Role   Role
}

func (e *IllegalTransitionError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("illegal transition: %s from %s not permitted for role %s", e.Action, e.From, e.Role)
	}
	return fmt.Sprintf("illegal transition: %s from %s", e.Action, e.From)
}

// TerminalStateError is returned for any action on a resolved item
type TerminalStateError struct {
	State State
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("item is in terminal state %s", e.State)
}

// VersionConflictError signals that another actor transitioned the item
// between the caller's read and write. It carries the current stored state
// and version so the caller can re-fetch and re-decide; it is never retried
// automatically.
type VersionConflictError struct {
	CurrentState   State
	CurrentVersion uint64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: item is at version %d (state %s)", e.CurrentVersion, e.CurrentState)
}
