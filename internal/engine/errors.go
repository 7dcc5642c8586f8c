package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected during engine execution.
//
// Runtime errors include:
//   - Contract violations: sink shape or parameter lengths disagree with the model
//   - Lookup misses: a nodal type or parent-value combination has no table entry
//   - Query errors: unknown operator, unresolvable operand, empty query
//   - Capacity: the causal-type space does not fit the configured limit
//
// All runtime errors are fatal for the call that returned them. The engine
// never retries and leaves caller-owned sinks in an unspecified state.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Node identifies the affected node, if any.
	Node string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeTypeCountMismatch indicates a sink or incidence matrix whose
	// causal-type count differs from the model's.
	ErrCodeTypeCountMismatch RuntimeErrorCode = "TYPE_COUNT_MISMATCH"

	// ErrCodeLengthMismatch indicates vectors of different lengths.
	ErrCodeLengthMismatch RuntimeErrorCode = "LENGTH_MISMATCH"

	// ErrCodeUnknownNode indicates an intervention or query names no node.
	ErrCodeUnknownNode RuntimeErrorCode = "UNKNOWN_NODE"

	// ErrCodeLookupMiss indicates a missing table row or parent-value column.
	ErrCodeLookupMiss RuntimeErrorCode = "LOOKUP_MISS"

	// ErrCodeUnknownOperator indicates an unsupported clause operator.
	ErrCodeUnknownOperator RuntimeErrorCode = "UNKNOWN_OPERATOR"

	// ErrCodeBadOperand indicates an operand that is neither a node nor an integer.
	ErrCodeBadOperand RuntimeErrorCode = "BAD_OPERAND"

	// ErrCodeBadQuery indicates a query with no clauses.
	ErrCodeBadQuery RuntimeErrorCode = "BAD_QUERY"

	// ErrCodeCapacityExceeded indicates the causal-type space is too large.
	ErrCodeCapacityExceeded RuntimeErrorCode = "CAPACITY_EXCEEDED"

	// ErrCodeCycleDetected indicates a cyclic parent graph.
	ErrCodeCycleDetected RuntimeErrorCode = "CYCLE_DETECTED"

	// ErrCodeInvalidModel indicates a structurally unusable model.
	ErrCodeInvalidModel RuntimeErrorCode = "INVALID_MODEL"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode returns true if err is, or wraps, a RuntimeError with the code.
func HasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsLookupMiss returns true if the error is a table lookup miss.
// Uses errors.As to handle wrapped errors.
func IsLookupMiss(err error) bool {
	return HasCode(err, ErrCodeLookupMiss)
}

// IsCycleError returns true if the error is a cycle detection error.
func IsCycleError(err error) bool {
	return HasCode(err, ErrCodeCycleDetected)
}

// IsCapacityError returns true if the type space exceeds capacity.
// Matches both RuntimeError with ErrCodeCapacityExceeded and
// TypeSpaceExceededError.
func IsCapacityError(err error) bool {
	if HasCode(err, ErrCodeCapacityExceeded) {
		return true
	}
	var te *TypeSpaceExceededError
	return errors.As(err, &te)
}

func newError(code RuntimeErrorCode, node, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Node: node, Message: fmt.Sprintf(format, args...)}
}

// NewTypeCountError creates a RuntimeError for a sink of the wrong shape.
func NewTypeCountError(what string, got, want int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTypeCountMismatch,
		Message: fmt.Sprintf("%s has %d causal types, model has %d", what, got, want),
		Details: map[string]string{
			"got":  fmt.Sprintf("%d", got),
			"want": fmt.Sprintf("%d", want),
		},
	}
}

// NewLengthError creates a RuntimeError for vectors of different lengths.
func NewLengthError(what string, got, want int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeLengthMismatch,
		Message: fmt.Sprintf("%s has length %d, want %d", what, got, want),
		Details: map[string]string{
			"got":  fmt.Sprintf("%d", got),
			"want": fmt.Sprintf("%d", want),
		},
	}
}
