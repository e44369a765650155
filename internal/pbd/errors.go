package pbd

import (
	"errors"
	"fmt"
)

// Domain errors for engine and backend operations.
var (
	// ErrAlreadyInitialized indicates a second upload into a live engine.
	ErrAlreadyInitialized = errors.New("pbd: engine already initialized")

	// ErrNotInitialized indicates a dispatch before any upload.
	ErrNotInitialized = errors.New("pbd: engine not initialized")

	// ErrShapeMismatch indicates a transfer that does not match the declared buffer shape.
	ErrShapeMismatch = errors.New("pbd: buffer shape mismatch")

	// ErrUnknownBackend indicates a backend name with no registered implementation.
	ErrUnknownBackend = errors.New("pbd: unknown compute backend")

	// ErrInvalidState indicates NaN or Inf in the bead buffer after a frame.
	ErrInvalidState = errors.New("pbd: invalid state (NaN or Inf detected)")
)

// Engine error codes reported as op(code).
const (
	CodeAllocate = -4
	CodeUpload   = -5
	CodeDispatch = -6
	CodeReadback = -7
	CodeState    = -8
)

// ConfigError rejects run parameters before any simulation work starts.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// EngineError wraps a backend failure with the operation that raised it.
type EngineError struct {
	Op      string
	Code    int
	Wrapped error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s(%d)", e.Op, e.Code)
}

func (e *EngineError) Unwrap() error {
	return e.Wrapped
}
