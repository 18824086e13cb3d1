package errors

import (
	"errors"
	"fmt"

	"github.com/chime-audio/chime/internal/core"
)

// Sentinel errors for common failure scenarios.
var (
	ErrNotFound      = errors.New("not found")
	ErrRateLimited   = errors.New("rate limited")
	ErrTimeout       = errors.New("request timeout")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrQueueEmpty    = errors.New("queue is empty")
	ErrNoSession     = errors.New("no saved session")
	ErrShuttingDown  = errors.New("player is shutting down")
)

// ResolutionError reports a catalog lookup or parse failure while
// building a queue. The original entity reference is attached; playback
// state is never mutated when one of these is returned.
type ResolutionError struct {
	Entity core.EntityRef
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Entity, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolution wraps err as a ResolutionError for the given entity.
func Resolution(entity core.EntityRef, err error) error {
	return &ResolutionError{Entity: entity, Err: err}
}

// PipelineErrorKind classifies adapter-reported failures.
type PipelineErrorKind string

const (
	// PipelineDecode is a transient decode fault, eligible for exactly
	// one automatic retry before being treated as fatal for the entry.
	PipelineDecode   PipelineErrorKind = "decode"
	PipelineNetwork  PipelineErrorKind = "network"
	PipelineInternal PipelineErrorKind = "internal"
)

// PipelineError reports a failure from the decode/render engine.
type PipelineError struct {
	Kind PipelineErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Transient returns true if the error is eligible for an automatic retry.
func (e *PipelineError) Transient() bool {
	return e.Kind == PipelineDecode || e.Kind == PipelineNetwork
}

// Pipeline wraps err as a PipelineError of the given kind.
func Pipeline(kind PipelineErrorKind, err error) error {
	return &PipelineError{Kind: kind, Err: err}
}

// CommandRejected reports a malformed or precondition-violating command.
// No state change accompanies one of these.
type CommandRejected struct {
	Command string
	Reason  string
}

func (e *CommandRejected) Error() string {
	return fmt.Sprintf("command %s rejected: %s", e.Command, e.Reason)
}

// Rejected builds a CommandRejected error.
func Rejected(command, format string, args ...any) error {
	return &CommandRejected{Command: command, Reason: fmt.Sprintf(format, args...)}
}

// PersistenceError reports a session store read/write failure. Playback
// continues in memory when one occurs; it is logged, not fatal.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError for the given operation.
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// As is a convenience re-export so callers need only one errors import.
func As(err error, target any) bool { return errors.As(err, target) }

// Is reports whether err matches target.
func Is(err, target error) bool { return errors.Is(err, target) }
