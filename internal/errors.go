package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is the root of every misuse error: operating on a
	// destroyed actor, or scheduling work with no open session.
	ErrInvalidState = errors.New("proact: invalid state")

	ErrNoSession       = fmt.Errorf("%w: no active scheduler session", ErrInvalidState)
	ErrUnknownLane     = fmt.Errorf("%w: unknown lane", ErrInvalidState)
	ErrActorDestroyed  = fmt.Errorf("%w: actor destroyed", ErrInvalidState)
	ErrActorFailed     = fmt.Errorf("%w: actor failed during setup", ErrInvalidState)
	ErrReadOnly        = fmt.Errorf("%w: derived collection is read-only", ErrInvalidState)
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrInvalidState)

	// ErrSetup wraps the error returned by an actor setup hook.
	ErrSetup = errors.New("proact: actor setup failed")

	ErrInvalidConfig = errors.New("proact: invalid config")
)

// ListenerError tags a failure raised by a user callback while a queue was
// draining. Once tagged, an error is never routed to a handler a second time
// when it travels through an enclosing drain.
type ListenerError struct {
	Lane     string
	Callback string
	Err      error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("proact: listener %q on lane %q: %v", e.Callback, e.Lane, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking callback.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}

	return &PanicError{Value: r}
}
