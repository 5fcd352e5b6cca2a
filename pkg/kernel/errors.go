package kernel

import (
	"errors"
	"fmt"
)

// Recoverable failures reported to callers.
var (
	ErrTableFull        = errors.New("process table full")
	ErrNoChildren       = errors.New("no children")
	ErrKilled           = errors.New("process killed")
	ErrNoSuchProcess    = errors.New("no such process")
	ErrBadAddress       = errors.New("bad user address")
	ErrTooManyFiles     = errors.New("too many open files")
	ErrBadDescriptor    = errors.New("bad file descriptor")
	ErrHalted           = errors.New("kernel halted")
	ErrRetired          = errors.New("context retired")
	ErrDetached         = errors.New("context detached by halt")
	ErrNotBooted        = errors.New("kernel not booted")
	ErrAlreadyBooted    = errors.New("kernel already booted")
	ErrAlreadyRunning   = errors.New("kernel already running")
	ErrInvalidConfig    = errors.New("invalid kernel configuration")
	ErrNilCollaborators = errors.New("address spaces and file system are required")
)

// FatalError is raised when a kernel invariant is found broken. It is never
// returned from a system call: the kernel halts and Run reports it.
type FatalError struct {
	Op string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("kernel panic: %s", e.Op)
}

func fatal(op string) {
	panic(&FatalError{Op: op})
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
