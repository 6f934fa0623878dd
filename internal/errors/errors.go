package errors

import (
	"errors"
	"fmt"
)

// ShellError is the base interface for all shell plugin errors.
type ShellError interface {
	error
	IsShellError() bool
}

// Compile-time verification that all error types implement ShellError.
var (
	_ ShellError = (*SpawnDeniedError)(nil)
	_ ShellError = (*CommandError)(nil)
	_ ShellError = (*StdinWriteError)(nil)
	_ ShellError = (*KillError)(nil)
	_ ShellError = (*UnknownEncodingError)(nil)
	_ ShellError = (*OpenError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNoSuchChild indicates the pid does not address a live child process.
	ErrNoSuchChild = errors.New("no such child process")

	// ErrChannelClosed indicates an event arrived after the terminal event.
	ErrChannelClosed = errors.New("event channel closed")
)

// SpawnDeniedError indicates the host rejected a spawn request, e.g. because
// the program or its arguments are outside the enforced scope. The spawn is
// not retried.
type SpawnDeniedError struct {
	Program string
	Err     error
}

func (e *SpawnDeniedError) Error() string {
	return fmt.Sprintf("spawn %q denied: %v", e.Program, e.Err)
}

func (e *SpawnDeniedError) Unwrap() error {
	return e.Err
}

// IsShellError implements ShellError.
func (e *SpawnDeniedError) IsShellError() bool { return true }

// CommandError carries the message of an Error event reported by the host
// after the process had already started. For Execute it rejects the whole
// call; output collected before the error is discarded.
type CommandError struct {
	Program string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %s", e.Program, e.Message)
}

// IsShellError implements ShellError.
func (e *CommandError) IsShellError() bool { return true }

// StdinWriteError indicates a stdin write request failed. It affects only
// that write; the spawn's event stream is untouched.
type StdinWriteError struct {
	Pid uint32
	Err error
}

func (e *StdinWriteError) Error() string {
	return fmt.Sprintf("write to stdin of pid %d: %v", e.Pid, e.Err)
}

func (e *StdinWriteError) Unwrap() error {
	return e.Err
}

// IsShellError implements ShellError.
func (e *StdinWriteError) IsShellError() bool { return true }

// KillError indicates a termination request was not accepted by the host.
// A successful kill request only means the host accepted it; the actual
// exit is still reported through the close event.
type KillError struct {
	Pid uint32
	Err error
}

func (e *KillError) Error() string {
	return fmt.Sprintf("kill pid %d: %v", e.Pid, e.Err)
}

func (e *KillError) Unwrap() error {
	return e.Err
}

// IsShellError implements ShellError.
func (e *KillError) IsShellError() bool { return true }

// UnknownEncodingError indicates an encoding label that is neither "text"
// nor "raw".
type UnknownEncodingError struct {
	Label string
}

func (e *UnknownEncodingError) Error() string {
	return fmt.Sprintf("unknown encoding %q", e.Label)
}

// IsShellError implements ShellError.
func (e *UnknownEncodingError) IsShellError() bool { return true }

// OpenError indicates a path or URL could not be handed to the platform
// opener.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %q: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// IsShellError implements ShellError.
func (e *OpenError) IsShellError() bool { return true }
