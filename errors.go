package shell

import "github.com/mitchelljustin/tauri-plugin-shell/internal/errors"

// Re-export error types from internal package

// ShellError is the base interface for all shell plugin errors.
type ShellError = errors.ShellError

// SpawnDeniedError indicates the host rejected a spawn request.
type SpawnDeniedError = errors.SpawnDeniedError

// CommandError carries the message of an Error event reported after the
// process started.
type CommandError = errors.CommandError

// StdinWriteError indicates a stdin write request failed.
type StdinWriteError = errors.StdinWriteError

// KillError indicates a termination request was not accepted.
type KillError = errors.KillError

// UnknownEncodingError indicates an unrecognized encoding label.
type UnknownEncodingError = errors.UnknownEncodingError

// OpenError indicates a path or URL could not be opened.
type OpenError = errors.OpenError

// Re-export sentinel errors from internal package.
var (
	// ErrNoSuchChild indicates the pid does not address a live child process.
	ErrNoSuchChild = errors.ErrNoSuchChild

	// ErrChannelClosed indicates an event arrived after the terminal event.
	ErrChannelClosed = errors.ErrChannelClosed
)
