// Package errors defines error types for the shell plugin.
//
// This package provides structured error types that wrap the failure
// scenarios of spawning, addressing, and killing child processes. All error
// types support error unwrapping and can be checked using errors.Is and
// errors.As.
package errors
