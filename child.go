package shell

import (
	"context"
	"log/slog"

	"github.com/mitchelljustin/tauri-plugin-shell/internal/errors"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/event"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/host"
)

// Child is the live-process capability returned by Spawn. It addresses
// the process by the host-assigned pid, which stays valid until the close
// event for that spawn has fired.
type Child struct {
	pid  uint32
	host host.Host
	log  *slog.Logger
}

// Pid returns the host-assigned process identifier.
func (c *Child) Pid() uint32 { return c.pid }

// Write sends raw bytes to the process's standard input. The bytes cross
// the boundary as an explicit ordered byte list, so arbitrary binary data
// survives the trip. Write returns once the host accepted the request; it
// does not wait for the child to consume the bytes.
func (c *Child) Write(ctx context.Context, data []byte) error {
	if err := c.host.WriteStdin(ctx, c.pid, event.RawBuffer(data)); err != nil {
		return &errors.StdinWriteError{Pid: c.pid, Err: err}
	}

	return nil
}

// WriteString sends text to the process's standard input.
func (c *Child) WriteString(ctx context.Context, s string) error {
	if err := c.host.WriteStdin(ctx, c.pid, event.TextBuffer(s)); err != nil {
		return &errors.StdinWriteError{Pid: c.pid, Err: err}
	}

	return nil
}

// Kill requests termination of the process. A nil return means the host
// accepted the request, not that the process has exited; the exit is still
// reported through the original spawn's close event.
func (c *Child) Kill(ctx context.Context) error {
	c.log.Debug("Kill requested", "pid", c.pid)

	if err := c.host.Kill(ctx, c.pid); err != nil {
		return &errors.KillError{Pid: c.pid, Err: err}
	}

	return nil
}
