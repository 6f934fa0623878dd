package shell

import (
	"context"
	"log/slog"

	"github.com/mitchelljustin/tauri-plugin-shell/internal/channel"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/collect"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/emitter"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/errors"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/event"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/host"
)

// Command is a command builder and process supervisor. It owns the
// program, argument list and spawn options, one root emitter for "error"
// and "close" events, and the Stdout/Stderr sub-emitters for "data"
// events.
//
// A Command may be reused: every Spawn takes an immutable snapshot of the
// program, arguments and options and owns its own channel handle. Events
// from all spawns of the same Command flow through the same emitters, so
// concurrent Execute calls on one Command are not supported; build one
// Command per concurrent execution instead.
type Command struct {
	log      *slog.Logger
	host     host.Host
	channels *channel.Registry

	program string
	args    []string
	options host.Options

	root *emitter.Emitter

	// Stdout emits a "data" event with a Buffer payload for every line the
	// process writes to standard output.
	Stdout *emitter.Emitter

	// Stderr emits a "data" event with a Buffer payload for every line the
	// process writes to standard error.
	Stderr *emitter.Emitter
}

// CommandOption configures a Command at construction time.
type CommandOption func(*Command)

// WithArgs sets the argument list.
func WithArgs(args ...string) CommandOption {
	return func(c *Command) {
		c.args = args
	}
}

// WithCwd sets the working directory for the process.
func WithCwd(dir string) CommandOption {
	return func(c *Command) {
		c.options.Cwd = dir
	}
}

// WithEnv adds environment variables for the process. By default no
// variables are added beyond the inherited environment.
func WithEnv(env map[string]string) CommandOption {
	return func(c *Command) {
		c.options.Env = env
	}
}

// WithClearEnv starts the process with an empty environment instead of
// inheriting the host's.
func WithClearEnv() CommandOption {
	return func(c *Command) {
		c.options.ClearEnv = true
	}
}

// WithEncoding selects how stdout/stderr lines are delivered and how
// Execute folds them. The default is EncodingText.
func WithEncoding(enc Encoding) CommandOption {
	return func(c *Command) {
		c.options.Encoding = enc
	}
}

// ClosePayload is the payload of the "close" event. Code is nil when the
// process was killed by a signal; Signal is nil on normal exit.
type ClosePayload struct {
	Code   *int
	Signal *int
}

// On registers a listener for an event on the command's root emitter.
// Recognized names are "error" (payload string) and "close" (payload
// ClosePayload).
func (c *Command) On(name string, fn func(payload any)) *Subscription {
	return c.root.On(name, fn)
}

// Once registers a one-shot listener on the command's root emitter.
func (c *Command) Once(name string, fn func(payload any)) *Subscription {
	return c.root.Once(name, fn)
}

// Off removes a subscription from the command's root emitter.
func (c *Command) Off(name string, sub *Subscription) {
	c.root.Off(name, sub)
}

// RemoveAllListeners clears the root emitter's registry for the given
// names, or entirely when none are given.
func (c *Command) RemoveAllListeners(name ...string) {
	c.root.RemoveAllListeners(name...)
}

// ListenerCount reports the number of root emitter listeners for name.
func (c *Command) ListenerCount(name string) int {
	return c.root.ListenerCount(name)
}

// Spawn starts the process without waiting for it. It registers a fresh
// event channel, issues the spawn request and returns a live Child handle
// once the host acknowledges the spawn. The acknowledgment precedes every
// event, so listeners registered before Spawn see the full stream.
//
// A host rejection (for example a scope denial) returns the error before
// any event is delivered; nothing ever flows on that call's channel.
func (c *Command) Spawn(ctx context.Context) (*Child, error) {
	enc := c.options.Encoding
	if enc == "" {
		enc = event.EncodingText
	}

	if enc != event.EncodingText && enc != event.EncodingRaw {
		return nil, &errors.UnknownEncodingError{Label: string(enc)}
	}

	// Snapshot the argument list so the in-flight request cannot be
	// corrupted by the caller mutating its slice.
	req := host.SpawnRequest{
		Program: c.program,
		Args:    append([]string(nil), c.args...),
		Options: c.options,
	}
	req.Options.Encoding = enc

	onEvent := c.channels.Register(c.dispatch)

	pid, err := c.host.Spawn(ctx, req, onEvent)
	if err != nil {
		onEvent.Close()
		c.log.Debug("Spawn failed", "error", err)

		return nil, err
	}

	c.log.Debug("Spawned", "pid", pid, "channel_id", onEvent.ID())

	return &Child{pid: pid, host: c.host, log: c.log}, nil
}

// dispatch demultiplexes one inbound event by tag onto the emitters.
func (c *Command) dispatch(ev event.Event) {
	switch e := ev.(type) {
	case *event.Stdout:
		c.Stdout.Emit("data", e.Line)
	case *event.Stderr:
		c.Stderr.Emit("data", e.Line)
	case *event.Error:
		c.root.Emit("error", e.Message)
	case *event.Terminated:
		c.root.Emit("close", ClosePayload{Code: e.Code, Signal: e.Signal})
	}
}

// Execute spawns the process, waits for it to end and returns the
// collected output. Stdout and stderr chunks are accumulated in arrival
// order and folded according to the command's encoding when the close
// event fires. An error event rejects the call and discards any output
// collected so far; whatever the process produced before the failure is
// deliberately not returned.
//
// Execute resolves or rejects exactly once: close and error are mutually
// exclusive terminal events. Cancelling ctx abandons the wait but does not
// stop the process; kill it through a Spawn handle if that matters.
func (c *Command) Execute(ctx context.Context) (*Output, error) {
	enc := c.options.Encoding
	if enc == "" {
		enc = event.EncodingText
	}

	var stdoutChunks, stderrChunks []event.Buffer

	done := make(chan *Output, 1)
	fail := make(chan error, 1)

	outSub := c.Stdout.On("data", func(payload any) {
		if line, ok := payload.(event.Buffer); ok {
			stdoutChunks = append(stdoutChunks, line)
		}
	})
	errSub := c.Stderr.On("data", func(payload any) {
		if line, ok := payload.(event.Buffer); ok {
			stderrChunks = append(stderrChunks, line)
		}
	})

	defer func() {
		c.Stdout.Off("data", outSub)
		c.Stderr.Off("data", errSub)
	}()

	failSub := c.Once("error", func(payload any) {
		msg, _ := payload.(string)
		fail <- &errors.CommandError{Program: c.program, Message: msg}
	})
	closeSub := c.Once("close", func(payload any) {
		p, _ := payload.(ClosePayload)
		done <- &Output{
			Code:   p.Code,
			Signal: p.Signal,
			Stdout: collect.Fold(enc, stdoutChunks),
			Stderr: collect.Fold(enc, stderrChunks),
		}
	})

	defer func() {
		c.Off("error", failSub)
		c.Off("close", closeSub)
	}()

	if _, err := c.Spawn(ctx); err != nil {
		return nil, err
	}

	select {
	case out := <-done:
		return out, nil
	case err := <-fail:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
