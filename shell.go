package shell

import (
	"context"
	"log/slog"

	"github.com/mitchelljustin/tauri-plugin-shell/internal/channel"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/emitter"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/errors"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/event"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/host"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/scope"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/subprocess"
)

// Shell owns the host binding and the event channel registry shared by the
// commands it builds. Create one with New and reuse it; each Spawn still
// gets its own channel handle.
type Shell struct {
	log      *slog.Logger
	host     host.Host
	channels *channel.Registry
}

// Option configures a Shell.
type Option func(*shellConfig)

type shellConfig struct {
	logger *slog.Logger
	host   host.Host
	scope  *scope.Scope
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(c *shellConfig) {
		c.logger = logger
	}
}

// WithHost injects a custom host boundary. If not set, a local host is
// created that spawns OS processes and enforces the configured scope.
func WithHost(h Host) Option {
	return func(c *shellConfig) {
		c.host = h
	}
}

// WithScope sets the spawn allow-list for the default local host. Without
// a scope the default host denies every spawn. Ignored when WithHost is
// used.
func WithScope(s *Scope) Option {
	return func(c *shellConfig) {
		c.scope = s
	}
}

// New creates a Shell.
func New(opts ...Option) *Shell {
	cfg := &shellConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.logger
	if log == nil {
		log = NopLogger()
	}

	h := cfg.host
	if h == nil {
		sc := cfg.scope
		if sc == nil {
			// Deny-by-default: an empty scope allows nothing.
			sc, _ = scope.New(scope.Config{})
		}

		h = subprocess.New(log, sc)
	}

	return &Shell{
		log:      log.With("component", "shell"),
		host:     h,
		channels: channel.NewRegistry(log),
	}
}

// Command builds a command that runs program, resolved by the host the way
// it resolves ordinary scope entries.
func (s *Shell) Command(program string, opts ...CommandOption) *Command {
	return s.newCommand(program, false, opts)
}

// Sidecar builds a command for a bundled executable: program is resolved
// against the host's sidecar list instead of PATH.
func (s *Shell) Sidecar(program string, opts ...CommandOption) *Command {
	return s.newCommand(program, true, opts)
}

func (s *Shell) newCommand(program string, sidecar bool, opts []CommandOption) *Command {
	c := &Command{
		log:      s.log.With("component", "command", "program", program),
		host:     s.host,
		channels: s.channels,
		program:  program,
		options:  host.Options{Encoding: event.EncodingText, Sidecar: sidecar},
		root:     emitter.New(),
		Stdout:   emitter.New(),
		Stderr:   emitter.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Open hands a path or URL to the platform's default opener.
func (s *Shell) Open(ctx context.Context, path string) error {
	return s.OpenWith(ctx, path, "")
}

// OpenWith opens a path or URL with the program named by with.
func (s *Shell) OpenWith(ctx context.Context, path, with string) error {
	if err := s.host.Open(ctx, path, with); err != nil {
		return &errors.OpenError{Path: path, Err: err}
	}

	return nil
}
