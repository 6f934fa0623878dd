package subprocess

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mitchelljustin/tauri-plugin-shell/internal/channel"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/errors"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/event"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/host"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/scope"
)

// maxScanTokenSize is the maximum length of a single output line.
const maxScanTokenSize = 1024 * 1024 // 1MB

// Host runs processes locally. It implements host.Host.
type Host struct {
	log   *slog.Logger
	scope *scope.Scope

	mu       sync.Mutex
	children map[uint32]*child
}

// Compile-time verification that Host implements the host boundary.
var _ host.Host = (*Host)(nil)

type child struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	stdinMu sync.Mutex
}

// New creates a local host that enforces s before every spawn.
func New(log *slog.Logger, s *scope.Scope) *Host {
	return &Host{
		log:      log.With("component", "subprocess_host"),
		scope:    s,
		children: make(map[uint32]*child, 4),
	}
}

// Spawn validates req against the scope, starts the process and wires its
// lifecycle events to onEvent. The returned pid is valid for WriteStdin and
// Kill until the Terminated event has been delivered.
func (h *Host) Spawn(ctx context.Context, req host.SpawnRequest, onEvent *channel.Handle) (uint32, error) {
	program, err := h.scope.Resolve(req.Program, req.Args, req.Options.Sidecar)
	if err != nil {
		h.log.Warn("Spawn request denied", "program", req.Program, "error", err)

		return 0, &errors.SpawnDeniedError{Program: req.Program, Err: err}
	}

	//nolint:gosec // G204: spawning scope-approved programs is this host's purpose
	cmd := exec.Command(program, req.Args...)
	cmd.Dir = req.Options.Cwd
	cmd.Env = buildEnv(req.Options)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return 0, &errors.SpawnDeniedError{Program: req.Program, Err: err}
	}

	pid := uint32(cmd.Process.Pid)

	c := &child{cmd: cmd, stdin: stdin}

	h.mu.Lock()
	h.children[pid] = c
	h.mu.Unlock()

	h.log.Info("Spawned process", "program", program, "pid", pid)

	enc := req.Options.Encoding

	var g errgroup.Group

	g.Go(func() error {
		return pumpLines(stdout, enc, onEvent, func(line event.Buffer) event.Event {
			return &event.Stdout{Line: line}
		})
	})
	g.Go(func() error {
		return pumpLines(stderr, enc, onEvent, func(line event.Buffer) event.Event {
			return &event.Stderr{Line: line}
		})
	})

	go func() {
		pumpErr := g.Wait()
		waitErr := cmd.Wait()

		h.mu.Lock()
		delete(h.children, pid)
		h.mu.Unlock()

		if pumpErr != nil {
			h.log.Error("Output pump failed", "pid", pid, "error", pumpErr)
			onEvent.Send(&event.Error{Message: pumpErr.Error()})

			return
		}

		onEvent.Send(terminatedEvent(waitErr))
		h.log.Debug("Process terminated", "pid", pid)
	}()

	return pid, nil
}

// WriteStdin writes buf to the child's stdin. The bytes are handed to the
// pipe and not waited on.
func (h *Host) WriteStdin(ctx context.Context, pid uint32, buf event.Buffer) error {
	h.mu.Lock()
	c, ok := h.children[pid]
	h.mu.Unlock()

	if !ok {
		return errors.ErrNoSuchChild
	}

	c.stdinMu.Lock()
	defer c.stdinMu.Unlock()

	if _, err := c.stdin.Write(buf.Bytes()); err != nil {
		return err
	}

	return nil
}

// Kill requests termination of the child. The exit itself is still
// reported through the spawn's event channel.
func (h *Host) Kill(ctx context.Context, pid uint32) error {
	h.mu.Lock()
	c, ok := h.children[pid]
	h.mu.Unlock()

	if !ok {
		return errors.ErrNoSuchChild
	}

	h.log.Debug("Killing process", "pid", pid)

	return c.cmd.Process.Kill()
}

// Open hands path to the platform opener, or to the program named by with.
func (h *Host) Open(ctx context.Context, path, with string) error {
	opener := with
	if opener == "" {
		switch runtime.GOOS {
		case "darwin":
			opener = "open"
		case "windows":
			opener = "rundll32"
		default:
			opener = "xdg-open"
		}
	}

	args := []string{path}
	if with == "" && runtime.GOOS == "windows" {
		args = []string{"url.dll,FileProtocolHandler", path}
	}

	//nolint:gosec // G204: the opener program is fixed per platform or caller-chosen
	cmd := exec.Command(opener, args...)

	return cmd.Start()
}

// buildEnv assembles the child environment. By default the host's
// environment is inherited and Env entries are appended; ClearEnv starts
// from nothing instead.
func buildEnv(opts host.Options) []string {
	var env []string
	if !opts.ClearEnv {
		env = os.Environ()
	}

	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, k+"="+opts.Env[k])
	}

	if env == nil {
		env = []string{}
	}

	return env
}

// pumpLines reads r line by line and pushes one event per line. Lines are
// terminated by \n or a bare \r, so carriage-return progress output is
// delivered as it appears.
func pumpLines(r io.Reader, enc event.Encoding, onEvent *channel.Handle, wrap func(event.Buffer) event.Event) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxScanTokenSize), maxScanTokenSize)
	scanner.Split(scanLines)

	for scanner.Scan() {
		line := scanner.Bytes()

		var buf event.Buffer
		if enc == event.EncodingRaw {
			buf = event.RawBuffer(append([]byte(nil), line...))
		} else {
			buf = event.TextBuffer(string(line))
		}

		onEvent.Send(wrap(buf))
	}

	return scanner.Err()
}

// scanLines is like bufio.ScanLines but also splits on a bare carriage
// return, treating \r\n as a single terminator.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' {
			if i+1 == len(data) && !atEOF {
				// Cannot tell yet whether \n follows.
				return 0, nil, nil
			}

			if i+1 < len(data) && data[i+1] == '\n' {
				advance = i + 2
			}
		}

		return advance, data[:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}

// terminatedEvent maps a Wait result to the Terminated payload: a normal
// exit carries the code and a nil signal, a signal death carries the
// signal number and a nil code.
func terminatedEvent(waitErr error) event.Event {
	if waitErr == nil {
		code := 0

		return &event.Terminated{Code: &code}
	}

	var exitErr *exec.ExitError
	if stderrors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			sig := int(ws.Signal())

			return &event.Terminated{Signal: &sig}
		}

		code := exitErr.ExitCode()

		return &event.Terminated{Code: &code}
	}

	return &event.Error{Message: waitErr.Error()}
}
