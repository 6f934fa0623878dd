// Command shellexec runs a program through the shell plugin's host
// boundary: it loads a spawn scope, executes the program and prints the
// collected output, or streams lifecycle events as JSON lines.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	shell "github.com/mitchelljustin/tauri-plugin-shell"
)

var (
	flagScopePath string
	flagVerbose   bool
	flagCwd       string
	flagEnv       []string
	flagClearEnv  bool
	flagEncoding  string
	flagSidecar   bool
	flagStream    bool
)

func main() {
	rootCmd.Flags().StringVar(&flagScopePath, "scope", "", "YAML scope file listing allowed programs (default: allow only the requested program)")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")
	rootCmd.Flags().StringVar(&flagCwd, "cwd", "", "working directory for the process")
	rootCmd.Flags().StringArrayVar(&flagEnv, "env", nil, "extra environment variable, KEY=VALUE (repeatable)")
	rootCmd.Flags().BoolVar(&flagClearEnv, "clear-env", false, "start from an empty environment")
	rootCmd.Flags().StringVar(&flagEncoding, "encoding", "text", `output encoding, "text" or "raw"`)
	rootCmd.Flags().BoolVar(&flagSidecar, "sidecar", false, "resolve the program against the scope's sidecar list")
	rootCmd.Flags().BoolVar(&flagStream, "stream", false, "print lifecycle events as JSON lines instead of collecting output")

	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		slog.Error("shellexec failed", "err", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "shellexec [flags] program [args...]",
	Short:        "Run a scope-checked program and collect or stream its output",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func run(cmd *cobra.Command, args []string) error {
	program, progArgs := args[0], args[1:]

	enc, err := shell.ParseEncoding(flagEncoding)
	if err != nil {
		return err
	}

	sc, err := loadScope(program)
	if err != nil {
		return err
	}

	logger := shell.NopLogger()
	if flagVerbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	env, err := parseEnv(flagEnv)
	if err != nil {
		return err
	}

	opts := []shell.CommandOption{
		shell.WithArgs(progArgs...),
		shell.WithCwd(flagCwd),
		shell.WithEnv(env),
		shell.WithEncoding(enc),
	}
	if flagClearEnv {
		opts = append(opts, shell.WithClearEnv())
	}

	sh := shell.New(shell.WithLogger(logger), shell.WithScope(sc))

	command := sh.Command(program, opts...)
	if flagSidecar {
		command = sh.Sidecar(program, opts...)
	}

	if flagStream {
		return streamEvents(cmd.Context(), command)
	}

	return execute(cmd.Context(), command)
}

// loadScope reads the scope file, or falls back to a single entry
// allowing exactly the requested program with arbitrary arguments.
func loadScope(program string) (*shell.Scope, error) {
	if flagScopePath != "" {
		return shell.LoadScope(flagScopePath)
	}

	return shell.NewScope(shell.ScopeConfig{Allow: []shell.ScopeEntry{
		{Name: program, AnyArgs: true, Sidecar: flagSidecar},
	}})
}

func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("environment entry %q must look like KEY=VALUE", pair)
		}

		env[key] = value
	}

	return env, nil
}

// execute collects the process output and mirrors its exit code.
func execute(ctx context.Context, command *shell.Command) error {
	out, err := command.Execute(ctx)
	if err != nil {
		return err
	}

	os.Stdout.Write(out.Stdout)

	if len(out.Stdout) > 0 {
		fmt.Println()
	}

	os.Stderr.Write(out.Stderr)

	if out.Signal != nil {
		return fmt.Errorf("process killed by signal %d", *out.Signal)
	}

	if out.Code != nil && *out.Code != 0 {
		os.Exit(*out.Code)
	}

	return nil
}

// streamEvents spawns the process and prints each lifecycle event in its
// wire form, one JSON object per line.
func streamEvents(ctx context.Context, command *shell.Command) error {
	done := make(chan struct{})

	printEvent := func(ev shell.Event) {
		data, err := shell.MarshalEvent(ev)
		if err != nil {
			fmt.Fprintln(os.Stderr, "encode event:", err)

			return
		}

		fmt.Println(string(data))
	}

	command.Stdout.On("data", func(payload any) {
		printEvent(&shell.Stdout{Line: payload.(shell.Buffer)})
	})
	command.Stderr.On("data", func(payload any) {
		printEvent(&shell.Stderr{Line: payload.(shell.Buffer)})
	})
	command.Once("error", func(payload any) {
		msg, _ := payload.(string)
		printEvent(&shell.ErrorEvent{Message: msg})
		close(done)
	})
	command.Once("close", func(payload any) {
		p, _ := payload.(shell.ClosePayload)
		printEvent(&shell.Terminated{Code: p.Code, Signal: p.Signal})
		close(done)
	})

	if _, err := command.Spawn(ctx); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
