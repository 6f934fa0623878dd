// Package shell provides a process-execution and event-streaming façade:
// it launches external programs through a narrow host boundary and
// multiplexes their asynchronous output (stdout, stderr, exit, error) into
// a single ordered event stream.
//
// Two modes are offered. Spawn starts a process and returns immediately
// with a live Child handle while events keep arriving on the command's
// emitters; Execute blocks until the process ends and returns the
// collected output.
//
// # Basic Usage
//
// Build a Shell with a scope describing which programs may run, then
// execute a command and collect its output:
//
//	sc, err := shell.LoadScope("scope.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sh := shell.New(shell.WithScope(sc))
//
//	out, err := sh.Command("git", shell.WithArgs("status")).Execute(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("exit %d: %s\n", *out.Code, out.Stdout)
//
// # Streaming
//
// For long-running processes, subscribe to the event stream instead:
//
//	cmd := sh.Command("tail", shell.WithArgs("-f", "app.log"))
//	cmd.Stdout.On("data", func(payload any) {
//	    line := payload.(shell.Buffer)
//	    fmt.Println(line.String())
//	})
//	cmd.On("close", func(payload any) {
//	    p := payload.(shell.ClosePayload)
//	    fmt.Println("done", p.Code, p.Signal)
//	})
//
//	child, err := cmd.Spawn(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// later:
//	_ = child.Kill(ctx)
//
// # Host Boundary
//
// The actual process creation lives behind the Host interface. The default
// host spawns OS processes in-process and enforces the configured scope;
// a custom Host (injected with WithHost) can forward requests anywhere, and
// a test double can substitute it completely.
//
// # Error Handling
//
// Failures are typed: a spawn rejected by the host surfaces as
// *SpawnDeniedError before any event is delivered, an Error event during
// Execute surfaces as *CommandError and discards any partial output, and
// stdin-write or kill failures affect only that call.
//
// There is no built-in timeout. Callers needing one race Execute against
// their own timer and kill the child explicitly.
package shell
