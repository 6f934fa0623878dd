package shell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeHost is a scripted stand-in for the privileged boundary. Spawn
// acknowledges with a fixed pid and then pushes the scripted events from a
// goroutine, mimicking the out-of-band delivery of a real host.
type fakeHost struct {
	script   []Event
	spawnErr error
	writeErr error
	killErr  error
	openErr  error
	pid      uint32

	mu       sync.Mutex
	requests []SpawnRequest
	writes   []Buffer
	kills    []uint32
	opens    [][2]string

	wg sync.WaitGroup
}

func (f *fakeHost) Spawn(ctx context.Context, req SpawnRequest, onEvent *EventChannel) (uint32, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.spawnErr != nil {
		return 0, f.spawnErr
	}

	f.wg.Add(1)

	go func() {
		defer f.wg.Done()

		for _, ev := range f.script {
			onEvent.Send(ev)
		}
	}()

	return f.pid, nil
}

func (f *fakeHost) WriteStdin(ctx context.Context, pid uint32, buf Buffer) error {
	if f.writeErr != nil {
		return f.writeErr
	}

	f.mu.Lock()
	f.writes = append(f.writes, buf)
	f.mu.Unlock()

	return nil
}

func (f *fakeHost) Kill(ctx context.Context, pid uint32) error {
	if f.killErr != nil {
		return f.killErr
	}

	f.mu.Lock()
	f.kills = append(f.kills, pid)
	f.mu.Unlock()

	return nil
}

func (f *fakeHost) Open(ctx context.Context, path, with string) error {
	if f.openErr != nil {
		return f.openErr
	}

	f.mu.Lock()
	f.opens = append(f.opens, [2]string{path, with})
	f.mu.Unlock()

	return nil
}

func (f *fakeHost) lastRequest(t *testing.T) SpawnRequest {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.requests)

	return f.requests[len(f.requests)-1]
}

func intPtr(v int) *int { return &v }

func terminated(code int) Event { return &Terminated{Code: intPtr(code)} }

// TestExecute_TextEncoding tests that Execute folds stdout and stderr
// lines with newline separators and no trailing newline.
func TestExecute_TextEncoding(t *testing.T) {
	h := &fakeHost{script: []Event{
		&Stdout{Line: TextBuffer("a")},
		&Stderr{Line: TextBuffer("x")},
		&Stdout{Line: TextBuffer("b")},
		&Stdout{Line: TextBuffer("c")},
		terminated(0),
	}}

	out, err := New(WithHost(h)).Command("prog").Execute(context.Background())

	require.NoError(t, err)
	require.Equal(t, 0, *out.Code)
	require.Nil(t, out.Signal)
	require.Equal(t, "a\nb\nc", string(out.Stdout))
	require.Equal(t, "x", string(out.Stderr))
}

// TestExecute_NoOutput tests that a silent process yields empty strings.
func TestExecute_NoOutput(t *testing.T) {
	h := &fakeHost{script: []Event{terminated(0)}}

	out, err := New(WithHost(h)).Command("prog").Execute(context.Background())

	require.NoError(t, err)
	require.Empty(t, out.Stdout)
	require.Empty(t, out.Stderr)
}

// TestExecute_RawEncoding tests that raw chunks are concatenated with one
// newline byte per chunk.
func TestExecute_RawEncoding(t *testing.T) {
	h := &fakeHost{script: []Event{
		&Stdout{Line: RawBuffer([]byte{1, 2})},
		&Stdout{Line: RawBuffer([]byte{3})},
		terminated(0),
	}}

	cmd := New(WithHost(h)).Command("prog", WithEncoding(EncodingRaw))
	out, err := cmd.Execute(context.Background())

	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 10, 3, 10}, out.Stdout)
	require.Empty(t, out.Stderr)
}

// TestExecute_StdoutMessage tests the end-to-end scenario of a process
// writing one line and exiting cleanly.
func TestExecute_StdoutMessage(t *testing.T) {
	h := &fakeHost{script: []Event{
		&Stdout{Line: TextBuffer("message")},
		terminated(0),
	}}

	out, err := New(WithHost(h)).Command("prog").Execute(context.Background())

	require.NoError(t, err)
	require.Equal(t, 0, *out.Code)
	require.Nil(t, out.Signal)
	require.Equal(t, "message", string(out.Stdout))
	require.Equal(t, "", string(out.Stderr))
}

// TestExecute_SignalDeath tests that a signal-killed process resolves with
// a nil code and the signal number.
func TestExecute_SignalDeath(t *testing.T) {
	h := &fakeHost{script: []Event{
		&Terminated{Signal: intPtr(9)},
	}}

	out, err := New(WithHost(h)).Command("prog").Execute(context.Background())

	require.NoError(t, err)
	require.Nil(t, out.Code)
	require.Equal(t, 9, *out.Signal)
}

// TestExecute_ErrorEvent tests that an Error event rejects the call and
// discards everything collected before it.
func TestExecute_ErrorEvent(t *testing.T) {
	h := &fakeHost{script: []Event{
		&Stdout{Line: TextBuffer("partial")},
		&ErrorEvent{Message: "output pipe broke"},
	}}

	out, err := New(WithHost(h)).Command("prog").Execute(context.Background())

	require.Nil(t, out)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, "prog", cmdErr.Program)
	require.Contains(t, cmdErr.Message, "output pipe broke")
}

// TestExecute_SpawnDenied tests that a host rejection propagates as the
// overall failure.
func TestExecute_SpawnDenied(t *testing.T) {
	denied := &SpawnDeniedError{Program: "prog", Err: ErrNoSuchChild}
	h := &fakeHost{spawnErr: denied}

	out, err := New(WithHost(h)).Command("prog").Execute(context.Background())

	require.Nil(t, out)

	var got *SpawnDeniedError
	require.ErrorAs(t, err, &got)
	require.Equal(t, "prog", got.Program)
}

// TestSpawn_ReturnsChild tests that Spawn resolves with a handle wrapping
// the host-assigned pid.
func TestSpawn_ReturnsChild(t *testing.T) {
	h := &fakeHost{pid: 1234, script: []Event{terminated(0)}}

	child, err := New(WithHost(h)).Command("prog").Spawn(context.Background())

	require.NoError(t, err)
	require.Equal(t, uint32(1234), child.Pid())

	h.wg.Wait()
}

// TestSpawn_DeniedProducesNoChild tests the denial path: no handle, no
// events, nothing on the channel.
func TestSpawn_DeniedProducesNoChild(t *testing.T) {
	denied := &SpawnDeniedError{Program: "prog", Err: ErrNoSuchChild}
	h := &fakeHost{spawnErr: denied}

	sh := New(WithHost(h))
	cmd := sh.Command("prog")

	closed := false
	cmd.On("close", func(any) { closed = true })

	child, err := cmd.Spawn(context.Background())

	require.Nil(t, child)
	require.ErrorAs(t, err, &denied)
	require.False(t, closed)
}

// TestSpawn_FreezesArguments tests that mutating the caller's argument
// slice after Spawn cannot corrupt the transmitted request.
func TestSpawn_FreezesArguments(t *testing.T) {
	h := &fakeHost{script: []Event{terminated(0)}}

	args := []string{"one", "two"}
	cmd := New(WithHost(h)).Command("prog", WithArgs(args...))

	_, err := cmd.Spawn(context.Background())
	require.NoError(t, err)

	args[0] = "mutated"

	require.Equal(t, []string{"one", "two"}, h.lastRequest(t).Args)

	h.wg.Wait()
}

// TestSpawn_UnknownEncoding tests that an unrecognized encoding label is
// rejected before any request crosses the boundary.
func TestSpawn_UnknownEncoding(t *testing.T) {
	h := &fakeHost{}

	cmd := New(WithHost(h)).Command("prog", WithEncoding(Encoding("latin1")))

	_, err := cmd.Spawn(context.Background())

	var encErr *UnknownEncodingError
	require.ErrorAs(t, err, &encErr)
	require.Equal(t, "latin1", encErr.Label)
	require.Empty(t, h.requests)
}

// TestSpawn_EventsAfterTerminalDropped tests that nothing reaches the
// emitters after the terminal event.
func TestSpawn_EventsAfterTerminalDropped(t *testing.T) {
	h := &fakeHost{script: []Event{
		&Stdout{Line: TextBuffer("before")},
		terminated(0),
		&Stdout{Line: TextBuffer("late")},
	}}

	sh := New(WithHost(h))
	cmd := sh.Command("prog")

	var (
		mu    sync.Mutex
		lines []string
	)

	cmd.Stdout.On("data", func(payload any) {
		mu.Lock()
		defer mu.Unlock()

		lines = append(lines, payload.(Buffer).String())
	})

	_, err := cmd.Spawn(context.Background())
	require.NoError(t, err)

	h.wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, []string{"before"}, lines)
}

// TestSpawn_CloseListenerPayload tests demultiplexing of the Terminated
// event onto the root emitter.
func TestSpawn_CloseListenerPayload(t *testing.T) {
	h := &fakeHost{script: []Event{terminated(42)}}

	sh := New(WithHost(h))
	cmd := sh.Command("prog")

	got := make(chan ClosePayload, 1)

	cmd.On("close", func(payload any) {
		got <- payload.(ClosePayload)
	})

	_, err := cmd.Spawn(context.Background())
	require.NoError(t, err)

	select {
	case p := <-got:
		require.Equal(t, 42, *p.Code)
		require.Nil(t, p.Signal)
	case <-time.After(5 * time.Second):
		t.Fatal("close event never fired")
	}
}

// TestCommand_ListenerDelegation tests the delegated emitter surface on
// Command.
func TestCommand_ListenerDelegation(t *testing.T) {
	cmd := New(WithHost(&fakeHost{})).Command("prog")

	sub := cmd.On("data", func(any) {})
	require.Equal(t, 1, cmd.ListenerCount("data"))

	cmd.Off("data", sub)
	require.Zero(t, cmd.ListenerCount("data"))

	cmd.Once("close", func(any) {})
	cmd.On("error", func(any) {})
	cmd.RemoveAllListeners()
	require.Zero(t, cmd.ListenerCount("close"))
	require.Zero(t, cmd.ListenerCount("error"))
}

// TestChild_Write tests that raw and text stdin writes cross the boundary
// in the right buffer form.
func TestChild_Write(t *testing.T) {
	h := &fakeHost{pid: 9, script: []Event{terminated(0)}}

	child, err := New(WithHost(h)).Command("prog").Spawn(context.Background())
	require.NoError(t, err)

	require.NoError(t, child.Write(context.Background(), []byte{0, 1, 2}))
	require.NoError(t, child.WriteString(context.Background(), "typed"))

	h.mu.Lock()
	defer h.mu.Unlock()

	require.Len(t, h.writes, 2)
	require.True(t, h.writes[0].IsRaw())
	require.Equal(t, []byte{0, 1, 2}, h.writes[0].Bytes())
	require.False(t, h.writes[1].IsRaw())
	require.Equal(t, "typed", h.writes[1].String())
}

// TestChild_WriteFailure tests that a failed write surfaces as a
// StdinWriteError for that call only.
func TestChild_WriteFailure(t *testing.T) {
	h := &fakeHost{pid: 9, writeErr: ErrNoSuchChild, script: []Event{terminated(0)}}

	child, err := New(WithHost(h)).Command("prog").Spawn(context.Background())
	require.NoError(t, err)

	err = child.WriteString(context.Background(), "x")

	var writeErr *StdinWriteError
	require.ErrorAs(t, err, &writeErr)
	require.Equal(t, uint32(9), writeErr.Pid)
	require.ErrorIs(t, err, ErrNoSuchChild)
}

// TestChild_Kill tests that kill requests are keyed by pid and failures
// wrap as KillError.
func TestChild_Kill(t *testing.T) {
	h := &fakeHost{pid: 77, script: []Event{terminated(0)}}

	child, err := New(WithHost(h)).Command("prog").Spawn(context.Background())
	require.NoError(t, err)

	require.NoError(t, child.Kill(context.Background()))

	h.mu.Lock()
	require.Equal(t, []uint32{77}, h.kills)
	h.mu.Unlock()

	h.killErr = ErrNoSuchChild

	err = child.Kill(context.Background())

	var killErr *KillError
	require.ErrorAs(t, err, &killErr)
	require.Equal(t, uint32(77), killErr.Pid)
}

// TestExecute_ContextCancelled tests that cancelling the context abandons
// the wait with the context error.
func TestExecute_ContextCancelled(t *testing.T) {
	// A host that never delivers a terminal event.
	h := &fakeHost{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := New(WithHost(h)).Command("prog").Execute(ctx)

	require.Nil(t, out)
	require.ErrorIs(t, err, context.Canceled)
}
