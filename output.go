package shell

// Output is the collected result of Execute. Code and Signal mirror the
// close event: Code is nil when the process was killed by a signal, Signal
// is nil on normal exit.
//
// Under text encoding, Stdout and Stderr hold the received lines joined by
// a single newline with no trailing separator; under raw encoding they
// hold each received chunk followed by exactly one newline byte,
// concatenated in arrival order.
type Output struct {
	Code   *int
	Signal *int
	Stdout []byte
	Stderr []byte
}
