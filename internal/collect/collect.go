// Package collect folds streamed output chunks into a final result
// according to the command's encoding policy. The fold is a pure function
// of the chunk sequence so it can be tested without any I/O machinery.
package collect

import "github.com/mitchelljustin/tauri-plugin-shell/internal/event"

// Fold reduces the ordered chunk sequence to the collected output for enc.
//
// Text encoding joins the chunks with a single newline and no trailing
// separator; zero chunks yield an empty result. Raw encoding concatenates
// each chunk followed by exactly one newline byte, in arrival order; zero
// chunks yield an empty byte sequence.
func Fold(enc event.Encoding, chunks []event.Buffer) []byte {
	if enc == event.EncodingRaw {
		return foldRaw(chunks)
	}

	return foldText(chunks)
}

func foldText(chunks []event.Buffer) []byte {
	var out []byte

	for i, c := range chunks {
		if i > 0 {
			out = append(out, '\n')
		}

		out = append(out, c.String()...)
	}

	return out
}

func foldRaw(chunks []event.Buffer) []byte {
	var out []byte

	for _, c := range chunks {
		out = append(out, c.Bytes()...)
		out = append(out, '\n')
	}

	return out
}
