package event

import "encoding/json"

// Buffer represents one chunk of process I/O that is either decoded text or
// raw bytes, depending on the command's encoding. On the wire a text buffer
// is a JSON string and a raw buffer is an ordered array of byte values, so
// binary data crosses the boundary losslessly.
type Buffer struct {
	text  string
	raw   []byte
	isRaw bool
}

// TextBuffer creates a Buffer holding decoded text.
func TextBuffer(s string) Buffer {
	return Buffer{text: s}
}

// RawBuffer creates a Buffer holding raw bytes.
func RawBuffer(b []byte) Buffer {
	return Buffer{raw: b, isRaw: true}
}

// IsRaw reports whether the buffer holds raw bytes.
func (b Buffer) IsRaw() bool { return b.isRaw }

// String returns the text content. For a raw buffer it returns the bytes
// reinterpreted as a string.
func (b Buffer) String() string {
	if b.isRaw {
		return string(b.raw)
	}

	return b.text
}

// Bytes returns the byte content. For a text buffer it returns the UTF-8
// bytes of the text.
func (b Buffer) Bytes() []byte {
	if b.isRaw {
		return b.raw
	}

	return []byte(b.text)
}

// MarshalJSON implements json.Marshaler.
// Text buffers encode as strings, raw buffers as arrays of byte values.
func (b Buffer) MarshalJSON() ([]byte, error) {
	if b.isRaw {
		ints := make([]int, len(b.raw))
		for i, v := range b.raw {
			ints[i] = int(v)
		}

		return json.Marshal(ints)
	}

	return json.Marshal(b.text)
}

// UnmarshalJSON implements json.Unmarshaler.
// Accepts both a string and an array of byte values.
func (b *Buffer) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*b = TextBuffer(text)

		return nil
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}

	raw := make([]byte, len(ints))
	for i, v := range ints {
		raw[i] = byte(v)
	}

	*b = RawBuffer(raw)

	return nil
}
