package multipart

import (
	"io"
	"os"
	"path/filepath"
)

type payloadKind int

const (
	payloadBytes payloadKind = iota
	payloadText
	payloadStream
	payloadNested
	payloadJSON
)

// Payload is the closed set of part payload variants: raw bytes, text, a
// byte stream, a nested multipart writer, or a JSON-serializable value.
type Payload struct {
	kind   payloadKind
	data   []byte
	text   string
	reader io.Reader
	size   int64
	name   string
	nested *Writer
	value  any
}

// BytesPayload carries raw bytes, emitted verbatim.
func BytesPayload(data []byte) Payload {
	return Payload{kind: payloadBytes, data: data, size: int64(len(data))}
}

// TextPayload carries text, encoded per the part's declared charset at
// serialization time.
func TextPayload(text string) Payload {
	return Payload{kind: payloadText, text: text, size: -1}
}

// StreamPayload carries an io.Reader forwarded in bounded chunks. A
// negative size marks the length as unknowable; name, when non-empty,
// drives Content-Type and Content-Disposition defaults.
func StreamPayload(r io.Reader, size int64, name string) Payload {
	return Payload{kind: payloadStream, reader: r, size: size, name: name}
}

// FilePayload carries an open file, with size and filename taken from the
// file itself. The remaining size accounts for the current read position.
func FilePayload(f *os.File) Payload {
	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
		if pos, err := f.Seek(0, io.SeekCurrent); err == nil {
			size -= pos
		}
	}
	return StreamPayload(f, size, filepath.Base(f.Name()))
}

// NestedPayload carries a nested multipart writer, serialized recursively.
func NestedPayload(w *Writer) Payload {
	return Payload{kind: payloadNested, nested: w, size: -1}
}

// JSONPayload carries a value marshaled to JSON at serialization time.
func JSONPayload(v any) Payload {
	return Payload{kind: payloadJSON, value: v, size: -1}
}

// guessLength returns the payload's byte length when it is knowable
// without serializing, for the Content-Length header default.
func (p Payload) guessLength() (int64, bool) {
	switch p.kind {
	case payloadBytes:
		return int64(len(p.data)), true
	case payloadStream:
		if p.size >= 0 {
			return p.size, true
		}
	}
	return 0, false
}
