package multipart

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/google/uuid"
)

// Writer assembles ordered parts into a full multipart body with boundary
// framing. Parts are appended, serialized once, and the writer discarded;
// a Writer is never reused across exchanges.
type Writer struct {
	subtype  string
	boundary string
	headers  Headers
	parts    []*PartWriter
}

// NewWriter constructs a writer for a multipart/<subtype> body with a
// random boundary.
func NewWriter(subtype string) *Writer {
	boundary := strings.ReplaceAll(uuid.New().String(), "-", "")
	w, err := NewWriterWithBoundary(subtype, boundary)
	if err != nil {
		// A generated boundary is always a valid ASCII token.
		panic(err)
	}
	return w
}

// NewWriterWithBoundary constructs a writer with a caller-supplied
// boundary, which must be ASCII and at most 70 characters.
func NewWriterWithBoundary(subtype, boundary string) (*Writer, error) {
	if err := validateBoundary(boundary); err != nil {
		return nil, err
	}
	var headers Headers
	headers.Set(ContentType, mime.FormatMediaType("multipart/"+subtype,
		map[string]string{"boundary": boundary}))
	return &Writer{
		subtype:  subtype,
		boundary: boundary,
		headers:  headers,
	}, nil
}

func validateBoundary(boundary string) error {
	if len(boundary) == 0 || len(boundary) > maxBoundaryLen {
		return fmt.Errorf("%w: %q must be 1-%d chars", ErrInvalidBoundary, boundary, maxBoundaryLen)
	}
	for i := 0; i < len(boundary); i++ {
		if boundary[i] < 0x20 || boundary[i] >= 0x7f {
			return fmt.Errorf("%w: %q must contain only ASCII chars", ErrInvalidBoundary, boundary)
		}
	}
	return nil
}

// Boundary returns the writer's boundary token.
func (w *Writer) Boundary() string { return w.boundary }

// ContentType returns the full multipart Content-Type value, boundary
// parameter included.
func (w *Writer) ContentType() string { return w.headers.Get(ContentType) }

// Headers returns the writer's own headers, for use on the enclosing
// request or part.
func (w *Writer) Headers() Headers { return w.headers }

// Len returns the number of appended parts.
func (w *Writer) Len() int { return len(w.parts) }

// Append adds a new body part, merging the supplied headers onto payload
// defaults.
func (w *Writer) Append(payload Payload, headers Headers) *PartWriter {
	part := NewPartWriter(payload, headers)
	w.parts = append(w.parts, part)
	return part
}

// AppendPart adds an already constructed part.
func (w *Writer) AppendPart(part *PartWriter) {
	w.parts = append(w.parts, part)
}

// AppendJSON adds a part carrying v marshaled as JSON, forcing
// Content-Type: application/json.
func (w *Writer) AppendJSON(v any, headers Headers) *PartWriter {
	headers = headers.Clone()
	headers.Set(ContentType, "application/json")
	return w.Append(JSONPayload(v), headers)
}

// Serialize produces the multipart body as a finite, non-restartable
// chunk sequence: each part prefixed by the continuation boundary,
// followed by the final boundary marker. An empty writer emits nothing.
func (w *Writer) Serialize() ChunkReader {
	return &writerSerializer{w: w}
}

// ContentLength returns the exact byte length of the serialized body. It
// fails with ErrUnknownLength if any part's length is unknowable.
func (w *Writer) ContentLength() (int64, error) {
	if len(w.parts) == 0 {
		return 0, nil
	}
	// "--" + boundary + "\r\n" per part, "--" + boundary + "--\r\n" once.
	total := int64(len(w.boundary) + 6)
	for _, part := range w.parts {
		n, err := part.PartLength()
		if err != nil {
			return 0, err
		}
		total += int64(len(w.boundary)+4) + n
	}
	return total, nil
}

type writerSerializer struct {
	w      *Writer
	cur    ChunkReader
	idx    int
	closed bool
}

func (s *writerSerializer) NextChunk() ([]byte, error) {
	for {
		if s.cur != nil {
			chunk, err := s.cur.NextChunk()
			if err == io.EOF {
				s.cur = nil
				continue
			}
			return chunk, err
		}
		if s.idx < len(s.w.parts) {
			part := s.w.parts[s.idx]
			s.idx++
			s.cur = part.Serialize()
			return []byte("--" + s.w.boundary + "\r\n"), nil
		}
		if !s.closed {
			s.closed = true
			if len(s.w.parts) == 0 {
				return nil, io.EOF
			}
			return []byte("--" + s.w.boundary + "--\r\n"), nil
		}
		return nil, io.EOF
	}
}
