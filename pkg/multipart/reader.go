package multipart

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
)

// maxBoundaryLen is the RFC 2046 limit on boundary tokens.
const maxBoundaryLen = 70

// Part is one segment of a multipart body. Concrete types are *PartReader
// for plain parts and *Reader for nested multipart/* parts.
type Part interface {
	Headers() Headers
	AtEOF() bool
	Release() error

	takeUnread() [][]byte
}

// Reader splits a multipart body into an ordered sequence of parts. It
// owns boundary scanning, header parsing and automatic draining of parts
// the caller did not finish. Calls on a Reader must be sequential.
type Reader struct {
	headers  Headers
	boundary []byte // "--" + boundary token
	final    []byte // boundary + "--"
	stream   *Stream
	last     Part
	atEOF    bool
	unread   [][]byte
}

// NewReader constructs a reader over a multipart body. The headers must
// declare a multipart/* Content-Type with a boundary parameter of at most
// 70 ASCII characters.
func NewReader(headers Headers, r io.Reader) (*Reader, error) {
	return newReader(headers, NewStream(r))
}

func newReader(headers Headers, stream *Stream) (*Reader, error) {
	token, err := extractBoundary(headers)
	if err != nil {
		return nil, err
	}
	boundary := []byte("--" + token)
	return &Reader{
		headers:  headers,
		boundary: boundary,
		final:    append(append([]byte(nil), boundary...), '-', '-'),
		stream:   stream,
	}, nil
}

func extractBoundary(headers Headers) (string, error) {
	ct := headers.Get(ContentType)
	mediatype, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("multipart: failed to parse Content-Type %q: %w", ct, err)
	}
	if !strings.HasPrefix(mediatype, "multipart/") {
		return "", fmt.Errorf("multipart: multipart/* content type expected, got %q", mediatype)
	}
	boundary, ok := params["boundary"]
	if !ok {
		return "", fmt.Errorf("%w: boundary missing in Content-Type %q", ErrInvalidBoundary, ct)
	}
	if len(boundary) == 0 {
		return "", fmt.Errorf("%w: empty boundary in Content-Type %q", ErrInvalidBoundary, ct)
	}
	if len(boundary) > maxBoundaryLen {
		return "", fmt.Errorf("%w: %q exceeds %d chars", ErrInvalidBoundary, boundary, maxBoundaryLen)
	}
	for i := 0; i < len(boundary); i++ {
		if boundary[i] >= 0x80 {
			return "", fmt.Errorf("%w: %q is not ASCII", ErrInvalidBoundary, boundary)
		}
	}
	return boundary, nil
}

// Headers returns the headers the reader was constructed with.
func (r *Reader) Headers() Headers { return r.headers }

// AtEOF reports whether the final boundary was reached. A reader at EOF is
// terminal and produces no further parts.
func (r *Reader) AtEOF() bool { return r.atEOF }

// NextPart returns the next body part in wire order, or io.EOF once the
// final boundary has been read. A previous part that was not fully
// consumed is drained first.
func (r *Reader) NextPart() (Part, error) {
	if r.atEOF {
		return nil, io.EOF
	}
	if err := r.releaseLast(); err != nil {
		return nil, err
	}
	if err := r.readBoundary(); err != nil {
		return nil, err
	}
	if r.atEOF {
		return nil, io.EOF
	}
	headers, err := r.readHeaders()
	if err != nil {
		return nil, err
	}
	part, err := r.newPart(headers)
	if err != nil {
		return nil, err
	}
	r.last = part
	return part, nil
}

// Release reads all remaining body parts to the void, up to and including
// the final boundary.
func (r *Reader) Release() error {
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := part.Release(); err != nil {
			return err
		}
	}
}

// newPart dispatches on the part's own Content-Type: multipart/* parts
// become nested readers over the same stream, everything else a
// PartReader scoped to this reader's boundary.
func (r *Reader) newPart(headers Headers) (Part, error) {
	ct := headers.Get(ContentType)
	if ct != "" {
		if mediatype, _, err := mime.ParseMediaType(ct); err == nil &&
			strings.HasPrefix(mediatype, "multipart/") {
			return newReader(headers, r.stream)
		}
	}
	return newPartReader(r.boundary, headers, r.stream)
}

// releaseLast drains the previously produced part and recovers its
// pushback buffer, so the boundary line it consumed feeds the next read.
func (r *Reader) releaseLast() error {
	if r.last == nil {
		return nil
	}
	if !r.last.AtEOF() {
		if err := r.last.Release(); err != nil {
			return err
		}
	}
	r.unread = append(r.unread, r.last.takeUnread()...)
	r.last = nil
	return nil
}

// readLine pops the pushback buffer before touching the stream.
func (r *Reader) readLine() ([]byte, error) {
	if n := len(r.unread); n > 0 {
		line := r.unread[n-1]
		r.unread = r.unread[:n-1]
		return line, nil
	}
	line, err := r.stream.ReadLine()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("multipart: stream ended before boundary: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	return line, nil
}

func (r *Reader) readBoundary() error {
	for {
		line, err := r.readLine()
		if err != nil {
			return err
		}
		stripped := bytes.TrimRight(line, " \t\r\n")
		switch {
		case len(stripped) == 0:
			// A part's trailing CRLF lands here when the payload itself
			// ended on a line terminator, e.g. a nested multipart body.
			continue
		case bytes.Equal(stripped, r.boundary):
			return nil
		case bytes.Equal(stripped, r.final):
			r.atEOF = true
			return nil
		default:
			return fmt.Errorf("%w: got %q, expected %q", ErrBadBoundaryLine, stripped, r.boundary)
		}
	}
}

// readHeaders parses the header block of the next part: one "Name: value"
// line per header up to a blank line, preserving order and duplicates.
// Folded continuation lines extend the previous value.
func (r *Reader) readHeaders() (Headers, error) {
	var headers Headers
	for {
		raw, err := r.stream.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("multipart: stream ended inside header block: %w", io.ErrUnexpectedEOF)
			}
			return nil, err
		}
		line := strings.TrimRight(string(raw), "\r\n")
		if line == "" {
			return headers, nil
		}
		if line[0] == ' ' || line[0] == '\t' {
			if len(headers) == 0 {
				return nil, fmt.Errorf("multipart: continuation line before first header: %q", line)
			}
			headers[len(headers)-1].Value += " " + strings.TrimSpace(line)
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("multipart: malformed header line %q", line)
		}
		headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
}

// takeUnread hands the pushback buffer to the enclosing reader.
func (r *Reader) takeUnread() [][]byte {
	unread := r.unread
	r.unread = nil
	return unread
}
