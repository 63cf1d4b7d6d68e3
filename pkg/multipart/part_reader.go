package multipart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strconv"

	"github.com/sirosfoundation/go-docstream/pkg/codec"
)

// defaultChunkSize bounds how much of a length-delimited part is pulled
// from the stream per read.
const defaultChunkSize = 8192

var crlf = []byte("\r\n")

// PartReader reads one multipart body part's payload. A part with a
// Content-Length header is length-delimited; otherwise it is terminated by
// the enclosing boundary. Calls on a PartReader must be sequential.
type PartReader struct {
	headers   Headers
	boundary  []byte // "--" + boundary token
	final     []byte // boundary + "--"
	stream    *Stream
	atEOF     bool
	length    int64 // -1 when boundary-delimited
	readBytes int64
	unread    [][]byte
	chunkSize int
}

func newPartReader(boundary []byte, headers Headers, stream *Stream) (*PartReader, error) {
	p := &PartReader{
		headers:   headers,
		boundary:  boundary,
		final:     append(append([]byte(nil), boundary...), '-', '-'),
		stream:    stream,
		length:    -1,
		chunkSize: defaultChunkSize,
	}
	if v := headers.Get(ContentLength); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("multipart: invalid Content-Length %q", v)
		}
		p.length = n
	}
	return p, nil
}

// Headers returns the part's header block.
func (p *PartReader) Headers() Headers { return p.headers }

// AtEOF reports whether the part's payload has been fully consumed.
func (p *PartReader) AtEOF() bool { return p.atEOF }

// Read consumes the entire remaining payload. With decode set, the result
// is passed through Decode according to the Content-Encoding header.
func (p *PartReader) Read(decode bool) ([]byte, error) {
	if p.atEOF {
		return nil, nil
	}
	var data []byte
	if p.length < 0 {
		for !p.atEOF {
			line, err := p.ReadLine()
			if err != nil {
				return nil, err
			}
			data = append(data, line...)
		}
	} else {
		for !p.atEOF {
			chunk, err := p.ReadChunk(p.chunkSize)
			if err != nil {
				return nil, err
			}
			data = append(data, chunk...)
		}
		if err := p.consumeTrailer(); err != nil {
			return nil, err
		}
	}
	if decode {
		return p.Decode(data)
	}
	return data, nil
}

// ReadChunk reads up to min(size, remaining) payload bytes. The part must
// be length-delimited; ErrLengthRequired is returned otherwise.
func (p *PartReader) ReadChunk(size int) ([]byte, error) {
	if p.atEOF {
		return nil, nil
	}
	if p.length < 0 {
		return nil, ErrLengthRequired
	}
	n := int64(size)
	if remaining := p.length - p.readBytes; n > remaining {
		n = remaining
	}
	chunk := make([]byte, n)
	read, err := io.ReadFull(p.stream, chunk)
	p.readBytes += int64(read)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("multipart: stream ended %d bytes short of declared length: %w",
				p.length-p.readBytes, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if p.readBytes == p.length {
		p.atEOF = true
	}
	return chunk, nil
}

// ReadLine reads one payload line including its terminator. A line equal
// to the boundary or final boundary flips AtEOF, goes to the pushback
// buffer and yields an empty result; it is never delivered as payload.
func (p *PartReader) ReadLine() ([]byte, error) {
	if p.atEOF {
		return nil, nil
	}
	line, err := p.stream.ReadLine()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("multipart: stream ended before boundary: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if bytes.HasPrefix(line, p.boundary) {
		// The final boundary may arrive without a trailing CRLF, so
		// compare the stripped line against both forms.
		stripped := bytes.TrimRight(line, "\r\n")
		if bytes.Equal(stripped, p.boundary) || bytes.Equal(stripped, p.final) {
			p.atEOF = true
			p.unread = append(p.unread, line)
			return nil, nil
		}
	}
	return line, nil
}

// Release drains the remaining payload without returning it, leaving the
// stream positioned for the next part.
func (p *PartReader) Release() error {
	if p.atEOF {
		return nil
	}
	if p.length < 0 {
		for !p.atEOF {
			if _, err := p.ReadLine(); err != nil {
				return err
			}
		}
		return nil
	}
	for !p.atEOF {
		if _, err := p.ReadChunk(p.chunkSize); err != nil {
			return err
		}
	}
	return p.consumeTrailer()
}

// consumeTrailer reads the mandatory CRLF that follows a length-delimited
// payload.
func (p *PartReader) consumeTrailer() error {
	line, err := p.stream.ReadLine()
	if err != nil {
		if err == io.EOF {
			return ErrLengthMismatch
		}
		return fmt.Errorf("multipart: failed to read payload trailer: %w", err)
	}
	if !bytes.Equal(line, crlf) {
		return ErrLengthMismatch
	}
	return nil
}

// Decode transforms data according to the part's Content-Encoding header.
// A missing header returns data unchanged; an unregistered encoding is an
// error.
func (p *PartReader) Decode(data []byte) ([]byte, error) {
	name := p.headers.Get(ContentEncoding)
	if name == "" {
		return data, nil
	}
	c, err := codec.Lookup(name)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}

// Text reads the payload as text. The charset argument overrides the
// charset parameter of Content-Type; the fallback is latin1.
func (p *PartReader) Text(charset string) (string, error) {
	data, err := p.Read(true)
	if err != nil {
		return "", err
	}
	if charset == "" {
		charset = p.Charset("latin1")
	}
	out, err := decodeCharset(data, charset)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// JSON reads the payload and unmarshals it into v. The charset argument
// overrides the charset parameter of Content-Type; the fallback is utf-8.
// An empty payload leaves v untouched.
func (p *PartReader) JSON(v any, charset string) error {
	data, err := p.Read(true)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if charset == "" {
		charset = p.Charset("utf-8")
	}
	data, err = decodeCharset(data, charset)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode JSON part: %w", err)
	}
	return nil
}

// Charset returns the charset parameter of the Content-Type header, or def
// when absent.
func (p *PartReader) Charset(def string) string {
	ct := p.headers.Get(ContentType)
	if ct == "" {
		return def
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return def
	}
	if cs, ok := params["charset"]; ok {
		return cs
	}
	return def
}

// takeUnread hands the pushback buffer to the enclosing reader.
func (p *PartReader) takeUnread() [][]byte {
	unread := p.unread
	p.unread = nil
	return unread
}
