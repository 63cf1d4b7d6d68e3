package multipart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
)

// PartWriter serializes one outgoing body part: it fills in default
// headers from the payload and produces the part's bytes as a lazy chunk
// sequence.
type PartWriter struct {
	payload   Payload
	headers   Headers
	chunkSize int
}

// NewPartWriter builds a part from a payload, filling in defaults for any
// header the caller did not supply: Content-Length when the payload length
// is knowable, Content-Type guessed from the payload, and an attachment
// Content-Disposition when a filename is known.
func NewPartWriter(payload Payload, headers Headers) *PartWriter {
	w := &PartWriter{
		payload:   payload,
		headers:   headers.Clone(),
		chunkSize: defaultChunkSize,
	}
	w.fillDefaults()
	return w
}

// Headers returns the part's header block, defaults included.
func (w *PartWriter) Headers() Headers { return w.headers }

func (w *PartWriter) fillDefaults() {
	if !w.headers.Has(ContentLength) {
		if n, ok := w.payload.guessLength(); ok {
			w.headers.Set(ContentLength, strconv.FormatInt(n, 10))
		}
	}
	if !w.headers.Has(ContentType) {
		if ct := w.guessContentType(); ct != "" {
			w.headers.Set(ContentType, ct)
		}
	}
	if !w.headers.Has(ContentDisposition) {
		if w.payload.name != "" {
			// Only fails on invalid token characters, which a filename
			// parameter cannot produce.
			_ = w.SetContentDisposition("attachment", Param{"filename", filepath.Base(w.payload.name)})
		}
	}
}

func (w *PartWriter) guessContentType() string {
	if w.payload.name != "" {
		if ct := mime.TypeByExtension(filepath.Ext(w.payload.name)); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
	if w.payload.kind == payloadText {
		return "text/plain; charset=utf-8"
	}
	if w.payload.kind == payloadNested {
		return w.payload.nested.ContentType()
	}
	return "application/octet-stream"
}

// Serialize produces the part as a finite, non-restartable chunk sequence:
// header block, blank-line separator, encoded payload, trailing CRLF.
func (w *PartWriter) Serialize() ChunkReader {
	return &partSerializer{w: w}
}

// PartLength returns the exact serialized byte count of the part, or
// ErrUnknownLength when the payload length is unknowable (a stream without
// a declared size).
func (w *PartWriter) PartLength() (int64, error) {
	total := int64(len(w.headerBlock()))
	n, err := w.payloadLength()
	if err != nil {
		return 0, err
	}
	return total + n + int64(len(crlf)), nil
}

func (w *PartWriter) payloadLength() (int64, error) {
	switch w.payload.kind {
	case payloadBytes:
		return int64(len(w.payload.data)), nil
	case payloadText:
		data, err := encodeCharset([]byte(w.payload.text), w.charsetParam("us-ascii"))
		if err != nil {
			return 0, err
		}
		return int64(len(data)), nil
	case payloadStream:
		if w.payload.size < 0 {
			return 0, ErrUnknownLength
		}
		return w.payload.size, nil
	case payloadNested:
		return w.payload.nested.ContentLength()
	case payloadJSON:
		data, err := w.marshalJSON()
		if err != nil {
			return 0, err
		}
		return int64(len(data)), nil
	}
	return 0, ErrUnknownPayload
}

// headerBlock renders the header lines plus the blank-line separator.
// Header names and values are ASCII on the wire.
func (w *PartWriter) headerBlock() []byte {
	var buf bytes.Buffer
	for _, hdr := range w.headers {
		buf.WriteString(hdr.Name)
		buf.WriteString(": ")
		buf.WriteString(hdr.Value)
		buf.Write(crlf)
	}
	buf.Write(crlf)
	return buf.Bytes()
}

// charsetParam returns the charset parameter of the part's Content-Type,
// or def when absent.
func (w *PartWriter) charsetParam(def string) string {
	ct := w.headers.Get(ContentType)
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

func (w *PartWriter) marshalJSON() ([]byte, error) {
	data, err := json.Marshal(w.payload.value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON part: %w", err)
	}
	return encodeCharset(data, w.charsetParam("utf-8"))
}

// payloadChunks builds the per-variant payload producer; the variant set
// is closed, so the match is exhaustive.
func (w *PartWriter) payloadChunks() (ChunkReader, error) {
	switch w.payload.kind {
	case payloadBytes:
		return &singleChunk{data: w.payload.data}, nil
	case payloadText:
		data, err := encodeCharset([]byte(w.payload.text), w.charsetParam("us-ascii"))
		if err != nil {
			return nil, err
		}
		return &singleChunk{data: data}, nil
	case payloadStream:
		return &streamChunks{r: w.payload.reader, size: w.chunkSize}, nil
	case payloadNested:
		return w.payload.nested.Serialize(), nil
	case payloadJSON:
		data, err := w.marshalJSON()
		if err != nil {
			return nil, err
		}
		return &singleChunk{data: data}, nil
	}
	return nil, ErrUnknownPayload
}

type partSerializer struct {
	w       *PartWriter
	payload ChunkReader
	state   int // 0 headers, 1 payload, 2 trailer, 3 done
}

func (s *partSerializer) NextChunk() ([]byte, error) {
	switch s.state {
	case 0:
		s.state = 1
		return s.w.headerBlock(), nil
	case 1:
		if s.payload == nil {
			payload, err := s.w.payloadChunks()
			if err != nil {
				s.state = 3
				return nil, err
			}
			s.payload = payload
		}
		chunk, err := s.payload.NextChunk()
		if err == io.EOF {
			s.state = 3
			return crlf, nil
		}
		if err != nil {
			s.state = 3
			return nil, err
		}
		return chunk, nil
	default:
		return nil, io.EOF
	}
}

// Param is one Content-Disposition parameter.
type Param struct {
	Key   string
	Value string
}

// SetContentDisposition sets the Content-Disposition header. The
// disposition type and parameter names must be valid HTTP tokens;
// parameter values are percent-encoded. A filename parameter is emitted
// both in the legacy quoted form and as an RFC 5987 extended filename*.
func (w *PartWriter) SetContentDisposition(disptype string, params ...Param) error {
	if disptype == "" || !isToken(disptype) {
		return fmt.Errorf("multipart: bad content disposition type %q", disptype)
	}
	value := disptype
	var rendered []string
	for _, p := range params {
		if p.Key == "" || !isToken(p.Key) {
			return fmt.Errorf("multipart: bad content disposition parameter %q=%q", p.Key, p.Value)
		}
		quoted := percentEncode(p.Value)
		if strings.EqualFold(p.Key, "filename") {
			rendered = append(rendered, `filename="`+quoted+`"`)
			rendered = append(rendered, "filename*=utf-8''"+quoted)
		} else {
			rendered = append(rendered, p.Key+"="+quoted)
		}
	}
	if len(rendered) > 0 {
		value += "; " + strings.Join(rendered, "; ")
	}
	w.headers.Set(ContentDisposition, value)
	return nil
}

// isToken reports whether s consists only of HTTP token characters:
// printable ASCII minus the RFC 2616 separators.
func isToken(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c >= 0x7f {
			return false
		}
		switch c {
		case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"', '/', '[', ']', '?', '=', '{', '}':
			return false
		}
	}
	return len(s) > 0
}

const upperhex = "0123456789ABCDEF"

// percentEncode escapes everything outside the unreserved set, byte by
// byte over the UTF-8 form.
func percentEncode(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '-' || c == '_' || c == '.' || c == '~' {
			buf.WriteByte(c)
			continue
		}
		buf.WriteByte('%')
		buf.WriteByte(upperhex[c>>4])
		buf.WriteByte(upperhex[c&0xf])
	}
	return buf.String()
}
