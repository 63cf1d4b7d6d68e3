package multipart

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-docstream/pkg/codec"
)

func newTestReader(t *testing.T, contentType, body string) *Reader {
	t.Helper()
	var headers Headers
	headers.Set(ContentType, contentType)
	reader, err := NewReader(headers, strings.NewReader(body))
	require.NoError(t, err)
	return reader
}

func TestNewReader_ValidatesContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"not multipart", "text/plain"},
		{"boundary missing", "multipart/mixed"},
		{"boundary empty", `multipart/mixed; boundary=""`},
		{"boundary too long", `multipart/mixed; boundary="` + strings.Repeat("x", 71) + `"`},
		{"empty value", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers Headers
			headers.Set(ContentType, tt.contentType)
			_, err := NewReader(headers, strings.NewReader(""))
			assert.Error(t, err)
		})
	}
}

func TestNewReader_EmptyBoundaryMessage(t *testing.T) {
	var headers Headers
	headers.Set(ContentType, `multipart/mixed; boundary=""`)
	_, err := NewReader(headers, strings.NewReader(""))
	require.ErrorIs(t, err, ErrInvalidBoundary)
	assert.Contains(t, err.Error(), "empty boundary")
}

func TestReader_ThreeJSONParts(t *testing.T) {
	body := "--XYZ\r\nContent-Type: application/json\r\n\r\n{\"a\": 1}\r\n" +
		"--XYZ\r\nContent-Type: application/json\r\n\r\n{\"a\": 1}\r\n" +
		"--XYZ\r\nContent-Type: application/json\r\n\r\n{\"a\": 1}\r\n" +
		"--XYZ--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=XYZ", body)

	for i := 0; i < 3; i++ {
		part, err := reader.NextPart()
		require.NoError(t, err, "part %d", i)
		pr, ok := part.(*PartReader)
		require.True(t, ok)
		assert.Equal(t, "application/json", pr.Headers().Get(ContentType))

		var value map[string]any
		require.NoError(t, pr.JSON(&value, ""))
		assert.Equal(t, map[string]any{"a": float64(1)}, value)
	}

	_, err := reader.NextPart()
	assert.Equal(t, io.EOF, err)
	assert.True(t, reader.AtEOF())

	// Terminal stays terminal.
	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestReader_MalformedBoundaryLine(t *testing.T) {
	body := "--WRONG\r\nContent-Type: text/plain\r\n\r\nhi\r\n--XYZ--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=XYZ", body)

	_, err := reader.NextPart()
	assert.ErrorIs(t, err, ErrBadBoundaryLine)
}

func TestReader_LengthDelimitedPart(t *testing.T) {
	body := "--b\r\nContent-Length: 4\r\n\r\ndata\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)
	pr := part.(*PartReader)

	data, err := pr.Read(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
	assert.Equal(t, int64(4), pr.readBytes)
	assert.True(t, pr.AtEOF())

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestReader_LengthDelimitedMissingTrailer(t *testing.T) {
	// Declared length consumed but no CRLF follows the payload.
	body := "--b\r\nContent-Length: 4\r\n\r\ndata--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)

	_, err = part.(*PartReader).Read(false)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestPartReader_ReadLineFlipsEOFOnBoundary(t *testing.T) {
	body := "--b\r\nContent-Type: text/plain\r\n\r\nfirst\r\nsecond\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)
	pr := part.(*PartReader)

	line, err := pr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, []byte("first\r\n"), line)

	line, err = pr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, []byte("second\r\n"), line)

	// The boundary line is never delivered as payload: it flips EOF and
	// lands in the pushback buffer instead.
	line, err = pr.ReadLine()
	require.NoError(t, err)
	assert.Empty(t, line)
	assert.True(t, pr.AtEOF())
	require.Len(t, pr.unread, 1)
	assert.Equal(t, []byte("--b--\r\n"), pr.unread[0])

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestPartReader_ChunkedReadRequiresLength(t *testing.T) {
	body := "--b\r\nContent-Type: text/plain\r\n\r\nhi\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)

	_, err = part.(*PartReader).ReadChunk(16)
	assert.ErrorIs(t, err, ErrLengthRequired)
}

func TestPartReader_ChunkedReadAccounting(t *testing.T) {
	body := "--b\r\nContent-Length: 10\r\n\r\n0123456789\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)
	pr := part.(*PartReader)

	chunk, err := pr.ReadChunk(4)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123"), chunk)
	assert.False(t, pr.AtEOF())

	chunk, err = pr.ReadChunk(100)
	require.NoError(t, err)
	assert.Equal(t, []byte("456789"), chunk)
	assert.True(t, pr.AtEOF())
	assert.Equal(t, int64(10), pr.readBytes)
}

func TestReader_SkipsUnreadParts(t *testing.T) {
	body := "--b\r\nContent-Type: text/plain\r\n\r\nskip me\r\n" +
		"--b\r\nContent-Length: 4\r\n\r\nkeep\r\n" +
		"--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	_, err := reader.NextPart()
	require.NoError(t, err)

	// The first part was never read; NextPart drains it automatically.
	part, err := reader.NextPart()
	require.NoError(t, err)

	data, err := part.(*PartReader).Read(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), data)
}

func TestReader_Release(t *testing.T) {
	body := "--b\r\nContent-Type: text/plain\r\n\r\none\r\n" +
		"--b\r\nContent-Type: text/plain\r\n\r\ntwo\r\n" +
		"--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	require.NoError(t, reader.Release())
	assert.True(t, reader.AtEOF())

	_, err := reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestReader_NestedMultipart(t *testing.T) {
	body := "--outer\r\n" +
		"Content-Type: multipart/related; boundary=inner\r\n" +
		"\r\n" +
		"--inner\r\nContent-Type: text/plain\r\n\r\nnested text\r\n--inner--\r\n" +
		"--outer\r\nContent-Length: 5\r\n\r\nplain\r\n" +
		"--outer--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=outer", body)

	part, err := reader.NextPart()
	require.NoError(t, err)
	nested, ok := part.(*Reader)
	require.True(t, ok, "multipart/* part must surface as a nested reader")

	inner, err := nested.NextPart()
	require.NoError(t, err)
	text, err := inner.(*PartReader).Text("")
	require.NoError(t, err)
	assert.Equal(t, "nested text\r\n", text)

	_, err = nested.NextPart()
	assert.Equal(t, io.EOF, err)

	part, err = reader.NextPart()
	require.NoError(t, err)
	data, err := part.(*PartReader).Read(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), data)

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestReader_NestedMultipartDrainedWhenSkipped(t *testing.T) {
	body := "--outer\r\n" +
		"Content-Type: multipart/related; boundary=inner\r\n" +
		"\r\n" +
		"--inner\r\nContent-Type: text/plain\r\n\r\nnested\r\n--inner--\r\n" +
		"--outer\r\nContent-Length: 4\r\n\r\nlast\r\n" +
		"--outer--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=outer", body)

	_, err := reader.NextPart()
	require.NoError(t, err)

	// Skip the nested reader entirely; the outer reader must drain it.
	part, err := reader.NextPart()
	require.NoError(t, err)
	data, err := part.(*PartReader).Read(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("last"), data)
}

func TestPartReader_DecodeContentEncoding(t *testing.T) {
	payload := []byte("documents compress well when they repeat repeat repeat")

	for _, encoding := range []string{"gzip", "deflate"} {
		t.Run(encoding, func(t *testing.T) {
			c, err := codec.Lookup(encoding)
			require.NoError(t, err)
			compressed, err := c.Encode(payload)
			require.NoError(t, err)

			var buf strings.Builder
			buf.WriteString("--b\r\n")
			buf.WriteString("Content-Encoding: " + encoding + "\r\n")
			buf.WriteString("Content-Length: ")
			buf.WriteString(strconv.Itoa(len(compressed)))
			buf.WriteString("\r\n\r\n")
			buf.Write(compressed)
			buf.WriteString("\r\n--b--\r\n")

			reader := newTestReader(t, "multipart/mixed; boundary=b", buf.String())
			part, err := reader.NextPart()
			require.NoError(t, err)

			data, err := part.(*PartReader).Read(true)
			require.NoError(t, err)
			assert.Equal(t, payload, data)
		})
	}
}

func TestPartReader_DecodeUnknownEncoding(t *testing.T) {
	body := "--b\r\nContent-Encoding: snappy\r\nContent-Length: 2\r\n\r\nhi\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)

	_, err = part.(*PartReader).Read(true)
	assert.Error(t, err)
}

func TestPartReader_DecodeWithoutEncodingHeader(t *testing.T) {
	body := "--b\r\nContent-Length: 2\r\n\r\nhi\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)

	data, err := part.(*PartReader).Read(true)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)
}

func TestPartReader_TextCharset(t *testing.T) {
	// 0xE9 is "é" in latin1, the fallback charset for text parts.
	body := "--b\r\nContent-Length: 9\r\n\r\ncaf\xe9 menu\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)

	text, err := part.(*PartReader).Text("")
	require.NoError(t, err)
	assert.Equal(t, "café menu", text)
}

func TestPartReader_TextDeclaredCharset(t *testing.T) {
	body := "--b\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: 5\r\n\r\ncaf\xc3\xa9\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)

	text, err := part.(*PartReader).Text("")
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestReader_DuplicateHeadersPreserved(t *testing.T) {
	body := "--b\r\nX-Tag: one\r\nX-Tag: two\r\nContent-Length: 2\r\n\r\nhi\r\n--b--\r\n"
	reader := newTestReader(t, "multipart/mixed; boundary=b", body)

	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, part.Headers().Values("X-Tag"))
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestResponseWrapper_ReleasesConnection(t *testing.T) {
	body := "--b\r\nContent-Length: 3\r\n\r\ndoc\r\n--b--\r\n"
	tracker := &closeTracker{Reader: strings.NewReader(body)}
	resp := &http.Response{
		Header: http.Header{"Content-Type": []string{"multipart/mixed; boundary=b"}},
		Body:   tracker,
	}

	wrapper, err := WrapResponse(resp)
	require.NoError(t, err)

	part, err := wrapper.NextPart()
	require.NoError(t, err)
	data, err := part.(*PartReader).Read(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("doc"), data)

	_, err = wrapper.NextPart()
	assert.Equal(t, io.EOF, err)
	assert.True(t, wrapper.AtEOF())
	assert.True(t, tracker.closed, "reaching end of stream must release the connection")
}

func TestResponseWrapper_ReleaseDrains(t *testing.T) {
	body := "--b\r\nContent-Length: 3\r\n\r\ndoc\r\n--b--\r\n"
	tracker := &closeTracker{Reader: strings.NewReader(body)}
	resp := &http.Response{
		Header: http.Header{"Content-Type": []string{"multipart/mixed; boundary=b"}},
		Body:   tracker,
	}

	wrapper, err := WrapResponse(resp)
	require.NoError(t, err)
	require.NoError(t, wrapper.Release())
	assert.True(t, tracker.closed)
}

