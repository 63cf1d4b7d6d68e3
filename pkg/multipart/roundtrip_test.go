package multipart

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Bodies produced by a Writer must read back part for part with the same
// headers and payload bytes.
func TestRoundTrip(t *testing.T) {
	attachment := []byte("\x00\x01binary attachment bytes\xff\xfe")

	writer := NewWriter("mixed")
	writer.Append(BytesPayload(attachment), nil)

	var textHeaders Headers
	textHeaders.Set(ContentLength, "14")
	writer.Append(TextPayload("document body!"), textHeaders)

	writer.AppendJSON(map[string]any{"ok": true, "rev": "1-abc"}, nil)

	body := serializeToBytes(t, writer.Serialize())
	reader, err := NewReader(writer.Headers(), bytes.NewReader(body))
	require.NoError(t, err)

	part, err := reader.NextPart()
	require.NoError(t, err)
	data, err := part.(*PartReader).Read(false)
	require.NoError(t, err)
	assert.Equal(t, attachment, data)
	assert.Equal(t, "application/octet-stream", part.Headers().Get(ContentType))

	part, err = reader.NextPart()
	require.NoError(t, err)
	text, err := part.(*PartReader).Text("")
	require.NoError(t, err)
	assert.Equal(t, "document body!", text)
	assert.Equal(t, "text/plain; charset=utf-8", part.Headers().Get(ContentType))

	part, err = reader.NextPart()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, part.(*PartReader).JSON(&decoded, ""))
	assert.Equal(t, map[string]any{"ok": true, "rev": "1-abc"}, decoded)

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
	assert.True(t, reader.AtEOF())
}

func TestRoundTrip_CustomHeaders(t *testing.T) {
	var headers Headers
	headers.Add("X-Doc-Rev", "1-abc")
	headers.Add("X-Doc-Rev", "2-def")
	headers.Add("X-Doc-Id", "doc/7")

	writer := NewWriter("mixed")
	writer.Append(BytesPayload([]byte("payload")), headers)

	body := serializeToBytes(t, writer.Serialize())
	reader, err := NewReader(writer.Headers(), bytes.NewReader(body))
	require.NoError(t, err)

	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, []string{"1-abc", "2-def"}, part.Headers().Values("X-Doc-Rev"))
	assert.Equal(t, "doc/7", part.Headers().Get("X-Doc-Id"))
}

func TestRoundTrip_Nested(t *testing.T) {
	inner := NewWriter("related")
	inner.Append(BytesPayload([]byte("inner doc")), nil)

	outer := NewWriter("mixed")
	outer.Append(NestedPayload(inner), nil)
	outer.Append(BytesPayload([]byte("outer doc")), nil)

	body := serializeToBytes(t, outer.Serialize())
	reader, err := NewReader(outer.Headers(), bytes.NewReader(body))
	require.NoError(t, err)

	part, err := reader.NextPart()
	require.NoError(t, err)
	nested, ok := part.(*Reader)
	require.True(t, ok)

	innerPart, err := nested.NextPart()
	require.NoError(t, err)
	data, err := innerPart.(*PartReader).Read(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("inner doc"), data)

	_, err = nested.NextPart()
	assert.Equal(t, io.EOF, err)

	part, err = reader.NextPart()
	require.NoError(t, err)
	data, err = part.(*PartReader).Read(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("outer doc"), data)

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestHeaders_Operations(t *testing.T) {
	var h Headers
	h.Add("Content-Type", "text/plain")
	h.Add("x-tag", "a")
	h.Add("X-Tag", "b")

	assert.Equal(t, "text/plain", h.Get("content-type"))
	assert.Equal(t, []string{"a", "b"}, h.Values("X-TAG"))
	assert.True(t, h.Has("X-Tag"))
	assert.False(t, h.Has("X-Other"))

	h.Set("X-Tag", "c")
	assert.Equal(t, []string{"c"}, h.Values("X-Tag"))

	clone := h.Clone()
	clone.Set("Content-Type", "application/json")
	assert.Equal(t, "text/plain", h.Get("Content-Type"))
}
