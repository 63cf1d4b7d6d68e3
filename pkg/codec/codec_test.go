package codec

import (
	"bytes"
	"compress/flate"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":       {},
		"single byte": {0x42},
		"multi chunk": bytes.Repeat([]byte("bulk document content "), 4096),
	}

	for _, name := range []string{"gzip", "deflate"} {
		c, err := Lookup(name)
		require.NoError(t, err)

		for label, payload := range payloads {
			t.Run(name+"/"+label, func(t *testing.T) {
				encoded, err := c.Encode(payload)
				require.NoError(t, err)

				decoded, err := c.Decode(encoded)
				require.NoError(t, err)
				assert.Equal(t, payload, decoded)
			})
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	c, err := Lookup("GZIP")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestLookup_UnknownEncoding(t *testing.T) {
	_, err := Lookup("snappy")
	assert.Error(t, err)
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	reg.Register("x-deflate", NewDeflateCodec())

	c, err := reg.Lookup("X-Deflate")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestDeflate_RawFraming(t *testing.T) {
	// The deflate codec must produce raw DEFLATE, without a zlib header.
	c := NewDeflateCodec()
	encoded, err := c.Encode([]byte("raw deflate data"))
	require.NoError(t, err)

	reader := flate.NewReader(bytes.NewReader(encoded))
	defer reader.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(reader)
	require.NoError(t, err)
	assert.Equal(t, "raw deflate data", buf.String())
}

func TestGzipCodec_Level(t *testing.T) {
	c := NewGzipCodecWithLevel(9)
	encoded, err := c.Encode([]byte("compressed at max level"))
	require.NoError(t, err)

	decoded, err := NewGzipCodec().Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("compressed at max level"), decoded)
}
