// Package codec implements Content-Encoding codecs for multipart payloads
package codec

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// Codec encodes and decodes one Content-Encoding scheme. Encode and Decode
// are exact inverses for any payload.
type Codec interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// Registry maps Content-Encoding tokens to codecs. Lookups are
// case-insensitive; an unregistered token is an error.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry returns a registry preloaded with the gzip and deflate
// codecs at default compression level.
func NewRegistry() *Registry {
	return &Registry{codecs: map[string]Codec{
		"gzip":    NewGzipCodec(),
		"deflate": NewDeflateCodec(),
	}}
}

// Register adds or replaces a codec for the given encoding token.
func (r *Registry) Register(name string, c Codec) {
	r.codecs[strings.ToLower(name)] = c
}

// Lookup returns the codec for the given encoding token.
func (r *Registry) Lookup(name string) (Codec, error) {
	c, ok := r.codecs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("codec: unknown content encoding %q", name)
	}
	return c, nil
}

// Default is the registry used by package-level Lookup.
var Default = NewRegistry()

// Lookup returns the codec for the given encoding token from the default
// registry.
func Lookup(name string) (Codec, error) {
	return Default.Lookup(name)
}

// GzipCodec implements gzip framing.
type GzipCodec struct {
	level int
}

// NewGzipCodec creates a gzip codec with default compression level.
func NewGzipCodec() *GzipCodec {
	return &GzipCodec{level: gzip.DefaultCompression}
}

// NewGzipCodecWithLevel creates a gzip codec with the specified
// compression level.
func NewGzipCodecWithLevel(level int) *GzipCodec {
	return &GzipCodec{level: level}
}

// Encode compresses data using gzip.
func (c *GzipCodec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode decompresses gzip data.
func (c *GzipCodec) Decode(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read compressed data: %w", err)
	}

	return buf.Bytes(), nil
}

// DeflateCodec implements raw DEFLATE, without zlib or gzip framing.
type DeflateCodec struct {
	level int
}

// NewDeflateCodec creates a deflate codec with default compression level.
func NewDeflateCodec() *DeflateCodec {
	return &DeflateCodec{level: flate.DefaultCompression}
}

// NewDeflateCodecWithLevel creates a deflate codec with the specified
// compression level.
func NewDeflateCodecWithLevel(level int) *DeflateCodec {
	return &DeflateCodec{level: level}
}

// Encode compresses data using raw DEFLATE.
func (c *DeflateCodec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := flate.NewWriter(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close deflate writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode decompresses raw DEFLATE data.
func (c *DeflateCodec) Decode(data []byte) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(data))
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read compressed data: %w", err)
	}

	return buf.Bytes(), nil
}
