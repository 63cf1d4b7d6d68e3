package multipart

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// charsetEncoding resolves a charset token to a text encoding. UTF-8 and
// US-ASCII need no transformation and resolve to nil.
func charsetEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return nil, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		// htmlindex maps latin1 labels to windows-1252; header charsets
		// mean strict ISO 8859-1 here.
		return charmap.ISO8859_1, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", name, err)
	}
	return enc, nil
}

// decodeCharset converts data from the named charset to UTF-8.
func decodeCharset(data []byte, name string) ([]byte, error) {
	enc, err := charsetEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return data, nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s text: %w", name, err)
	}
	return out, nil
}

// encodeCharset converts UTF-8 data to the named charset.
func encodeCharset(data []byte, name string) ([]byte, error) {
	enc, err := charsetEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return data, nil
	}
	out, err := enc.NewEncoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s text: %w", name, err)
	}
	return out, nil
}
