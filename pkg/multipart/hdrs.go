// Package multipart implements streaming MIME multipart reading and writing
package multipart

import "strings"

// Header names used by this layer.
const (
	ContentDisposition      = "Content-Disposition"
	ContentEncoding         = "Content-Encoding"
	ContentID               = "Content-ID"
	ContentLength           = "Content-Length"
	ContentTransferEncoding = "Content-Transfer-Encoding"
	ContentType             = "Content-Type"
)

// Header is a single name/value pair.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered, case-insensitive header collection. Insertion
// order is preserved and duplicate names are allowed, so a parsed header
// block can be re-emitted byte for byte.
type Headers []Header

// Get returns the first value for name, or "" if absent. Name comparison
// is case-insensitive.
func (h Headers) Get(name string) string {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value
		}
	}
	return ""
}

// Values returns all values for name in insertion order.
func (h Headers) Values(name string) []string {
	var values []string
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			values = append(values, hdr.Value)
		}
	}
	return values
}

// Has reports whether a header with the given name is present.
func (h Headers) Has(name string) bool {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			return true
		}
	}
	return false
}

// Add appends a header, keeping any existing entries with the same name.
func (h *Headers) Add(name, value string) {
	*h = append(*h, Header{Name: name, Value: value})
}

// Set replaces the first header with the given name, removing any further
// duplicates, or appends if absent.
func (h *Headers) Set(name, value string) {
	out := (*h)[:0]
	replaced := false
	for _, hdr := range *h {
		if strings.EqualFold(hdr.Name, name) {
			if !replaced {
				out = append(out, Header{Name: hdr.Name, Value: value})
				replaced = true
			}
			continue
		}
		out = append(out, hdr)
	}
	if !replaced {
		out = append(out, Header{Name: name, Value: value})
	}
	*h = out
}

// Clone returns a copy that shares no storage with the original.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	out := make(Headers, len(h))
	copy(out, h)
	return out
}
