package multipart

import (
	"io"
	"net/http"
)

// ResponseWrapper ties a Reader to the HTTP response that owns its stream,
// releasing the underlying connection once the body has been fully read.
// The caller never manages the connection separately.
type ResponseWrapper struct {
	reader   *Reader
	body     io.Closer
	released bool
}

// WrapResponse constructs a reader over an HTTP response body. The
// response's Content-Type must declare a multipart body.
func WrapResponse(resp *http.Response) (*ResponseWrapper, error) {
	var headers Headers
	for name, values := range resp.Header {
		for _, v := range values {
			headers.Add(name, v)
		}
	}
	reader, err := NewReader(headers, resp.Body)
	if err != nil {
		return nil, err
	}
	return &ResponseWrapper{reader: reader, body: resp.Body}, nil
}

// NextPart emits the next body part. Once the reader turns terminal the
// connection is released before io.EOF is reported.
func (w *ResponseWrapper) NextPart() (Part, error) {
	part, err := w.reader.NextPart()
	if err != nil {
		if err == io.EOF {
			if relErr := w.Release(); relErr != nil {
				return nil, relErr
			}
		}
		return nil, err
	}
	if w.reader.AtEOF() {
		if err := w.Release(); err != nil {
			return nil, err
		}
	}
	return part, nil
}

// AtEOF reports whether the wrapped reader is terminal.
func (w *ResponseWrapper) AtEOF() bool { return w.reader.AtEOF() }

// Release drains any unread parts and closes the response body.
func (w *ResponseWrapper) Release() error {
	if w.released {
		return nil
	}
	w.released = true
	if !w.reader.AtEOF() {
		if err := w.reader.Release(); err != nil {
			w.body.Close()
			return err
		}
	}
	return w.body.Close()
}
