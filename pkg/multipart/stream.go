package multipart

import (
	"bufio"
	"io"
)

// Stream is the sequential byte-stream source a reader consumes. It wraps
// the underlying transport body with buffering so parts can be read both
// by line and by fixed-size chunk. A Stream is exclusively owned by the
// active reader chain; nested readers share their parent's Stream.
type Stream struct {
	br *bufio.Reader
}

// NewStream wraps r for sequential line and chunk reads.
func NewStream(r io.Reader) *Stream {
	return &Stream{br: bufio.NewReader(r)}
}

// Read reads up to len(p) bytes from the stream.
func (s *Stream) Read(p []byte) (int, error) {
	return s.br.Read(p)
}

// ReadLine returns the next line including its terminator. A final
// unterminated line is returned with a nil error; io.EOF is only returned
// once no data remains.
func (s *Stream) ReadLine() ([]byte, error) {
	line, err := s.br.ReadBytes('\n')
	if len(line) > 0 && err == io.EOF {
		return line, nil
	}
	if err != nil {
		return nil, err
	}
	return line, nil
}
