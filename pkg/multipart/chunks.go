package multipart

import "io"

// ChunkReader is a finite, non-restartable pull-based byte-chunk producer.
// Each NextChunk call performs exactly one unit of work; io.EOF marks
// exhaustion. Serialized writer output implements this interface and is
// suitable for direct transport writes.
type ChunkReader interface {
	NextChunk() ([]byte, error)
}

// ChunkStream adapts a ChunkReader to an io.Reader, for use as an HTTP
// request body.
func ChunkStream(cr ChunkReader) io.Reader {
	return &chunkStream{cr: cr}
}

type chunkStream struct {
	cr  ChunkReader
	buf []byte
	err error
}

func (s *chunkStream) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		chunk, err := s.cr.NextChunk()
		if err != nil {
			s.err = err
			if len(chunk) == 0 {
				return 0, err
			}
		}
		s.buf = chunk
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// WriteChunks drains a ChunkReader into w, returning the bytes written.
func WriteChunks(w io.Writer, cr ChunkReader) (int64, error) {
	var total int64
	for {
		chunk, err := cr.NextChunk()
		if len(chunk) > 0 {
			n, werr := w.Write(chunk)
			total += int64(n)
			if werr != nil {
				return total, werr
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// singleChunk emits one chunk and then io.EOF.
type singleChunk struct {
	data []byte
	done bool
}

func (s *singleChunk) NextChunk() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.data, nil
}

// streamChunks forwards an io.Reader in bounded pieces.
type streamChunks struct {
	r    io.Reader
	size int
	done bool
}

func (s *streamChunks) NextChunk() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	buf := make([]byte, s.size)
	for {
		n, err := s.r.Read(buf)
		if err == io.EOF {
			s.done = true
			if n == 0 {
				return nil, io.EOF
			}
			return buf[:n], nil
		}
		if err != nil {
			s.done = true
			return nil, err
		}
		// Readers may legally return (0, nil); never surface that as an
		// empty chunk.
		if n > 0 {
			return buf[:n], nil
		}
	}
}
