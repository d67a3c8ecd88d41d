package draw

import "io"

// ChunkSource yields successive chunks of a response body. Next returns
// io.EOF once the body is exhausted; a chunk and an error may arrive together.
type ChunkSource interface {
	Next() ([]byte, error)
}

const defaultChunkSize = 4 << 10

// ReaderSource adapts an io.Reader to ChunkSource. The returned chunk is only
// valid until the next call.
type ReaderSource struct {
	r   io.Reader
	buf []byte
}

// NewReaderSource reads r in chunks of up to size bytes (4 KiB if size <= 0).
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = defaultChunkSize
	}
	return &ReaderSource{r: r, buf: make([]byte, size)}
}

// Next implements ChunkSource.
func (s *ReaderSource) Next() ([]byte, error) {
	n, err := s.r.Read(s.buf)
	return s.buf[:n], err
}

// Consume drives r from src until it settles. Each chunk is fully processed
// before the next read, and reading stops as soon as the outcome is fixed.
func Consume(src ChunkSource, r *Resolver) (*Outcome, error) {
	for !r.Settled() {
		chunk, err := src.Next()
		if len(chunk) > 0 {
			r.Feed(chunk)
		}
		if err == io.EOF {
			r.Finish()
			break
		}
		if err != nil {
			r.Fail(err)
			break
		}
	}
	return r.Result()
}
