// Package feed streams continuous responses as discrete chunks
package feed

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

const (
	// DefaultCapacity is the chunk-channel capacity: how far the producer
	// may run ahead of the consumer before blocking.
	DefaultCapacity = 16

	// maxChunkSize bounds a single chunk read from the source.
	maxChunkSize = 1 << 20
)

// Feed emits whitespace-trimmed, non-empty chunks from a continuous byte
// stream. A background goroutine reads the source line by line and hands
// chunks to Next over a bounded channel.
type Feed struct {
	ch        chan []byte
	quit      chan struct{}
	closeOnce sync.Once
	done      atomic.Bool
	err       error
}

// New wraps r with the default channel capacity.
func New(r io.Reader) *Feed {
	return NewWithCapacity(r, DefaultCapacity)
}

// NewWithCapacity wraps r with an explicit channel capacity. The producer
// blocks once the consumer lags behind by capacity chunks.
func NewWithCapacity(r io.Reader, capacity int) *Feed {
	f := &Feed{
		ch:   make(chan []byte, capacity),
		quit: make(chan struct{}),
	}
	go f.produce(r)
	return f
}

func (f *Feed) produce(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxChunkSize)
	for scanner.Scan() {
		chunk := bytes.TrimSpace(scanner.Bytes())
		if len(chunk) == 0 {
			continue
		}
		select {
		case f.ch <- append([]byte(nil), chunk...):
		case <-f.quit:
			return
		}
	}
	f.err = scanner.Err()
	f.done.Store(true)
	close(f.ch)
}

// Close abandons the feed. The producer goroutine stops as soon as it is
// not blocked inside a source read, buffered chunks are discarded, and
// every subsequent Next returns io.EOF. Close is idempotent and safe to
// call concurrently with Next.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.done.Store(true)
		close(f.quit)
	})
}

// Next returns the next chunk. It returns io.EOF once the source reached
// end-of-stream and every buffered chunk has been delivered; a source read
// failure surfaces here after the buffer drains.
func (f *Feed) Next(ctx context.Context) ([]byte, error) {
	// A closed feed discards buffered chunks, so quit wins over ch.
	select {
	case <-f.quit:
		return nil, io.EOF
	default:
	}
	select {
	case chunk, ok := <-f.ch:
		if !ok {
			if f.err != nil {
				return nil, fmt.Errorf("feed: source read failed: %w", f.err)
			}
			return nil, io.EOF
		}
		return chunk, nil
	case <-f.quit:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsActive reports whether further data may still arrive: false only once
// end-of-stream has been observed and no buffered chunks remain.
func (f *Feed) IsActive() bool {
	select {
	case <-f.quit:
		return false
	default:
	}
	return !(f.done.Load() && len(f.ch) == 0)
}

// JSONFeed is a Feed whose chunks are UTF-8 JSON values.
type JSONFeed struct {
	*Feed
}

// NewJSON wraps r as a JSON feed with the default channel capacity.
func NewJSON(r io.Reader) *JSONFeed {
	return &JSONFeed{Feed: New(r)}
}

// NewJSONWithCapacity wraps r as a JSON feed with an explicit channel
// capacity.
func NewJSONWithCapacity(r io.Reader, capacity int) *JSONFeed {
	return &JSONFeed{Feed: NewWithCapacity(r, capacity)}
}

// Next decodes the next chunk into v. Malformed JSON is reported to the
// caller; the feed keeps producing subsequent chunks.
func (f *JSONFeed) Next(ctx context.Context, v any) error {
	chunk, err := f.Feed.Next(ctx)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(chunk, v); err != nil {
		return fmt.Errorf("feed: malformed JSON chunk: %w", err)
	}
	return nil
}
