// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package feed turns a continuous byte stream into a sequence of discrete
chunks or JSON values.

# Feeds

A Feed wraps a streaming response body and emits whitespace-trimmed,
non-empty chunks as they arrive:

	f := feed.New(resp.Body)
	for f.IsActive() {
	    chunk, err := f.Next(ctx)
	    if err == io.EOF {
	        break
	    }
	}

A JSONFeed decodes each chunk as a UTF-8 JSON value:

	f := feed.NewJSON(resp.Body)
	var event Event
	err := f.Next(ctx, &event)

# Backpressure

A single producer goroutine reads the source and hands chunks to the
consumer over a bounded channel. When the consumer lags behind by more
than the channel capacity, the producer blocks on the source instead of
buffering without limit.
*/
package feed
