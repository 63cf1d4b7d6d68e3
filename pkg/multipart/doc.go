// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package multipart implements streaming MIME multipart readers and writers.

This package parses an unbounded, boundary-delimited byte stream
incrementally, one part at a time, and produces multipart bodies as a lazy
sequence of byte chunks suitable for direct transport writes. Nothing here
buffers a whole body.

# Reading

A Reader splits a multipart body into an ordered sequence of parts:

	reader, err := multipart.NewReader(headers, body)
	for {
	    part, err := reader.NextPart()
	    if err == io.EOF {
	        break
	    }
	    pr := part.(*multipart.PartReader)
	    data, err := pr.Read(true) // decode per Content-Encoding
	}

A part whose own Content-Type is multipart/* is surfaced as a nested
*Reader over the same stream. Parts must be consumed in wire order; an
unread part is drained automatically before the next one is produced.

# Framing

Each part is framed one of two ways:

  - Length-delimited: a Content-Length header declares the exact payload
    size, followed by a mandatory CRLF.
  - Boundary-delimited: the payload runs until a line exactly equal to the
    boundary (or final boundary) is read. The boundary line is never
    delivered as payload.

# Writing

A Writer assembles ordered parts into a full multipart body:

	writer := multipart.NewWriter("mixed")
	writer.Append(multipart.BytesPayload(doc), nil)
	writer.AppendJSON(meta, nil)

	length, err := writer.ContentLength()
	chunks := writer.Serialize()

Serialize yields a finite, non-restartable chunk sequence; ChunkStream
adapts it to an io.Reader for use as an HTTP request body.

# Wire Format

Part and boundary lines use CRLF terminators. The continuation boundary is
"--" + boundary + CRLF and the final boundary is "--" + boundary + "--" +
CRLF. Boundary tokens are ASCII only and at most 70 characters.

# References

  - MIME Multipart: https://datatracker.ietf.org/doc/html/rfc2046
  - Content-Disposition: https://datatracker.ietf.org/doc/html/rfc2183
*/
package multipart
