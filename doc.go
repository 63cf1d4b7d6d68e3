// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package docstream implements streaming MIME multipart reading and writing
for moving attachments and bulk document payloads over HTTP bodies.

# Overview

go-docstream is a protocol layer, not a transport: it parses and produces
boundary-delimited multipart bodies incrementally, one part at a time,
without ever buffering a whole body. It supports two framing disciplines
(explicit Content-Length and boundary-terminated parts), nested multipart
bodies, Content-Encoding decoding, and exactly-once consumption of a live
network stream. A separate feed abstraction turns continuous chunked
responses into a sequence of discrete chunks or JSON values.

# Package Structure

The library is organized into the following packages:

	github.com/sirosfoundation/go-docstream/pkg/multipart - streaming multipart readers and writers
	github.com/sirosfoundation/go-docstream/pkg/codec     - Content-Encoding codecs (gzip, deflate)
	github.com/sirosfoundation/go-docstream/pkg/feed      - chunked feed for continuous responses
	github.com/sirosfoundation/go-docstream/pkg/transport - thin HTTP exchange client

# Quick Start

Reading a multipart response body part by part:

	reader, err := multipart.NewReader(headers, resp.Body)
	for {
	    part, err := reader.NextPart()
	    if err == io.EOF {
	        break
	    }
	    switch p := part.(type) {
	    case *multipart.PartReader:
	        data, err := p.Read(true)
	        // ...
	    case *multipart.Reader:
	        // nested multipart body
	    }
	}

Writing a multipart request body:

	writer := multipart.NewWriter("mixed")
	writer.Append(multipart.BytesPayload(doc), nil)
	writer.AppendJSON(meta, nil)
	body := multipart.ChunkStream(writer.Serialize())

# Specifications Implemented

  - MIME Multipart: https://datatracker.ietf.org/doc/html/rfc2046
  - Content-Disposition: https://datatracker.ietf.org/doc/html/rfc2183
  - Character set parameters (RFC 5987 extended values): https://datatracker.ietf.org/doc/html/rfc5987
*/
package docstream
