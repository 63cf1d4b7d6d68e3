// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package codec provides Content-Encoding codecs for multipart body parts.

# Codecs

Two codecs are built in:

  - gzip: RFC 1952 gzip framing
  - deflate: raw DEFLATE without zlib or gzip framing

Decode received payloads:

	c, err := codec.Lookup("gzip")
	data, err := c.Decode(compressed)

Encode outgoing payloads:

	c, _ := codec.Lookup("deflate")
	compressed, err := c.Encode(data)

# Registry

Lookup goes through an explicit table from encoding token to codec; an
unregistered token is an error, never a silent passthrough. Additional
codecs can be registered on a private Registry:

	reg := codec.NewRegistry()
	reg.Register("br", brotliCodec)

# References

  - GZIP file format: https://datatracker.ietf.org/doc/html/rfc1952
  - DEFLATE: https://datatracker.ietf.org/doc/html/rfc1951
*/
package codec
