// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport provides a thin HTTP exchange client for multipart
bodies.

The client streams a multipart writer's output directly as the request
body, without materializing it, and wraps a multipart response into a
reader that releases the connection once fully consumed:

	client := transport.NewClient(nil)
	wrapper, err := client.Exchange(ctx, http.MethodPost, url, writer)
	for {
	    part, err := wrapper.NextPart()
	    if err == io.EOF {
	        break
	    }
	    // ...
	}

Connection pooling, TLS configuration and retry policy belong to the
*http.Client the caller supplies.
*/
package transport
