// Package transport streams multipart bodies over HTTP
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirosfoundation/go-docstream/pkg/multipart"
)

// Client sends multipart request bodies and wraps multipart responses.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a client on top of hc; a nil hc uses a default
// http.Client.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		client:    hc,
		userAgent: "go-docstream/1.0",
	}
}

// Do sends a multipart body to the endpoint and returns the raw response.
// The body streams chunk by chunk; when every part length is knowable the
// request carries an exact Content-Length, otherwise it goes out chunked.
func (c *Client) Do(ctx context.Context, method, endpoint string, w *multipart.Writer) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, multipart.ChunkStream(w.Serialize()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", w.ContentType())
	req.Header.Set("User-Agent", c.userAgent)
	if length, err := w.ContentLength(); err == nil {
		req.ContentLength = length
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}

// Exchange sends a multipart body and wraps the multipart response into a
// reader that releases the connection once fully consumed.
func (c *Client) Exchange(ctx context.Context, method, endpoint string, w *multipart.Writer) (*multipart.ResponseWrapper, error) {
	resp, err := c.Do(ctx, method, endpoint, w)
	if err != nil {
		return nil, err
	}

	wrapper, err := multipart.WrapResponse(resp)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to read multipart response: %w", err)
	}

	return wrapper, nil
}
