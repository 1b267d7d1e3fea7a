// Package netx wraps the single request/response exchange used by both
// upload endpoints.
package netx

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusText returns the reason phrase for the response status.
func (r *Response) StatusText() string {
	return http.StatusText(r.StatusCode)
}

// Send issues method against url with the given headers and payload, and
// reads the whole response body. A nil client means http.DefaultClient.
// Non-2xx responses are not errors; inspect Response.OK.
func Send(ctx context.Context, client *http.Client, method, url string, header http.Header, payload []byte) (*Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: b}, nil
}
