package ync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

// Client posts YAMAHA_AV envelopes to a receiver's control endpoint.
// The receiver runs a single-threaded embedded HTTP server, so callers are
// expected to serialize requests per device.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a protocol client with the given per-request timeout.
// Uses connection pooling since a poll cycle makes several round trips.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Exec sends one request/response round trip. A non-empty zone wraps the
// payload fragment in the zone element; system-level commands pass zone "".
// The response is the parsed document with its RC result code verified.
func (c *Client) Exec(ctx context.Context, op, ctrlURL string, cmd Command, zone, payload string) (*Response, error) {
	if zone != "" {
		payload = zoneWrap(zone, payload)
	}
	body := Envelope(cmd, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ctrlURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Op: op}
		}
		return nil, &UnreachableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnreachableError{Op: op, Err: err}
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		return nil, &ParseError{Op: op, Err: err, Payload: raw}
	}

	if rc := parsed.root.attr("RC"); rc != "0" {
		return nil, &RejectedError{Op: op, RC: rc, Payload: raw}
	}

	return parsed, nil
}

// FetchDocument GETs a descriptor document from the receiver.
func (c *Client) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Op: "fetch " + url}
		}
		return nil, &UnreachableError{Op: "fetch " + url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, &UnreachableError{Op: "fetch " + url, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	return io.ReadAll(resp.Body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
