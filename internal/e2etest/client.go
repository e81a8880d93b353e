package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/myrjola/interrogation/internal/errors"
)

// Client talks JSON to the server under test.
type Client struct {
	client *http.Client
	url    string
}

func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{Timeout: 30 * time.Second}, //nolint:exhaustruct,mnd // generous for slow CI.
		url:    url,
	}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into dst.
func (r Response) Decode(dst any) error {
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return errors.Wrap(err, "decode response", slog.String("body", string(r.Body)))
	}
	return nil
}

// Do sends body, marshalled as JSON unless it is nil or already raw bytes, and reads the whole response.
func (c *Client) Do(ctx context.Context, method, urlPath string, body any) (Response, error) {
	var (
		err     error
		reader  io.Reader
		payload []byte
	)
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		if payload, err = json.Marshal(b); err != nil {
			return Response{}, errors.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, reader)
	if err != nil {
		return Response{}, errors.Wrap(err, "create request")
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, errors.Wrap(err, "send request", slog.String("method", method), slog.String("path", urlPath))
	}
	defer resp.Body.Close()
	var data []byte
	if data, err = io.ReadAll(resp.Body); err != nil {
		return Response{}, errors.Wrap(err, "read response body")
	}
	return Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Get is a shorthand for a GET request.
func (c *Client) Get(ctx context.Context, urlPath string) (Response, error) {
	return c.Do(ctx, http.MethodGet, urlPath, nil)
}

// Post is a shorthand for a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, urlPath string, body any) (Response, error) {
	return c.Do(ctx, http.MethodPost, urlPath, body)
}
