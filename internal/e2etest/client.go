package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Client is a cookie-carrying JSON client for exercising the API end to end.
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a client with its own cookie jar so the session survives
// across requests.
func NewClient(url string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		client: &http.Client{Jar: jar},
		url:    url,
	}, nil
}

// NewClientWithSecFetchSite creates a client that stamps every request with
// the given Sec-Fetch-Site value, simulating a browser's cross-origin
// request metadata.
func NewClientWithSecFetchSite(url, secFetchSite string) (*Client, error) {
	client, err := NewClient(url)
	if err != nil {
		return nil, err
	}
	client.client.Transport = &headerRoundTripper{
		base:   http.DefaultTransport,
		header: "Sec-Fetch-Site",
		value:  secFetchSite,
	}
	return client, nil
}

type headerRoundTripper struct {
	base   http.RoundTripper
	header string
	value  string
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(rt.header, rt.value)
	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
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
			return fmt.Errorf("create request: %w", err)
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return fmt.Errorf("close response body: %w", err)
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return fmt.Errorf("close response body: %w", err)
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, fmt.Errorf("create request with context: %w", err)
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	var (
		err  error
		resp *http.Response
		doc  *goquery.Document
	)
	if resp, err = c.Get(ctx, urlPath); err != nil {
		return nil, fmt.Errorf("client get: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if doc, err = goquery.NewDocumentFromReader(resp.Body); err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}
	return doc, nil
}

// GetJSON fetches a URL and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, urlPath string, out any) (*http.Response, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return nil, err
	}
	return c.decodeBody(resp, out)
}

// PostJSON sends the body as JSON and decodes the response into out. Both body
// and out may be nil.
func (c *Client) PostJSON(ctx context.Context, urlPath string, body, out any) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPost, urlPath, body, out)
}

// PutJSON sends the body as JSON and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, urlPath string, body, out any) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPut, urlPath, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, urlPath string, body, out any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := c.newRequestWithContext(ctx, method, urlPath, reader)
	if err != nil {
		return nil, fmt.Errorf("create request with context: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return c.decodeBody(resp, out)
}

// decodeBody drains and closes the response body, decoding it into out when
// out is non-nil and the response carries a success status.
func (c *Client) decodeBody(resp *http.Response, out any) (*http.Response, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("read response body: %w", err)
	}
	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err = json.Unmarshal(bodyBytes, out); err != nil {
			return resp, fmt.Errorf("unmarshal response body %q: %w", bodyBytes, err)
		}
	}
	return resp, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if req, err = http.NewRequest(method, c.url+urlPath, body); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req.WithContext(ctx), nil
}

// Register creates an anonymous account bound to the client's session cookie
// and returns the public user id.
func (c *Client) Register(ctx context.Context, bodyweightKg float64) (string, error) {
	var out struct {
		UserID string `json:"user_id"`
	}
	resp, err := c.PostJSON(ctx, "/api/register", map[string]float64{"bodyweight_kg": bodyweightKg}, &out)
	if err != nil {
		return "", fmt.Errorf("post register: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return out.UserID, nil
}
