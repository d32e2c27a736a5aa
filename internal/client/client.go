package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vhubert/fleetctl/internal/log"
)

// APIError is returned whenever the server answered with a non-success
// status or a body that failed to decode. It carries the raw response
// so the caller can show exactly what the server said.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client is the HTTP transport for the fleet management API. It holds
// the base URL, the bearer token, and the TLS configuration; it never
// retries and never mutates the credentials it was built with.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client for the given server. When caCert is non-nil it
// must contain PEM certificate data and becomes the only trust anchor;
// otherwise the platform trust store is used. Certificate validation
// is never disabled.
func New(serverURL, token string, caCert []byte) (*Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	if len(caCert) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("no valid certificates found in trust certificate")
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		}
	}

	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		token:   token,
		http:    httpClient,
	}, nil
}

// do executes one request against the API. A nil out skips response
// decoding; a non-nil body is JSON-encoded. Non-2xx statuses and
// undecodable bodies come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	log.Debug("API request", "method", method, "path", path, "request_id", requestID)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	log.Debug("API response", "path", path, "status", resp.StatusCode, "bytes", len(raw), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Endpoint: path, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if dst, ok := out.(*[]byte); ok {
			*dst = raw
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{Endpoint: path, StatusCode: resp.StatusCode, Body: string(raw)}
		}
	}
	return nil
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// GetRaw issues a GET and returns the response body untouched.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PostJSON issues a POST with a JSON body, discarding any response
// payload beyond the status check.
func (c *Client) PostJSON(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}
