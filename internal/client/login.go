package client

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/vhubert/fleetctl/internal/log"
)

const loginPath = "/api/management/v1/useradm/auth/login"

// Login authenticates with basic credentials and returns the bearer
// token the server issued. The token is handed back to the caller
// as-is; the client never stores or refreshes it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(email, password)

	log.Debug("API request", "method", http.MethodPost, "path", loginPath, "email", email)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Endpoint: loginPath, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return strings.TrimSpace(string(raw)), nil
}
