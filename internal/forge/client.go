// Package forge resolves anonymized Gitea identities through the forge's
// REST API.
package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
)

// userPathPrefix is the fixed user-lookup path on the forge. The rest of the
// original pull request URL's path is discarded, keeping only scheme+host.
const userPathPrefix = "/api/v1/users/"

// HTTPDoer is the subset of http.Client the forge client needs; it allows
// substituting a test transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client defines the identity lookup against the forge. Callers are expected
// to treat every error as a soft failure and keep the anonymized email they
// already have.
type Client interface {
	// ResolveEmail returns the verified email for a forge username. The
	// lookup URL is derived from base by replacing its path with the fixed
	// user-lookup path, preserving scheme and host.
	ResolveEmail(ctx context.Context, base *url.URL, username string) (string, error)
}

type client struct {
	token  string
	http   HTTPDoer
	logger *slog.Logger
}

// NewClient creates a forge client authenticated with the given API token.
// An empty token is allowed at construction time; each lookup fails
// individually until one is configured.
func NewClient(token string, httpClient HTTPDoer, logger *slog.Logger) Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{token: token, http: httpClient, logger: logger}
}

type userResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (c *client) ResolveEmail(ctx context.Context, base *url.URL, username string) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("forge API token is not configured")
	}

	lookup := *base
	lookup.Path = path.Join(userPathPrefix, username)
	lookup.RawQuery = ""
	lookup.Fragment = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookup.String(), nil)
	if err != nil {
		return "", fmt.Errorf("building user lookup request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("user lookup for %q: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("user lookup for %q returned status %d", username, resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decoding user lookup response for %q: %w", username, err)
	}
	if user.Email == "" {
		// Treated as a failed lookup so the anonymized address survives.
		return "", fmt.Errorf("user %q has no visible email", username)
	}

	c.logger.Debug("resolved forge identity", "username", username)
	return user.Email, nil
}
