package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicUser is the public profile the identity service exposes
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Client fetches public user profiles from the identity service
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an identity client. baseURL is the service root, e.g. http://identity:5000/api
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetPublicUser calls GET {base}/public/user/{id}.
// Both a bare profile and a {"user": {...}} envelope are accepted.
func (c *Client) GetPublicUser(ctx context.Context, id uuid.UUID) (*PublicUser, error) {
	endpoint := fmt.Sprintf("%s/public/user/%s", c.baseURL, url.PathEscape(id.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call identity service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var envelope struct {
		User *PublicUser `json:"user"`
		PublicUser
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse identity response: %w", err)
	}
	if envelope.User != nil {
		return envelope.User, nil
	}
	return &envelope.PublicUser, nil
}
