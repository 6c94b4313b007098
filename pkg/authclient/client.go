// Package authclient is a small HTTP client for the admin panel auth API.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the API mounted at baseURL, e.g.
// "http://localhost:8000/api/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type User struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	RoleID       uint       `json:"role_id"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	LastLoggedIn *time.Time `json:"last_logged_in"`
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status     int    `json:"-"`
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	Resolution string `json:"resolution"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authclient: %d %s: %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Tokens, error) {
	var out Tokens
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new access token. The returned
// Tokens carries no refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	var out Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", refreshToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, accessToken string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/auth/me", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", accessToken, nil, nil)
}

// HasPermission asks the server whether the token's user holds the named
// permission.
func (c *Client) HasPermission(ctx context.Context, accessToken, name string) (bool, error) {
	var out struct {
		Authorized bool `json:"authorized"`
	}
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/permissions/authorize", accessToken, body, &out); err != nil {
		return false, err
	}
	return out.Authorized, nil
}
