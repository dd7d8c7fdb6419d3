// Package api is the HTTP client for the AuthKeeper server. It keeps the
// session cookies in a jar and transparently attaches the CSRF header to
// state-changing requests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const csrfHeaderName = "X-CSRF-Token"

// User is the server's public view of an account.
type User struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type envelope struct {
	OK      bool                `json:"ok"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// Client talks to the server API. Not safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	csrfToken string
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// EnsureCSRF fetches a CSRF cookie and the matching header token if none is
// held yet.
func (c *Client) EnsureCSRF(ctx context.Context) error {
	if c.csrfToken != "" {
		return nil
	}

	var data struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/get-csrf", nil, &data); err != nil {
		return err
	}

	c.csrfToken = data.CSRFToken
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.csrfToken != "" {
		req.Header.Set(csrfHeaderName, c.csrfToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if !env.OK {
		return &APIError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}

	return nil
}

// post ensures a CSRF token is held before issuing a state-changing request.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	if err := c.EnsureCSRF(ctx); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Register(ctx context.Context, username, email, password, confirmPassword string) (*User, error) {
	var user User
	err := c.post(ctx, "/api/auth/register", map[string]string{
		"username":        username,
		"email":           email,
		"password":        password,
		"confirmPassword": confirmPassword,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := c.post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) VerifyEmail(ctx context.Context, email string, code int64) error {
	return c.post(ctx, "/api/auth/verify-email", map[string]any{
		"email": email,
		"code":  code,
	}, nil)
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.post(ctx, "/api/auth/send-email-verification", map[string]string{
		"email": email,
	}, nil)
}

func (c *Client) Refresh(ctx context.Context) error {
	return c.post(ctx, "/api/auth/refresh-token", nil, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/auth/logout", nil, nil)
}

func (c *Client) UserInfo(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/user/info", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
