package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const apiPrefix = "/api"

// SignInPath is where the client navigates when the session dies.
const SignInPath = "/signin"

var (
	// ErrUnauthenticated is returned on a 401 response, after the token
	// has been cleared and the sign-in navigation triggered.
	ErrUnauthenticated = errors.New("session expired or invalid")
)

type (
	// NavigateFunc moves the application to the given path. Redirect
	// decisions are side effects of the HTTP layer and the auth context;
	// the host application supplies the actual navigation.
	NavigateFunc func(path string)

	// APIError carries the backend's human-readable message for non-2xx
	// responses, to be surfaced to the user as-is.
	APIError struct {
		StatusCode int
		Message    string
	}

	// Client issues JSON requests against the Quizdesk API. Every request
	// attaches "Authorization: Bearer <token>" when a token is stored.
	// Any 401 response clears the token and navigates to sign-in exactly
	// once, regardless of how many concurrent calls fail.
	Client struct {
		baseURL  string
		http     *http.Client
		tokens   TokenStore
		navigate NavigateFunc

		// 0 until a 401 has been handled for the current session
		signedOut uint32
	}
)

func (e *APIError) Error() string { return e.Message }

func NewClient(baseURL string, tokens TokenStore, navigate NavigateFunc) *Client {
	if navigate == nil {
		navigate = func(string) {}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/") + apiPrefix,
		http:     &http.Client{Timeout: 30 * time.Second},
		tokens:   tokens,
		navigate: navigate,
	}
}

// SetToken stores a new session token and re-arms the one-shot 401 handler.
func (c *Client) SetToken(token string) error {
	if err := c.tokens.SetToken(token); err != nil {
		return err
	}
	atomic.StoreUint32(&c.signedOut, 0)
	return nil
}

func (c *Client) ClearToken() error { return c.tokens.Clear() }

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetFile fetches a binary response (exports) instead of JSON.
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	if err = c.checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	if err = c.checkStatus(resp); err != nil {
		return err
	}
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decoding response")
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := c.tokens.Token(); err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
		return ErrUnauthenticated
	}
	return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
}

// handleUnauthorized kills the session on the first 401; concurrent
// failing requests do not navigate a second time.
func (c *Client) handleUnauthorized() {
	_ = c.tokens.Clear()
	if atomic.CompareAndSwapUint32(&c.signedOut, 0, 1) {
		c.navigate(SignInPath)
	}
}

func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "request failed"
	}
	if err = json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return msg
	}
	return "request failed"
}
