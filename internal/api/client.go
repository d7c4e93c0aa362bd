package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/quizgame/internal/api/apierr"
	"github.com/mcoot/quizgame/internal/middleware"
)

// Config configures a Client
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Jar holds the server session cookie. A fresh jar is created when nil.
	Jar       http.CookieJar
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client is an HTTP client for the quiz API. The session is carried by cookies.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new API client
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", cfg.BaseURL)
	}

	jar := cfg.Jar
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "api-client"))

	return &Client{
		baseURL: base.String(),
		httpClient: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: middleware.LoggingTransport(logger, cfg.Transport),
			// Protected endpoints redirect to the login page; surface that instead of following it.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}, nil
}

// BaseURL returns the server URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Jar returns the cookie jar holding the session
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// Cookies returns the session cookies for the server
func (c *Client) Cookies() []*http.Cookie {
	u, _ := url.Parse(c.baseURL)
	return c.httpClient.Jar.Cookies(u)
}

// SetCookies restores session cookies for the server
func (c *Client) SetCookies(cookies []*http.Cookie) {
	u, _ := url.Parse(c.baseURL)
	c.httpClient.Jar.SetCookies(u, cookies)
}

// Do performs an HTTP request, decoding a JSON response into result
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apierr.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apierr.TransportError{Op: op, Err: err}
	}

	if resp.StatusCode >= 300 {
		return apierr.FromResponse(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &apierr.TransportError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request. The server parses a JSON body on every POST, so nil sends {}.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	if body == nil {
		body = struct{}{}
	}
	return c.Do(ctx, http.MethodPost, path, body, result)
}
