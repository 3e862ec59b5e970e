package paas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// refreshBefore is how long before expiry a token is renewed.
const refreshBefore = 2 * time.Minute

// Client talks to the platform's auth and audit log API with an API key exchanged
// for a short-lived bearer token.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	logins singleflight.Group
	now    func() time.Time
}

// HTTPError is a non-2xx platform response.
type HTTPError struct {
	Op     string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("paas %s http %d: %s", e.Op, e.Status, e.Body)
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Login exchanges the API key for a token. Concurrent callers share one request.
func (c *Client) Login(ctx context.Context) error {
	_, err, _ := c.logins.Do("login", func() (any, error) {
		return nil, c.login(ctx)
	})
	return err
}

func (c *Client) login(ctx context.Context) error {
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return errors.New("paas api key is empty")
	}
	var lr loginResponse
	if err := c.do(ctx, "login", "/api/v1/auth/login", "", map[string]any{"api_key": apiKey}, &lr); err != nil {
		return err
	}
	tok := strings.TrimSpace(lr.Token)
	if tok == "" {
		return errors.New("paas login returned an empty token")
	}
	exp, _ := time.Parse(time.RFC3339, strings.TrimSpace(lr.ExpiresAt))

	c.mu.Lock()
	c.token = tok
	c.expiresAt = exp
	c.mu.Unlock()
	return nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// EnsureToken logs in when there is no token or it expires within two minutes.
func (c *Client) EnsureToken(ctx context.Context) error {
	c.mu.RLock()
	tok := c.token
	exp := c.expiresAt
	c.mu.RUnlock()
	if tok == "" || (!exp.IsZero() && exp.Sub(c.clock()) < refreshBefore) {
		return c.Login(ctx)
	}
	return nil
}

func (c *Client) invalidate(tok string) {
	c.mu.Lock()
	if c.token == tok {
		c.token = ""
	}
	c.mu.Unlock()
}

type CreateLogRequest struct {
	Agent      string         `json:"agent"`
	Action     string         `json:"action"`
	Level      string         `json:"level"`
	Details    map[string]any `json:"details"`
	SessionKey string         `json:"session_key"`
	Metadata   map[string]any `json:"metadata"`
}

// CreateLog appends an audit entry. A rejected token is renewed and the call retried
// once.
func (c *Client) CreateLog(ctx context.Context, req CreateLogRequest) error {
	if req.Agent == "" {
		req.Agent = Agent
	}
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}
	for attempt := 0; ; attempt++ {
		if err := c.EnsureToken(ctx); err != nil {
			return err
		}
		tok := c.Token()
		err := c.do(ctx, "create log", "/api/v1/logs", tok, req, nil)
		var he *HTTPError
		if attempt == 0 && errors.As(err, &he) && he.Status == http.StatusUnauthorized {
			c.invalidate(tok)
			continue
		}
		return err
	}
}

func (c *Client) do(ctx context.Context, op, path, token string, in, out any) error {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return errors.New("paas base url is empty")
	}
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(b, out)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
