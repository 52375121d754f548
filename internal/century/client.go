package century

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the public gift-code service endpoint.
	DefaultBaseURL = "https://kingshot-giftcode.centurygame.com"

	// DefaultSalt is the signing salt the web client ships with.
	DefaultSalt = "mN4!pQs6JrYwV9"
)

// envelope is the JSON wrapper every endpoint responds with.
type envelope struct {
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	ErrCode errCode         `json:"err_code"`
	Data    json.RawMessage `json:"data"`
}

// errCode tolerates the service's inconsistent err_code encoding: a number,
// a numeric string, or an empty string on success.
type errCode int

func (c *errCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Non-numeric codes stay unclassified.
		*c = 0
		return nil
	}
	*c = errCode(v)
	return nil
}

// Client talks to the gift-code service with request signing and a simple
// rate limiter.
type Client struct {
	baseURL    string
	salt       string
	httpClient *http.Client

	// Simple rate limiter
	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the service base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithSalt overrides the signing salt.
func WithSalt(salt string) Option {
	return func(c *Client) { c.salt = salt }
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a gift-code service client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		salt:    DefaultSalt,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// One request per second at most; batch callers add their own delay
		// on top of this.
		minInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs an HTTP request with rate limiting
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	// Simple rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < c.minInterval {
		time.Sleep(c.minInterval - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	// Handle rate limiting (429)
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		// Wait and retry once
		time.Sleep(1 * time.Second)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}
		return c.httpClient.Do(req)
	}

	return resp, nil
}

// postForm signs the params, POSTs them form-encoded and returns the decoded
// response envelope. A non-2xx status or a malformed body is a transport
// error; service-level failures (envelope code != 0) are left to the caller
// to classify.
func (c *Client) postForm(ctx context.Context, path string, params map[string]string) (*envelope, error) {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("sign", Sign(params, c.salt))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &env, nil
}

// timestamp returns the current time in milliseconds, matching what the
// service expects in the signed "time" field.
func timestamp() string {
	return fmt.Sprintf("%d", time.Now().UnixMilli())
}
