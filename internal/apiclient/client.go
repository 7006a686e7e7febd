package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TokenCookieName is the session cookie shared with the backend.
const TokenCookieName = "auth-token"

const maxResponseBytes = 4 << 20

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response carries the metadata of a successful call.
type Response struct {
	Status int
	Header http.Header
}

// Cookie returns the value of the named cookie set by the backend, if any.
func (r *Response) Cookie(name string) string {
	if r == nil {
		return ""
	}
	resp := http.Response{Header: r.Header}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

// Client is the single configured HTTP client every page uses to reach the backend.
type Client struct {
	base      *url.URL
	http      HTTPDoer
	userAgent string
}

type tokenKey struct{}

// WithToken attaches the caller's auth token to ctx so that it is forwarded
// to the backend as the auth-token cookie.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

// TokenFrom returns the token attached with WithToken.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// New builds a Client rooted at baseURL, for example "https://api.example.com/api/".
func New(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if !strings.HasSuffix(trimmed, "/") {
		trimmed += "/"
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout},
		userAgent: "blogai-dashboard/1.0",
	}, nil
}

// SetHTTPClient swaps the transport, mainly for tests.
func (c *Client) SetHTTPClient(doer HTTPDoer) {
	if doer == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
		return
	}
	c.http = doer
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) Get(ctx context.Context, path string, out any) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do issues one JSON request. A nil out discards the response body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (*Response, error) {
	endpoint, err := c.resolve(path)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := TokenFrom(ctx); token != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		apiErr := classifyTransportError(err)
		log.Printf("[API] %s %s failed (%s): %v", method, endpoint, apiErr.Kind, err)
		return nil, apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		apiErr := classifyTransportError(err)
		log.Printf("[API] %s %s read failed (%s): %v", method, endpoint, apiErr.Kind, err)
		return nil, apiErr
	}

	meta := &Response{Status: resp.StatusCode, Header: resp.Header}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Kind: KindServer, Status: resp.StatusCode, Message: errorMessage(raw)}
		if resp.StatusCode == http.StatusUnauthorized {
			apiErr.Kind = KindUnauthorized
			log.Printf("[API] authentication error on %s %s: %s", method, endpoint, snippet(raw))
		} else {
			log.Printf("[API] %s %s -> %d: %s", method, endpoint, resp.StatusCode, snippet(raw))
		}
		return meta, apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return meta, &Error{Kind: KindDecode, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return meta, nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(strings.TrimLeft(strings.TrimSpace(path), "/"))
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// errorMessage extracts `message`, then `error`, from a JSON error body.
func errorMessage(raw []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	if len(payload.Error) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(payload.Error, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var asObject struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &asObject); err == nil {
		return strings.TrimSpace(asObject.Message)
	}
	return ""
}

func snippet(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "<empty>"
	}
	if utf8.RuneCountInString(text) > 256 {
		return string([]rune(text)[:256]) + "…(truncated)"
	}
	return text
}
