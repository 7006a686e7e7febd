package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"
	"time"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientResolvesPathsAndForwardsToken(t *testing.T) {
	var gotPath, gotCookie, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if cookie, err := r.Cookie(TokenCookieName); err == nil {
			gotCookie = cookie.Value
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	client, err := New(server.URL+"/api", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	ctx := WithToken(context.Background(), "secret-token")
	if _, err := client.Get(ctx, "/posts/user", &out); err != nil {
		t.Fatalf("get: %v", err)
	}

	if gotPath != "/api/posts/user" {
		t.Fatalf("expected /api/posts/user, got %q", gotPath)
	}
	if gotCookie != "secret-token" {
		t.Fatalf("expected token cookie to be forwarded, got %q", gotCookie)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}
	if !out.OK {
		t.Fatal("expected body to be decoded")
	}
}

func TestClientServerErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{name: "message field", status: 400, body: `{"message":"Title already used"}`, kind: KindServer, message: "Title already used"},
		{name: "error string", status: 500, body: `{"error":"boom"}`, kind: KindServer, message: "boom"},
		{name: "error object", status: 422, body: `{"error":{"message":"bad slug"}}`, kind: KindServer, message: "bad slug"},
		{name: "plain text", status: 502, body: `Bad Gateway`, kind: KindServer, message: ""},
		{name: "unauthorized", status: 401, body: `{"message":"token expired"}`, kind: KindUnauthorized, message: "token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client, _ := New(server.URL+"/api/", time.Second)
			_, err := client.Post(context.Background(), "posts", map[string]string{"title": "x"}, nil)

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, apiErr.Kind)
			}
			if apiErr.Status != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, apiErr.Message)
			}
		})
	}
}

func TestClientConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := server.URL
	server.Close()

	client, _ := New(addr+"/api/", time.Second)
	_, err := client.Get(context.Background(), "trends", nil)

	if KindOf(err) != KindConnectionRefused {
		t.Fatalf("expected connection refused, got %v", err)
	}
}

func TestClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, _ := New(server.URL+"/api/", 20*time.Millisecond)
	_, err := client.Get(context.Background(), "trends", nil)

	if KindOf(err) != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestClientConnectionReset(t *testing.T) {
	client, _ := New("http://backend.invalid/api/", time.Second)
	client.SetHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("read tcp: %w", syscall.ECONNRESET)
	}))

	_, err := client.Get(context.Background(), "trends", nil)
	if KindOf(err) != KindConnectionReset {
		t.Fatalf("expected connection reset, got %v", err)
	}
}

func TestClientDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"posts": "not-a-list"`)
	}))
	defer server.Close()

	client, _ := New(server.URL, time.Second)
	var out struct {
		Posts []string `json:"posts"`
	}
	_, err := client.Get(context.Background(), "posts", &out)
	if KindOf(err) != KindDecode {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestResponseCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: TokenCookieName, Value: "abc"})
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client, _ := New(server.URL+"/api/", time.Second)
	resp, err := client.Post(context.Background(), "auth/login", map[string]string{}, nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if got := resp.Cookie(TokenCookieName); got != "abc" {
		t.Fatalf("expected cookie abc, got %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	const fallback = "Failed to load"

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "timeout", err: &Error{Kind: KindTimeout}, want: "timed out"},
		{name: "refused", err: &Error{Kind: KindConnectionRefused}, want: "Unable to connect"},
		{name: "reset", err: &Error{Kind: KindConnectionReset}, want: "reset"},
		{name: "server message", err: &Error{Kind: KindServer, Status: 400, Message: "Topic too vague"}, want: "Topic too vague"},
		{name: "server without message", err: &Error{Kind: KindServer, Status: 500}, want: fallback},
		{name: "unauthorized", err: &Error{Kind: KindUnauthorized, Status: 401}, want: "session has expired"},
		{name: "foreign error", err: errors.New("boom"), want: fallback},
		{name: "wrapped", err: fmt.Errorf("load posts: %w", &Error{Kind: KindTimeout}), want: "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserMessage(tt.err, fallback)
			if !strings.Contains(got, tt.want) {
				t.Fatalf("expected %q to contain %q", got, tt.want)
			}
		})
	}

	if UserMessage(&Error{Kind: KindTimeout}, fallback) == UserMessage(&Error{Kind: KindConnectionRefused}, fallback) {
		t.Fatal("timeout and refused must produce distinct messages")
	}
}
