package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/blogai/internal/apiclient"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
	Token  string
}

type stubResponse struct {
	status int
	body   string
	header http.Header
}

// stubBackend answers "METHOD /api/path" routes with canned JSON and records
// every request it receives.
type stubBackend struct {
	mu       sync.Mutex
	routes   map[string]stubResponse
	requests []recordedRequest
	server   *httptest.Server
}

func newStubBackend(t *testing.T) (*stubBackend, *apiclient.Client) {
	t.Helper()
	b := &stubBackend{routes: map[string]stubResponse{}}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)

	client, err := apiclient.New(b.server.URL+"/api/", 5*time.Second)
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	return b, client
}

func (b *stubBackend) handle(route string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = stubResponse{status: status, body: body}
}

func (b *stubBackend) handleWithHeader(route string, status int, body string, header http.Header) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = stubResponse{status: status, body: body, header: header}
}

func (b *stubBackend) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	token := ""
	if cookie, err := r.Cookie(apiclient.TokenCookieName); err == nil {
		token = cookie.Value
	}

	route := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body, Token: token})
	resp, ok := b.routes[route]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
		return
	}
	for key, values := range resp.header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (b *stubBackend) callsTo(route string) []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedRequest
	for _, req := range b.requests {
		if req.Method+" "+req.Path == route {
			out = append(out, req)
		}
	}
	return out
}
