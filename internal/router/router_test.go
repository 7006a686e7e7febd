package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/config"
	"github.com/blogai/internal/handler"
	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	t.Cleanup(backend.Close)

	client, err := apiclient.New(backend.URL+"/api/", 5*time.Second)
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	api := handler.NewAPI(handler.Deps{Client: client})

	r, err := SetupRouter(config.AppConfig{SessionSecret: "test-secret"}, api)
	if err != nil {
		t.Fatalf("setup router: %v", err)
	}
	return r
}

func serve(r *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: apiclient.TokenCookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSetupRouterServesEmbeddedAssets(t *testing.T) {
	r := newTestRouter(t)

	rr := serve(r, "/static/app.css", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), ".sidebar") {
		t.Fatal("expected the dashboard stylesheet")
	}
}

func TestSetupRouterGuardsDashboard(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name     string
		path     string
		token    string
		location string
	}{
		{name: "dashboard without token", path: "/dashboard", location: "/login"},
		{name: "nested write route", path: "/write/abc", location: "/login"},
		{name: "login with token", path: "/login", token: "tok", location: "/dashboard"},
		{name: "signup with token", path: "/signup", token: "tok", location: "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(r, tt.path, tt.token)
			if rr.Code != http.StatusFound || rr.Header().Get("Location") != tt.location {
				t.Fatalf("expected redirect to %s, got %d %q", tt.location, rr.Code, rr.Header().Get("Location"))
			}
		})
	}
}

func TestSetupRouterRendersPages(t *testing.T) {
	r := newTestRouter(t)

	rr := serve(r, "/login", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `action="/login"`) {
		t.Fatalf("expected login page, got %d", rr.Code)
	}

	rr = serve(r, "/dashboard", "tok")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected dashboard, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Total posts") {
		t.Fatal("expected dashboard stats")
	}
}

func TestSetupRouterHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	rr := serve(r, "/healthz", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"database":"disabled"`) {
		t.Fatalf("unexpected health response %d %s", rr.Code, rr.Body.String())
	}
}
