package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/form"
)

func TestAuthLoginReadsToken(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		header    http.Header
		wantToken string
		wantName  string
	}{
		{
			name:      "token at top level",
			body:      `{"token":"t1","user":{"name":"Ada","email":"ada@example.com"}}`,
			wantToken: "t1",
			wantName:  "Ada",
		},
		{
			name:      "token in data envelope",
			body:      `{"data":{"token":"t2","user":{"name":"Grace"}}}`,
			wantToken: "t2",
			wantName:  "Grace",
		},
		{
			name:      "token from set-cookie",
			body:      `{}`,
			header:    http.Header{"Set-Cookie": {apiclient.TokenCookieName + "=t3; Path=/; HttpOnly"}},
			wantToken: "t3",
			wantName:  "ada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, client := newStubBackend(t)
			backend.handleWithHeader("POST /api/auth/login", http.StatusOK, tt.body, tt.header)

			result, err := NewAuthService(client).Login(context.Background(), form.LoginForm{Email: "ada@example.com", Password: "secret"})
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if result.Token != tt.wantToken || result.User.Name != tt.wantName {
				t.Fatalf("unexpected result %+v", result)
			}
			if result.User.Email != "ada@example.com" {
				t.Fatalf("expected email kept, got %q", result.User.Email)
			}
		})
	}
}

func TestAuthLoginWithoutTokenFails(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("POST /api/auth/login", http.StatusOK, `{"user":{"name":"Ada"}}`)

	_, err := NewAuthService(client).Login(context.Background(), form.LoginForm{Email: "ada@example.com", Password: "x"})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthSignupKeepsSubmittedName(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("POST /api/auth/signup", http.StatusCreated, `{"token":"t"}`)

	result, err := NewAuthService(client).Signup(context.Background(), form.SignupForm{Name: "Ada Lovelace", Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.User.Name != "Ada Lovelace" {
		t.Fatalf("expected submitted name, got %q", result.User.Name)
	}
	calls := backend.callsTo("POST /api/auth/signup")
	if len(calls) != 1 || calls[0].Body["name"] != "Ada Lovelace" {
		t.Fatalf("unexpected signup payload %+v", calls)
	}
}

func TestAuthLoginPropagatesBackendError(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("POST /api/auth/login", http.StatusUnauthorized, `{"message":"Invalid credentials"}`)

	_, err := NewAuthService(client).Login(context.Background(), form.LoginForm{Email: "ada@example.com", Password: "x"})
	if err == nil {
		t.Fatal("expected an error for 401")
	}
}

func TestSettingsGenerateAPIKey(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("POST /api/settings/generate-api-key", http.StatusOK, `{"data":{"apiKey":"sk_live_123456"}}`)

	key, err := NewSettingsService(client).GenerateAPIKey(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if key != "sk_live_123456" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestSettingsGenerateAPIKeyRequiresKey(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("POST /api/settings/generate-api-key", http.StatusOK, `{"data":{}}`)

	if _, err := NewSettingsService(client).GenerateAPIKey(context.Background()); !errors.Is(err, ErrEmptyAPIKey) {
		t.Fatalf("expected ErrEmptyAPIKey, got %v", err)
	}
}

func TestMaskAPIKey(t *testing.T) {
	cases := map[string]string{
		"sk_live_123456": "••••••••••3456",
		"abcd":           "••••",
		"":               "",
	}
	for key, want := range cases {
		if got := MaskAPIKey(key); got != want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestSettingsOnboardReturnsEchoedProfile(t *testing.T) {
	backend, client := newStubBackend(t)
	svc := NewSettingsService(client)
	f := form.OnboardingForm{BusinessName: "Acme", Industry: "technology", TargetAudience: "devs", PrimaryKeywords: "go"}

	backend.handle("POST /api/business/onboarding", http.StatusOK, `{"status":"success"}`)
	profile, err := svc.Onboard(context.Background(), f)
	if err != nil || profile != nil {
		t.Fatalf("expected no profile, got %+v %v", profile, err)
	}

	backend.handle("POST /api/business/onboarding", http.StatusOK, `{"user":{"name":"Ada","email":"ada@example.com"}}`)
	profile, err = svc.Onboard(context.Background(), f)
	if err != nil || profile == nil || profile.Name != "Ada" {
		t.Fatalf("expected echoed profile, got %+v %v", profile, err)
	}
	if calls := backend.callsTo("POST /api/business/onboarding"); calls[0].Body["businessName"] != "Acme" {
		t.Fatalf("unexpected payload %+v", calls[0].Body)
	}
}

func TestSettingsPersonalizeDefaults(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("GET /api/settings/personalize", http.StatusOK, `{"data":null}`)

	settings, err := NewSettingsService(client).Personalize(context.Background())
	if err != nil {
		t.Fatalf("personalize: %v", err)
	}
	if settings != form.DefaultPersonalizeForm() {
		t.Fatalf("expected defaults, got %+v", settings)
	}
}

func TestSettingsPersonalizeMergesSaved(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("GET /api/settings/personalize", http.StatusOK, `{"data":{"businessName":"Acme","defaultTone":"witty"}}`)

	settings, err := NewSettingsService(client).Personalize(context.Background())
	if err != nil {
		t.Fatalf("personalize: %v", err)
	}
	if settings.BusinessName != "Acme" || settings.DefaultTone != "witty" || settings.DefaultWordCount != "1000" {
		t.Fatalf("unexpected settings %+v", settings)
	}
}

func TestSettingsSavePersonalizeReportsFailure(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("POST /api/settings/personalize", http.StatusOK, `{"status":"error","message":"Industry unknown"}`)

	err := NewSettingsService(client).SavePersonalize(context.Background(), form.DefaultPersonalizeForm())
	if err == nil || err.Error() != "Industry unknown" {
		t.Fatalf("expected backend message, got %v", err)
	}
}

func TestScraperScrapeSendsOptions(t *testing.T) {
	backend, client := newStubBackend(t)
	backend.handle("POST /api/scraper/scrape", http.StatusOK, `{"data":{"title":"Page","content":"Body","images":["a.png"]}}`)

	f := form.DefaultScrapeForm()
	f.URL = "https://example.com/post"
	f.Options.ExcludeSelectors = "nav, footer"
	content, err := NewScraperService(client).Scrape(context.Background(), f)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if content.Title != "Page" || content.SourceURL != "https://example.com/post" {
		t.Fatalf("unexpected content %+v", content)
	}

	calls := backend.callsTo("POST /api/scraper/scrape")
	options, ok := calls[0].Body["options"].(map[string]any)
	if !ok {
		t.Fatalf("expected options object, got %+v", calls[0].Body)
	}
	selectors, _ := options["excludeSelectors"].([]any)
	if len(selectors) != 2 || selectors[1] != "footer" {
		t.Fatalf("expected split selectors, got %v", options["excludeSelectors"])
	}
}

func TestScraperProcessReturnsPostID(t *testing.T) {
	backend, client := newStubBackend(t)
	svc := NewScraperService(client)
	f := form.ProcessForm{Title: "Page", Content: "Body", Prompt: "Rewrite"}

	backend.handle("POST /api/scraper/process", http.StatusOK, `{"data":{"_id":"p9","title":"Page"}}`)
	id, err := svc.Process(context.Background(), f)
	if err != nil || id != "p9" {
		t.Fatalf("expected p9, got %q %v", id, err)
	}

	backend.handle("POST /api/scraper/process", http.StatusOK, `{"data":{}}`)
	if _, err := svc.Process(context.Background(), f); !errors.Is(err, ErrMissingProcessedID) {
		t.Fatalf("expected ErrMissingProcessedID, got %v", err)
	}
}
