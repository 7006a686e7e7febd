package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig collects everything needed to run the dashboard server.
type AppConfig struct {
	ListenAddr     string
	Port           string
	GinMode        string
	SessionSecret  string
	CookieSecure   bool
	ServerURL      string
	APIBaseURL     string
	APITimeout     time.Duration
	CloudName      string
	UploadPreset   string
	EditorAPIKey   string
	DatabasePath   string
	RedisAddr      string
	ResearchPerMin int

	// SiteHost is the public blog host; links to it count as internal in
	// the SEO checklist.
	SiteHost string
}

// Load reads the configuration from environment variables and falls back to
// development defaults for anything missing.
func Load() AppConfig {
	port := env("PORT", "8080")

	listenAddr := env("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	serverURL := strings.TrimRight(env("SERVER_URL", "http://localhost:5000"), "/")

	timeout := 60 * time.Second
	if raw := env("API_TIMEOUT", ""); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			timeout = parsed
		}
	}

	perMinute := 6
	if raw := env("RESEARCH_RATE_LIMIT", ""); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			perMinute = parsed
		}
	}

	siteHost := env("SITE_HOST", "")
	if siteHost == "" {
		if parsed, err := url.Parse(serverURL); err == nil {
			siteHost = parsed.Hostname()
		}
	}

	secure, _ := strconv.ParseBool(env("COOKIE_SECURE", "false"))

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		GinMode:        env("GIN_MODE", "release"),
		SessionSecret:  env("SESSION_SECRET", "blogai-dev-secret"),
		CookieSecure:   secure,
		ServerURL:      serverURL,
		APIBaseURL:     serverURL + "/api/",
		APITimeout:     timeout,
		CloudName:      env("CLOUDINARY_CLOUD_NAME", ""),
		UploadPreset:   env("CLOUDINARY_UPLOAD_PRESET", ""),
		EditorAPIKey:   env("TINYMCE_API_KEY", ""),
		DatabasePath:   env("DATABASE_PATH", "blogai.db"),
		RedisAddr:      env("REDIS_ADDR", ""),
		ResearchPerMin: perMinute,
		SiteHost:       siteHost,
	}
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
