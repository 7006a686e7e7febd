package view

import (
	"strings"
	"testing"
	"time"

	"github.com/blogai/internal/form"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{name: "zero", input: time.Time{}, expected: ""},
		{name: "seconds", input: now.Add(-30 * time.Second), expected: "just now"},
		{name: "one minute", input: now.Add(-time.Minute), expected: "1 minute ago"},
		{name: "minutes", input: now.Add(-5 * time.Minute), expected: "5 minutes ago"},
		{name: "hours", input: now.Add(-2 * time.Hour), expected: "2 hours ago"},
		{name: "days", input: now.Add(-72 * time.Hour), expected: "3 days ago"},
		{name: "months", input: now.Add(-60 * 24 * time.Hour), expected: "2 months ago"},
		{name: "years", input: now.Add(-3 * 365 * 24 * time.Hour), expected: "3 years ago"},
		{name: "future", input: now.Add(2 * time.Minute), expected: "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatRelativeTime(now, tt.input)
			if got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLevelClass(t *testing.T) {
	cases := map[string]string{
		"success":   "badge badge-success",
		"Published": "badge badge-success",
		"warning":   "badge badge-warning",
		"draft":     "badge badge-warning",
		"error":     "badge badge-error",
		"":          "badge",
	}
	for level, want := range cases {
		if got := levelClass(level); got != want {
			t.Errorf("levelClass(%q) = %q, want %q", level, got, want)
		}
	}
}

func TestFieldErrorAcceptsMissingErrors(t *testing.T) {
	errs := form.Errors{"title": "Title must be at least 5 characters"}
	if got := fieldError(errs, "title"); got != "Title must be at least 5 characters" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := fieldError(nil, "title"); got != "" {
		t.Fatalf("expected no message without errors, got %q", got)
	}
	if got := fieldError(errs, "content"); got != "" {
		t.Fatalf("expected no message for a valid field, got %q", got)
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"data:image/jpeg;base64,AAAA", "data:image/jpeg;base64,AAAA"},
		{" https://res.cloudinary.com/demo/image/upload/a.jpg ", "https://res.cloudinary.com/demo/image/upload/a.jpg"},
		{"javascript:alert(1)", "#"},
		{"data:text/html;base64,PHNjcmlwdD4=", "#"},
		{"", "#"},
	}
	for _, tt := range tests {
		if got := string(imageURL(tt.input)); got != tt.want {
			t.Errorf("imageURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	if statusLabel("PUBLISHED") != "Published" || statusLabel("draft") != "Draft" || statusLabel("") != "Draft" {
		t.Fatal("unexpected status labels")
	}
}

func TestIconFallsBackToDefault(t *testing.T) {
	if IconSVG("unknown") != defaultIcon.SVG {
		t.Fatal("expected default icon for unknown key")
	}
	if got := string(Icon("/trending")); got != IconSVG("trending") {
		t.Fatal("expected nav urls to resolve by path")
	}
	if !strings.HasPrefix(IconSVG(" Success "), "<svg") {
		t.Fatal("expected keys to be normalized")
	}
	for _, icon := range iconDefinitions {
		if !strings.Contains(icon.SVG, `aria-hidden="true"`) {
			t.Errorf("icon %s should be hidden from screen readers", icon.Key)
		}
	}
}
