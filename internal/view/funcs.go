package view

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/blogai/internal/editor"
	"github.com/blogai/internal/form"
	"github.com/blogai/internal/service"
)

// FuncMap returns the helpers shared by every dashboard template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"gt":  func(a, b int) bool { return a > b },
		"lt":  func(a, b int) bool { return a < b },

		"icon":         Icon,
		"html":         editor.ToHTML,
		"excerpt":      editor.Excerpt,
		"relativeTime": func(t time.Time) string { return formatRelativeTime(time.Now(), t) },
		"formatDate":   formatDate,
		"statusLabel":  statusLabel,
		"levelClass":   levelClass,
		"statusLevel":  service.StatusLevel,
		"imageURL":     imageURL,
		"join":         strings.Join,
		"fieldError":   fieldError,
		"hasError":     func(errs any, field string) bool { return fieldError(errs, field) != "" },
		"percent":      func(v float64) int { return int(v + 0.5) },
		"json":         toJSON,
		"selected":     func(a, b string) template.HTMLAttr { return attrIf(a == b, "selected") },
		"checked":      func(on bool) template.HTMLAttr { return attrIf(on, "checked") },
	}
}

// formatRelativeTime renders t relative to now. Future timestamps read as
// "just now" since clocks between the backend and the browser drift.
func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	if diff < time.Minute {
		return "just now"
	}
	switch {
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff/time.Hour), "hour")
	case diff < 30*24*time.Hour:
		return plural(int(diff/(24*time.Hour)), "day")
	case diff < 365*24*time.Hour:
		return plural(int(diff/(30*24*time.Hour)), "month")
	default:
		return plural(int(diff/(365*24*time.Hour)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

func statusLabel(status string) string {
	if strings.EqualFold(status, "published") {
		return "Published"
	}
	return "Draft"
}

// levelClass maps notification kinds and SEO levels to badge classes.
func levelClass(level string) string {
	switch strings.ToLower(level) {
	case "success", "published":
		return "badge badge-success"
	case "error":
		return "badge badge-error"
	case "warning", "draft":
		return "badge badge-warning"
	default:
		return "badge"
	}
}

func fieldError(errs any, field string) string {
	switch e := errs.(type) {
	case form.Errors:
		return e.Get(field)
	case map[string]string:
		return e[field]
	default:
		return ""
	}
}

// imageURL lets previews through as inline images. Anything that is not an
// http(s) link or an image data URL collapses to "#".
func imageURL(raw string) template.URL {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"):
		return template.URL(strings.TrimSpace(raw))
	default:
		return "#"
	}
}

func toJSON(v any) (template.JS, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(raw), nil
}

func attrIf(on bool, attr string) template.HTMLAttr {
	if on {
		return template.HTMLAttr(attr)
	}
	return ""
}
