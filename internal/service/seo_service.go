package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/blogai/internal/editor"
)

const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// SEOSuggestion is one line of the post SEO checklist.
type SEOSuggestion struct {
	Level       string
	Title       string
	Description string
}

var (
	headingPattern       = regexp.MustCompile(`(?i)<h([1-6])[\s>]`)
	markdownHeadingRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+\S`)
	anchorPattern        = regexp.MustCompile(`(?i)<a\s[^>]*href\s*=\s*["']([^"']*)["']`)
	imagePattern         = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	altPattern           = regexp.MustCompile(`(?i)\balt\s*=\s*["']([^"']*)["']`)
)

// SEOService computes a local checklist for a post. Nothing is sent to the
// backend.
type SEOService struct {
	siteHost string
}

// NewSEOService creates an SEOService. Links to siteHost count as internal.
func NewSEOService(siteHost string) *SEOService {
	return &SEOService{siteHost: strings.ToLower(strings.TrimSpace(siteHost))}
}

// Suggest returns the checklist in a stable order.
func (s *SEOService) Suggest(post Post) []SEOSuggestion {
	text := editor.PlainText(post.Content)
	words := strings.Fields(text)

	return []SEOSuggestion{
		keywordDensity(words, append(append([]string{}, post.Keywords...), post.Tags...)),
		headingStructure(post.Content),
		metaDescription(post.Description),
		s.internalLinks(post.Content),
		contentLength(len(words)),
		imageAltText(post.Content),
	}
}

func keywordDensity(words []string, keywords []string) SEOSuggestion {
	if len(keywords) == 0 {
		return SEOSuggestion{Level: LevelWarning, Title: "Keyword density", Description: "Add a focus keyword to measure keyword density"}
	}
	if len(words) == 0 {
		return SEOSuggestion{Level: LevelError, Title: "Keyword density: 0%", Description: "Add content that mentions your focus keyword"}
	}

	focus := strings.Fields(strings.ToLower(keywords[0]))
	hits := 0
	for i := 0; i+len(focus) <= len(words); i++ {
		match := true
		for j, part := range focus {
			if normalizeWord(words[i+j]) != part {
				match = false
				break
			}
		}
		if match {
			hits++
		}
	}

	density := float64(hits*len(focus)) / float64(len(words)) * 100
	title := fmt.Sprintf("Keyword density: %.1f%%", density)
	switch {
	case density >= 1 && density <= 3:
		return SEOSuggestion{Level: LevelSuccess, Title: title, Description: "Good keyword density (2-3% is ideal)"}
	case density > 3:
		return SEOSuggestion{Level: LevelWarning, Title: title, Description: "Keyword density is high, avoid keyword stuffing"}
	default:
		return SEOSuggestion{Level: LevelWarning, Title: title, Description: fmt.Sprintf("Mention %q more often (2-3%% is ideal)", keywords[0])}
	}
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.Trim(word, ".,;:!?\"'()[]{}"))
}

func headingStructure(content string) SEOSuggestion {
	counts := map[string]int{}
	for _, m := range headingPattern.FindAllStringSubmatch(content, -1) {
		counts[m[1]]++
	}
	for _, m := range markdownHeadingRegex.FindAllStringSubmatch(content, -1) {
		counts[fmt.Sprint(len(m[1]))]++
	}

	switch {
	case counts["2"] > 0 && counts["3"] > 0:
		return SEOSuggestion{Level: LevelSuccess, Title: "Headings structure", Description: "Good use of H2 and H3 headings"}
	case counts["2"] > 0:
		return SEOSuggestion{Level: LevelSuccess, Title: "Headings structure", Description: "Good use of H2 headings, consider H3 subsections"}
	default:
		return SEOSuggestion{Level: LevelWarning, Title: "Headings structure", Description: "Break the content up with H2 and H3 headings"}
	}
}

func metaDescription(description string) SEOSuggestion {
	length := utf8.RuneCountInString(strings.TrimSpace(description))
	switch {
	case length == 0:
		return SEOSuggestion{Level: LevelWarning, Title: "Meta description", Description: "Add a meta description (150-160 characters)"}
	case length >= 150 && length <= 160:
		return SEOSuggestion{Level: LevelSuccess, Title: "Meta description", Description: fmt.Sprintf("%d characters, within the ideal range", length)}
	default:
		return SEOSuggestion{Level: LevelWarning, Title: "Meta description", Description: fmt.Sprintf("%d characters, 150-160 is ideal", length)}
	}
}

func (s *SEOService) internalLinks(content string) SEOSuggestion {
	internal := 0
	for _, m := range anchorPattern.FindAllStringSubmatch(content, -1) {
		href := strings.ToLower(strings.TrimSpace(m[1]))
		switch {
		case strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//"):
			internal++
		case s.siteHost != "" && strings.Contains(href, "://"+s.siteHost):
			internal++
		}
	}
	if internal >= 2 {
		return SEOSuggestion{Level: LevelSuccess, Title: "Internal links", Description: fmt.Sprintf("%d internal links found", internal)}
	}
	return SEOSuggestion{Level: LevelWarning, Title: "Internal links", Description: "Consider adding 2-3 internal links"}
}

func contentLength(words int) SEOSuggestion {
	title := fmt.Sprintf("Content length: ~%s words", groupThousands(int64(words)))
	switch {
	case words >= 1000:
		return SEOSuggestion{Level: LevelSuccess, Title: title, Description: "Good length for SEO (1,000+ words)"}
	case words >= 300:
		return SEOSuggestion{Level: LevelWarning, Title: title, Description: "Longer posts rank better, aim for 1,000+ words"}
	default:
		return SEOSuggestion{Level: LevelError, Title: title, Description: "Content is too short to rank well"}
	}
}

func imageAltText(content string) SEOSuggestion {
	images := imagePattern.FindAllString(content, -1)
	if len(images) == 0 {
		return SEOSuggestion{Level: LevelWarning, Title: "Image alt text", Description: "Add at least one image with descriptive alt text"}
	}
	missing := 0
	for _, img := range images {
		m := altPattern.FindStringSubmatch(img)
		if m == nil || strings.TrimSpace(m[1]) == "" {
			missing++
		}
	}
	if missing > 0 {
		return SEOSuggestion{Level: LevelError, Title: "Image alt text", Description: "Add alt text to all images for accessibility"}
	}
	return SEOSuggestion{Level: LevelSuccess, Title: "Image alt text", Description: "All images have alt text"}
}
