package editor

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML(), gmhtml.WithUnsafe()),
	)
	strictPolicy = bluemonday.StrictPolicy()

	blockBreak = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre)>|<br\s*/?>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t]+`)
)

// RenderMarkdown converts markdown into sanitized HTML. Bare YouTube links on
// their own line become embeds.
func RenderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(applyVideoEmbeds(content)), &buf); err != nil {
		return "", err
	}
	return template.HTML(contentSanitizer.SanitizeBytes(buf.Bytes())), nil
}

// LooksLikeHTML reports whether content already carries markup.
func LooksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

// ToHTML renders markdown content and sanitizes HTML content, so both the
// research outline and the stored post body display the same way.
func ToHTML(content string) template.HTML {
	if LooksLikeHTML(content) {
		return SafeHTML(content)
	}
	rendered, err := RenderMarkdown(content)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return rendered
}

// PlainText strips every tag, keeping paragraph breaks.
func PlainText(content string) string {
	withBreaks := blockBreak.ReplaceAllStringFunc(content, func(tag string) string {
		return tag + "\n"
	})
	text := html.UnescapeString(strictPolicy.Sanitize(withBreaks))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}

// Markdown builds the copy and download payload: a title heading followed by
// the body with markup removed.
func Markdown(title, body string) string {
	return "# " + strings.TrimSpace(title) + "\n\n" + PlainText(body)
}

// Excerpt returns the first n runes of the plain text.
func Excerpt(content string, n int) string {
	text := strings.Join(strings.Fields(PlainText(content)), " ")
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
