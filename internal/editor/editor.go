// Package editor isolates the rich-text widget and the HTML handling around it.
package editor

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Config is handed to the page template that boots the widget.
type Config struct {
	ScriptURL string
	Selector  string
	Height    int
	Plugins   []string
	Toolbar   string
	MenuBar   bool
}

// PluginList joins the plugins the way the widget expects them.
func (c Config) PluginList() string {
	return strings.Join(c.Plugins, " ")
}

// RichTextEditor is the capability the write and edit pages depend on.
type RichTextEditor interface {
	Config() Config
	// Sanitize cleans HTML submitted from the widget before it is saved.
	Sanitize(html string) string
}

// TinyMCE is the hosted TinyMCE widget.
type TinyMCE struct {
	apiKey string
	policy *bluemonday.Policy
}

// NewTinyMCE creates the editor. An empty apiKey uses the public "no-api-key" channel.
func NewTinyMCE(apiKey string) *TinyMCE {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		apiKey = "no-api-key"
	}
	return &TinyMCE{apiKey: apiKey, policy: contentPolicy()}
}

func (t *TinyMCE) Config() Config {
	return Config{
		ScriptURL: "https://cdn.tiny.cloud/1/" + t.apiKey + "/tinymce/6/tinymce.min.js",
		Selector:  "textarea.rich-text",
		Height:    500,
		Plugins: []string{
			"advlist", "autolink", "lists", "link", "image", "charmap", "preview",
			"anchor", "searchreplace", "visualblocks", "code", "fullscreen",
			"insertdatetime", "media", "table", "help", "wordcount",
		},
		Toolbar: "undo redo | blocks | bold italic forecolor | alignleft aligncenter " +
			"alignright alignjustify | bullist numlist outdent indent | removeformat | help",
	}
}

func (t *TinyMCE) Sanitize(html string) string {
	return t.policy.Sanitize(html)
}

var youtubeEmbedSrc = regexp.MustCompile(`^https://(?:www\.)?(?:youtube\.com/embed/|youtube-nocookie\.com/embed/)`)

// contentPolicy is the UGC policy plus YouTube iframes, which the media
// plugin and bare video links produce.
func contentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-video-embed").OnElements("div")
	policy.AllowAttrs("src").Matching(youtubeEmbedSrc).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "width", "height").OnElements("iframe")
	policy.AllowAttrs("style").OnElements("span", "p")
	policy.AllowStyles("color", "text-align").OnElements("span", "p")
	return policy
}

var contentSanitizer = contentPolicy()

// SafeHTML sanitizes html for direct rendering, e.g. scraped previews.
func SafeHTML(html string) template.HTML {
	return template.HTML(contentSanitizer.Sanitize(html))
}
