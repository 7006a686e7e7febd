package form

import (
	"strings"
	"unicode/utf8"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// PostForm is the single schema used by every create and edit page.
type PostForm struct {
	Title         string `form:"title" json:"title" validate:"required,min=5"`
	Slug          string `form:"slug" json:"slug" validate:"omitempty,min=2"`
	Content       string `form:"content" json:"content" validate:"required,min=50"`
	Description   string `form:"description" json:"description" validate:"omitempty,min=20"`
	MetaTitle     string `form:"metaTitle" json:"metaTitle" validate:"omitempty,max=70"`
	Tags          string `form:"tags" json:"tags"`
	Keywords      string `form:"keywords" json:"keywords"`
	FeaturedImage string `form:"featuredImage" json:"featuredImage" validate:"omitempty,http_url"`
	Status        string `form:"status" json:"status" validate:"required,oneof=draft published"`
	// ImagePreview holds a locally decoded image (data URL) awaiting upload.
	ImagePreview string `form:"imagePreview" json:"-"`
}

var postMessages = map[string]string{
	"title.required":   "Title must be at least 5 characters",
	"title.min":        "Title must be at least 5 characters",
	"slug.min":         "Slug is required",
	"content.required": "Content must be at least 50 characters",
	"content.min":      "Content must be at least 50 characters",
	"description.min":  "Description must be at least 20 characters",
	"metaTitle.max":    "Meta title should stay under 70 characters",
	"featuredImage":    "Please enter a valid image URL",
	"status":           "Status must be draft or published",
}

// Normalize trims every field, defaults the status to draft and derives the
// slug from the title when none was given.
func (f *PostForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Content = strings.TrimSpace(f.Content)
	f.Description = strings.TrimSpace(f.Description)
	f.MetaTitle = strings.TrimSpace(f.MetaTitle)
	f.Tags = strings.TrimSpace(f.Tags)
	f.Keywords = strings.TrimSpace(f.Keywords)
	f.FeaturedImage = strings.TrimSpace(f.FeaturedImage)
	f.ImagePreview = strings.TrimSpace(f.ImagePreview)
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status == "" {
		f.Status = StatusDraft
	}
	if f.Slug == "" {
		f.Slug = Slugify(f.Title)
	} else {
		f.Slug = Slugify(f.Slug)
	}
}

// Validate normalizes the form and returns the failed fields.
func (f *PostForm) Validate() Errors {
	f.Normalize()
	return check(f, postMessages)
}

// PendingImage returns the image to resolve before saving: a fresh local
// preview wins over the current URL.
func (f PostForm) PendingImage() string {
	if f.ImagePreview != "" {
		return f.ImagePreview
	}
	return f.FeaturedImage
}

// TagList returns the parsed tags.
func (f PostForm) TagList() []string {
	return SplitList(f.Tags)
}

// KeywordList returns the parsed keywords.
func (f PostForm) KeywordList() []string {
	return SplitList(f.Keywords)
}

// ValidStatus reports whether status is one of the two post states.
func ValidStatus(status string) bool {
	return status == StatusDraft || status == StatusPublished
}

var tones = []string{"professional", "casual", "witty", "authoritative", "friendly"}

// Tones lists the writing tones offered by the generator and settings pages.
func Tones() []string {
	return append([]string(nil), tones...)
}

// WordCounts lists the preset lengths offered by the generator.
func WordCounts() []string {
	return []string{"500", "1000", "1500", "2000"}
}

// GenerateForm drives the content generator page. Topic is only required
// when AutoGenerate is off.
type GenerateForm struct {
	Topic        string `form:"topic" json:"topic"`
	Tone         string `form:"tone" json:"tone" validate:"required,oneof=professional casual witty authoritative friendly"`
	WordCount    string `form:"wordCount" json:"wordCount" validate:"required,oneof=500 1000 1500 2000"`
	AutoGenerate bool   `form:"autoGenerate" json:"autoGenerate"`
}

var generateMessages = map[string]string{
	"tone":      "Please select a tone",
	"wordCount": "Please select a word count",
}

// DefaultGenerateForm returns the initial generator values.
func DefaultGenerateForm() GenerateForm {
	return GenerateForm{Tone: "professional", WordCount: "1000"}
}

// Validate checks the generator input.
func (f *GenerateForm) Validate() Errors {
	f.Topic = strings.TrimSpace(f.Topic)
	f.Tone = strings.TrimSpace(f.Tone)
	f.WordCount = strings.TrimSpace(f.WordCount)

	errs := check(f, generateMessages)
	if f.AutoGenerate {
		return errs
	}
	switch {
	case f.Topic == "":
		errs.Add("topic", "Please enter a topic or select auto-generate")
	case utf8.RuneCountInString(f.Topic) < 5:
		errs.Add("topic", "Topic must be at least 5 characters")
	}
	return errs
}

// ResearchForm drives the AI research panel.
type ResearchForm struct {
	Topic     string `form:"topic" json:"topic" validate:"required"`
	WordCount int    `form:"wordCount" json:"wordCount" validate:"min=300,max=3000"`
	Tone      string `form:"tone" json:"tone" validate:"omitempty,oneof=professional casual witty authoritative friendly"`
}

var researchMessages = map[string]string{
	"topic":     "Please enter a topic to research",
	"wordCount": "Word count must be between 300 and 3000",
	"tone":      "Please select a valid tone",
}

// Validate checks the research input; a zero word count becomes 800.
func (f *ResearchForm) Validate() Errors {
	f.Topic = strings.TrimSpace(f.Topic)
	f.Tone = strings.TrimSpace(f.Tone)
	if f.WordCount == 0 {
		f.WordCount = 800
	}
	errs := check(f, researchMessages)
	if !errs.Has("wordCount") && f.WordCount%100 != 0 {
		errs.Add("wordCount", "Word count must be a multiple of 100")
	}
	return errs
}

// LengthLabel describes the chosen word count the way the research slider does.
func LengthLabel(wordCount int) string {
	switch {
	case wordCount < 500:
		return "Short"
	case wordCount < 1000:
		return "Medium"
	default:
		return "Long"
	}
}
