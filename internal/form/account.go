package form

import "strings"

// LoginForm is submitted by the login page.
type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

var loginMessages = map[string]string{
	"email":    "Please enter a valid email address",
	"password": "Password is required",
}

func (f *LoginForm) Validate() Errors {
	f.Email = strings.TrimSpace(f.Email)
	return check(f, loginMessages)
}

// SignupForm is submitted by the signup page.
type SignupForm struct {
	Name     string `form:"name" json:"name" validate:"required,min=2"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
}

var signupMessages = map[string]string{
	"name":     "Name must be at least 2 characters",
	"email":    "Please enter a valid email address",
	"password": "Password must be at least 6 characters",
}

func (f *SignupForm) Validate() Errors {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return check(f, signupMessages)
}

var industries = []string{
	"Agriculture & Forestry",
	"Automotive & Transportation",
	"Aerospace & Defense",
	"Banking & Finance",
	"Construction & Real Estate",
	"Consumer Goods & Retail",
	"E-commerce",
	"Education & E-learning",
	"Energy & Utilities",
	"Entertainment & Media",
	"Food & Beverage",
	"Healthcare & Pharmaceuticals",
	"Hospitality & Tourism",
	"Information Technology (IT) & Software",
	"Manufacturing & Industrial",
	"Marketing & Advertising",
	"Mining & Metals",
	"Professional Services",
	"Telecommunications",
	"Logistics & Supply Chain",
}

// DefaultIndustry preselects the industry on the personalize tab.
const DefaultIndustry = "Information Technology (IT) & Software"

// Industries returns the selectable industries.
func Industries() []string {
	return append([]string(nil), industries...)
}

func validIndustry(value string) bool {
	for _, industry := range industries {
		if industry == value {
			return true
		}
	}
	return false
}

// OnboardingForm collects the business profile after signup.
type OnboardingForm struct {
	BusinessName     string `form:"businessName" json:"businessName" validate:"required,min=2"`
	Industry         string `form:"industry" json:"industry" validate:"required"`
	TargetAudience   string `form:"targetAudience" json:"targetAudience" validate:"required,min=2"`
	PrimaryKeywords  string `form:"primaryKeywords" json:"primaryKeywords" validate:"required,min=2"`
	PreferredSources string `form:"preferredSources" json:"preferredSources,omitempty"`
}

var onboardingMessages = map[string]string{
	"businessName":    "Business name must be at least 2 characters",
	"industry":        "Please select an industry",
	"targetAudience":  "Target audience must be at least 2 characters",
	"primaryKeywords": "Please enter at least one keyword",
}

func (f *OnboardingForm) Validate() Errors {
	f.BusinessName = strings.TrimSpace(f.BusinessName)
	f.Industry = strings.TrimSpace(f.Industry)
	f.TargetAudience = strings.TrimSpace(f.TargetAudience)
	f.PrimaryKeywords = strings.TrimSpace(f.PrimaryKeywords)
	f.PreferredSources = strings.TrimSpace(f.PreferredSources)
	return check(f, onboardingMessages)
}

// ContentPreferences toggles optional parts of generated posts.
type ContentPreferences struct {
	IncludeFeaturedImage   bool `form:"includeFeaturedImage" json:"includeFeaturedImage"`
	IncludeMetaDescription bool `form:"includeMetaDescription" json:"includeMetaDescription"`
	IncludeTableOfContents bool `form:"includeTableOfContents" json:"includeTableOfContents"`
	AutoGenerateTags       bool `form:"autoGenerateTags" json:"autoGenerateTags"`
}

// PersonalizeForm is the settings version of the business profile.
type PersonalizeForm struct {
	BusinessName       string             `form:"businessName" json:"businessName" validate:"required,min=2"`
	Industry           string             `form:"industry" json:"industry" validate:"required"`
	TargetAudience     string             `form:"targetAudience" json:"targetAudience" validate:"required,min=2"`
	PrimaryKeywords    string             `form:"primaryKeywords" json:"primaryKeywords" validate:"required,min=2"`
	ContentPreferences ContentPreferences `json:"contentPreferences"`
	DefaultTone        string             `form:"defaultTone" json:"defaultTone" validate:"required,oneof=professional casual witty authoritative friendly"`
	DefaultWordCount   string             `form:"defaultWordCount" json:"defaultWordCount" validate:"required,oneof=500 1000 1500 2000"`
}

var personalizeMessages = map[string]string{
	"businessName":     "Business name must be at least 2 characters",
	"industry":         "Please select an industry",
	"targetAudience":   "Target audience must be at least 2 characters",
	"primaryKeywords":  "Primary keywords must be at least 2 characters",
	"defaultTone":      "Please select a tone",
	"defaultWordCount": "Please select a word count",
}

// DefaultPersonalizeForm returns the values shown before settings are loaded.
func DefaultPersonalizeForm() PersonalizeForm {
	return PersonalizeForm{
		Industry: DefaultIndustry,
		ContentPreferences: ContentPreferences{
			IncludeFeaturedImage:   true,
			IncludeMetaDescription: true,
			AutoGenerateTags:       true,
		},
		DefaultTone:      "professional",
		DefaultWordCount: "1000",
	}
}

func (f *PersonalizeForm) Validate() Errors {
	f.BusinessName = strings.TrimSpace(f.BusinessName)
	f.Industry = strings.TrimSpace(f.Industry)
	f.TargetAudience = strings.TrimSpace(f.TargetAudience)
	f.PrimaryKeywords = strings.TrimSpace(f.PrimaryKeywords)
	if f.DefaultTone == "" {
		f.DefaultTone = "professional"
	}
	if f.DefaultWordCount == "" {
		f.DefaultWordCount = "1000"
	}
	errs := check(f, personalizeMessages)
	if !errs.Has("industry") && !validIndustry(f.Industry) {
		errs.Add("industry", "Please select an industry")
	}
	return errs
}

// ScrapeOptions mirrors the advanced options of the scraper form.
type ScrapeOptions struct {
	IncludeImages    bool   `form:"includeImages" json:"includeImages"`
	IncludeLinks     bool   `form:"includeLinks" json:"includeLinks"`
	IncludeTables    bool   `form:"includeTables" json:"includeTables"`
	IncludeLists     bool   `form:"includeLists" json:"includeLists"`
	IncludeCode      bool   `form:"includeCode" json:"includeCode"`
	ExcludeSelectors string `form:"excludeSelectors" json:"excludeSelectors"`
	CustomSelectors  string `form:"customSelectors" json:"customSelectors"`
	WaitForSelector  string `form:"waitForSelector" json:"waitForSelector"`
	MaxDepth         int    `form:"maxDepth" json:"maxDepth" validate:"min=0,max=5"`
	Timeout          int    `form:"timeout" json:"timeout" validate:"min=0,max=120000"`
}

// ScrapeForm requests extraction of one URL.
type ScrapeForm struct {
	URL     string        `form:"url" json:"url" validate:"required,http_url"`
	Options ScrapeOptions `json:"options"`
}

var scrapeMessages = map[string]string{
	"url.required":     "Please enter a URL",
	"url.http_url":     "Please enter a valid URL",
	"options.maxDepth": "Max depth must be between 0 and 5",
	"options.timeout":  "Timeout must be between 0 and 120000 ms",
}

// DefaultScrapeForm returns the scraper defaults.
func DefaultScrapeForm() ScrapeForm {
	return ScrapeForm{Options: ScrapeOptions{
		IncludeImages: true,
		IncludeLinks:  true,
		IncludeTables: true,
		IncludeLists:  true,
		IncludeCode:   true,
		MaxDepth:      2,
		Timeout:       30000,
	}}
}

func (f *ScrapeForm) Validate() Errors {
	f.URL = strings.TrimSpace(f.URL)
	return check(f, scrapeMessages)
}

// ProcessForm sends scraped content back to the AI generator.
type ProcessForm struct {
	Title   string `form:"title" json:"title" validate:"required"`
	Content string `form:"content" json:"content" validate:"required"`
	Prompt  string `form:"prompt" json:"prompt" validate:"required"`
}

var processMessages = map[string]string{
	"title":   "Title and content are required",
	"content": "Title and content are required",
	"prompt":  "Please enter a prompt",
}

func (f *ProcessForm) Validate() Errors {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
	f.Prompt = strings.TrimSpace(f.Prompt)
	return check(f, processMessages)
}
