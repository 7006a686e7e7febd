package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/form"
)

var (
	ErrEmptySuggestion = errors.New("invalid response format")
	ErrRateLimited     = errors.New("too many research requests, please wait a minute")
	ErrNoTopic         = errors.New("no topic available for auto-generation")
)

// ContentSuggestion is the AI proposal for a topic. It is never persisted.
type ContentSuggestion struct {
	Title    string   `json:"title"`
	Meta     string   `json:"meta"`
	Keywords []string `json:"keywords"`
	Outline  string   `json:"outline"`
	Slug     string   `json:"slug"`
}

// SEOAnalysis is the optional report attached to a research response.
type SEOAnalysis struct {
	WordCount struct {
		Count          int    `json:"count"`
		Status         string `json:"status"`
		Recommendation string `json:"recommendation"`
	} `json:"wordCount"`
	KeywordDensity struct {
		Average        string            `json:"average"`
		Status         string            `json:"status"`
		Recommendation string            `json:"recommendation"`
		ByKeyword      map[string]string `json:"byKeyword,omitempty"`
	} `json:"keywordDensity"`
	Readability struct {
		Score          float64 `json:"score"`
		Status         string  `json:"status"`
		Recommendation string  `json:"recommendation"`
	} `json:"readability"`
	Headings struct {
		H1        int      `json:"h1"`
		H2        int      `json:"h2"`
		H3        int      `json:"h3"`
		H4        int      `json:"h4"`
		H5        int      `json:"h5"`
		H6        int      `json:"h6"`
		Total     int      `json:"total"`
		Structure string   `json:"structure"`
		Issues    []string `json:"issues"`
	} `json:"headings"`
	Links struct {
		Total       int      `json:"total"`
		Internal    int      `json:"internal"`
		External    int      `json:"external"`
		IssuesFound []string `json:"issuesFound"`
	} `json:"links"`
	Images struct {
		Total      int `json:"total"`
		MissingAlt int `json:"missingAlt"`
		EmptyAlt   int `json:"emptyAlt"`
	} `json:"images"`
	MetaDescription struct {
		Length         int    `json:"length"`
		Status         string `json:"status"`
		Recommendation string `json:"recommendation"`
	} `json:"metaDescription"`
}

// StatusLevel maps an analysis status to success, error or warning.
func StatusLevel(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "good":
		return LevelSuccess
	case "poor", "difficult", "missing", "too short", "too long":
		return LevelError
	default:
		return LevelWarning
	}
}

// ResearchResult is a normalized research response.
type ResearchResult struct {
	Suggestion  ContentSuggestion
	Source      string
	WordCount   int
	Tone        string
	SEOAnalysis *SEOAnalysis
}

// ResearchRequest is the body sent to the research endpoint.
type ResearchRequest struct {
	Topic     string `json:"topic"`
	WordCount int    `json:"wordCount"`
	Tone      string `json:"tone,omitempty"`
}

// ResearchService calls the content research endpoint and cleans its output.
type ResearchService struct {
	api     *apiclient.Client
	limiter RateLimiter
}

// NewResearchService creates a ResearchService. A nil limiter disables limiting.
func NewResearchService(api *apiclient.Client, limiter RateLimiter) *ResearchService {
	return &ResearchService{api: api, limiter: limiter}
}

// Research asks the backend for a suggestion. key identifies the caller for
// rate limiting.
func (s *ResearchService) Research(ctx context.Context, key string, req ResearchRequest) (*ResearchResult, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return nil, ErrNoTopic
	}
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "research:"+key)
		if err != nil {
			logResearchExchange("limiter", err.Error())
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	payload, _ := json.Marshal(req)
	logResearchExchange("request", string(payload))

	var raw struct {
		Suggestion *struct {
			Title    string          `json:"title"`
			Meta     string          `json:"meta"`
			Keywords json.RawMessage `json:"keywords"`
			Outline  string          `json:"outline"`
			Slug     string          `json:"slug"`
		} `json:"suggestion"`
		Source      string       `json:"source"`
		WordCount   int          `json:"wordCount"`
		SEOAnalysis *SEOAnalysis `json:"seoAnalysis"`
	}
	if _, err := s.api.Post(ctx, "content/research", req, &raw); err != nil {
		return nil, fmt.Errorf("research topic: %w", err)
	}
	if raw.Suggestion == nil {
		return nil, ErrEmptySuggestion
	}

	keywords := decodeStringList(raw.Suggestion.Keywords)
	suggestion := NormalizeSuggestion(ContentSuggestion{
		Title:    raw.Suggestion.Title,
		Meta:     raw.Suggestion.Meta,
		Keywords: keywords,
		Outline:  raw.Suggestion.Outline,
		Slug:     raw.Suggestion.Slug,
	})
	logResearchExchange("response", suggestion.Title+"\n"+suggestion.Outline)

	wordCount := raw.WordCount
	if wordCount == 0 {
		wordCount = req.WordCount
	}
	return &ResearchResult{
		Suggestion:  suggestion,
		Source:      raw.Source,
		WordCount:   wordCount,
		Tone:        req.Tone,
		SEOAnalysis: raw.SEOAnalysis,
	}, nil
}

// NormalizeSuggestion strips `**` emphasis markers and surrounding whitespace
// from every text field and derives the slug from the title when missing.
func NormalizeSuggestion(s ContentSuggestion) ContentSuggestion {
	out := ContentSuggestion{
		Title:    stripEmphasis(s.Title),
		Meta:     stripEmphasis(s.Meta),
		Outline:  stripEmphasis(s.Outline),
		Keywords: make([]string, 0, len(s.Keywords)),
	}
	for _, keyword := range s.Keywords {
		if cleaned := stripEmphasis(keyword); cleaned != "" {
			out.Keywords = append(out.Keywords, cleaned)
		}
	}
	out.Slug = form.Slugify(stripEmphasis(s.Slug))
	if out.Slug == "" {
		out.Slug = form.Slugify(out.Title)
	}
	return out
}

func stripEmphasis(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "**", ""))
}

// AdoptInto copies the suggestion into a post form: title, body and tags.
func (s ContentSuggestion) AdoptInto(f form.PostForm) form.PostForm {
	f.Title = s.Title
	f.Content = s.Outline
	f.Tags = form.JoinList(s.Keywords)
	f.Keywords = form.JoinList(s.Keywords)
	if s.Meta != "" {
		f.Description = s.Meta
	}
	f.Slug = s.Slug
	return f
}
