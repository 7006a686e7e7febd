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

var ErrMissingProcessedID = errors.New("processed content did not return a post id")

// ScrapedContent is what the backend extracted from a page.
type ScrapedContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Images      []string `json:"images"`
	Links       []string `json:"links"`
	SourceURL   string   `json:"sourceUrl"`
}

type scrapeRequest struct {
	URL     string        `json:"url"`
	Options scrapeOptions `json:"options"`
}

type scrapeOptions struct {
	IncludeImages    bool     `json:"includeImages"`
	IncludeLinks     bool     `json:"includeLinks"`
	IncludeTables    bool     `json:"includeTables"`
	IncludeLists     bool     `json:"includeLists"`
	IncludeCode      bool     `json:"includeCode"`
	ExcludeSelectors []string `json:"excludeSelectors"`
	CustomSelectors  []string `json:"customSelectors"`
	WaitForSelector  string   `json:"waitForSelector,omitempty"`
	MaxDepth         int      `json:"maxDepth"`
	Timeout          int      `json:"timeout"`
}

// ScraperService drives the scrape and process endpoints.
type ScraperService struct {
	api *apiclient.Client
}

func NewScraperService(api *apiclient.Client) *ScraperService {
	return &ScraperService{api: api}
}

// Scrape extracts the page at f.URL.
func (s *ScraperService) Scrape(ctx context.Context, f form.ScrapeForm) (*ScrapedContent, error) {
	req := scrapeRequest{
		URL: f.URL,
		Options: scrapeOptions{
			IncludeImages:    f.Options.IncludeImages,
			IncludeLinks:     f.Options.IncludeLinks,
			IncludeTables:    f.Options.IncludeTables,
			IncludeLists:     f.Options.IncludeLists,
			IncludeCode:      f.Options.IncludeCode,
			ExcludeSelectors: form.SplitList(f.Options.ExcludeSelectors),
			CustomSelectors:  form.SplitList(f.Options.CustomSelectors),
			WaitForSelector:  strings.TrimSpace(f.Options.WaitForSelector),
			MaxDepth:         f.Options.MaxDepth,
			Timeout:          f.Options.Timeout,
		},
	}

	var raw json.RawMessage
	if _, err := s.api.Post(ctx, "scraper/scrape", req, &raw); err != nil {
		return nil, fmt.Errorf("scrape %s: %w", f.URL, err)
	}
	var content ScrapedContent
	if err := json.Unmarshal(unwrap(raw, "data"), &content); err != nil {
		return nil, fmt.Errorf("decode scraped content: %w", err)
	}
	if content.SourceURL == "" {
		content.SourceURL = f.URL
	}
	return &content, nil
}

// Process sends the edited scrape to the generator and returns the id of the
// post it created.
func (s *ScraperService) Process(ctx context.Context, f form.ProcessForm) (string, error) {
	var raw json.RawMessage
	if _, err := s.api.Post(ctx, "scraper/process", f, &raw); err != nil {
		return "", fmt.Errorf("process scraped content: %w", err)
	}
	post, err := decodePost(raw)
	if err != nil {
		return "", err
	}
	if post.ID == "" {
		return "", ErrMissingProcessedID
	}
	return post.ID, nil
}
