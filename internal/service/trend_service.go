package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/form"
)

// TabAll is the trending tab that shows every source.
const TabAll = "all"

// TrendingTopic is one read-only trend entry.
type TrendingTopic struct {
	Title         string `json:"title"`
	Source        string `json:"source"`
	Traffic       string `json:"traffic"`
	Description   string `json:"description"`
	BlogRelevance string `json:"blogRelevance"`
	URL           string `json:"url"`
}

// UnmarshalJSON accepts traffic as either text or a view count.
func (t *TrendingTopic) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title         string          `json:"title"`
		Source        string          `json:"source"`
		Traffic       json.RawMessage `json:"traffic"`
		Description   string          `json:"description"`
		BlogRelevance string          `json:"blogRelevance"`
		URL           string          `json:"url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = TrendingTopic{
		Title:         strings.TrimSpace(raw.Title),
		Source:        strings.TrimSpace(raw.Source),
		Traffic:       formatTraffic(raw.Traffic),
		Description:   strings.TrimSpace(raw.Description),
		BlogRelevance: strings.TrimSpace(raw.BlogRelevance),
		URL:           strings.TrimSpace(raw.URL),
	}
	return nil
}

func formatTraffic(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var views int64
	if err := json.Unmarshal(raw, &views); err == nil {
		return groupThousands(views) + " views"
	}
	return ""
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// SourceTab is one tab on the trending page.
type SourceTab struct {
	Key   string
	Label string
	Count int
}

// TrendService reads trending topics from the backend.
type TrendService struct {
	api *apiclient.Client
}

func NewTrendService(api *apiclient.Client) *TrendService {
	return &TrendService{api: api}
}

// List calls GET /trends. A body with success=false is an error carrying the
// backend message.
func (s *TrendService) List(ctx context.Context) ([]TrendingTopic, error) {
	var body struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    []TrendingTopic `json:"data"`
	}
	if _, err := s.api.Get(ctx, "trends", &body); err != nil {
		return nil, fmt.Errorf("list trends: %w", err)
	}
	if !body.Success {
		msg := strings.TrimSpace(body.Message)
		if msg == "" {
			msg = "Failed to fetch trending topics"
		}
		return nil, errors.New(msg)
	}
	if body.Data == nil {
		return []TrendingTopic{}, nil
	}
	return body.Data, nil
}

// Legacy calls GET /trending, which returns plain topic titles for the
// generator sidebar. Both a bare list and a `{data}` envelope are accepted.
func (s *TrendService) Legacy(ctx context.Context) ([]string, error) {
	var raw json.RawMessage
	if _, err := s.api.Get(ctx, "trending", &raw); err != nil {
		return nil, fmt.Errorf("list trending titles: %w", err)
	}
	body := unwrap(raw, "data", "topics")

	var titles []string
	if err := json.Unmarshal(body, &titles); err == nil {
		return form.SplitList(strings.Join(titles, ",")), nil
	}
	var topics []TrendingTopic
	if err := json.Unmarshal(body, &topics); err != nil {
		return nil, fmt.Errorf("decode trending titles: %w", err)
	}
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		if topic.Title != "" {
			out = append(out, topic.Title)
		}
	}
	return out, nil
}

// Partition keeps the topics of the given tab. Tabs match the source
// case-insensitively or by its slug; TabAll keeps everything.
func Partition(topics []TrendingTopic, tab string) []TrendingTopic {
	tab = strings.ToLower(strings.TrimSpace(tab))
	if tab == "" || tab == TabAll {
		return topics
	}
	out := make([]TrendingTopic, 0, len(topics))
	for _, topic := range topics {
		source := strings.ToLower(topic.Source)
		if source == tab || form.Slugify(source) == tab {
			out = append(out, topic)
		}
	}
	return out
}

// Sources lists the tabs in first-seen order, starting with TabAll.
func Sources(topics []TrendingTopic) []SourceTab {
	tabs := []SourceTab{{Key: TabAll, Label: "All Sources", Count: len(topics)}}
	index := map[string]int{}
	for _, topic := range topics {
		if topic.Source == "" {
			continue
		}
		key := form.Slugify(topic.Source)
		if i, ok := index[key]; ok {
			tabs[i].Count++
			continue
		}
		index[key] = len(tabs)
		tabs = append(tabs, SourceTab{Key: key, Label: topic.Source, Count: 1})
	}
	return tabs
}
