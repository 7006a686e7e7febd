package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/form"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrInvalidPostStatus = errors.New("post status must be draft or published")
	ErrMissingPostID     = errors.New("post id is required")
)

// Post is the article shape returned by the backend.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Status        string    `json:"status"`
	Content       string    `json:"content"`
	Tags          []string  `json:"tags"`
	Keywords      []string  `json:"keywords"`
	MetaTitle     string    `json:"metaTitle"`
	Description   string    `json:"description"`
	FeaturedImage string    `json:"featuredImage"`
	ReadTime      string    `json:"readTime"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts `_id` or `id`, `content` or `body`, and a numeric or
// textual read time.
func (p *Post) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            string          `json:"id"`
		MongoID       string          `json:"_id"`
		Title         string          `json:"title"`
		Slug          string          `json:"slug"`
		Status        string          `json:"status"`
		Content       string          `json:"content"`
		Body          string          `json:"body"`
		Tags          json.RawMessage `json:"tags"`
		Keywords      json.RawMessage `json:"keywords"`
		MetaTitle     string          `json:"metaTitle"`
		Description   string          `json:"description"`
		FeaturedImage string          `json:"featuredImage"`
		Image         string          `json:"image"`
		ReadTime      json.RawMessage `json:"readTime"`
		CreatedAt     string          `json:"createdAt"`
		UpdatedAt     string          `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Post{
		ID:            firstNonEmpty(raw.MongoID, raw.ID),
		Title:         strings.TrimSpace(raw.Title),
		Slug:          strings.TrimSpace(raw.Slug),
		Status:        strings.ToLower(strings.TrimSpace(raw.Status)),
		Content:       firstNonEmpty(raw.Content, raw.Body),
		Tags:          decodeStringList(raw.Tags),
		Keywords:      decodeStringList(raw.Keywords),
		MetaTitle:     strings.TrimSpace(raw.MetaTitle),
		Description:   strings.TrimSpace(raw.Description),
		FeaturedImage: firstNonEmpty(raw.FeaturedImage, raw.Image),
		CreatedAt:     parseTimestamp(raw.CreatedAt),
		UpdatedAt:     parseTimestamp(raw.UpdatedAt),
	}
	if !form.ValidStatus(p.Status) {
		p.Status = form.StatusDraft
	}
	p.ReadTime = decodeReadTime(raw.ReadTime)
	if p.ReadTime == "" && p.Content != "" {
		p.ReadTime = fmt.Sprintf("%d min read", calculateReadingTime(p.Content))
	}
	return nil
}

// Published reports whether the post is live.
func (p Post) Published() bool {
	return p.Status == form.StatusPublished
}

// Form converts the post into the editable schema.
func (p Post) Form() form.PostForm {
	return form.PostForm{
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Description:   p.Description,
		MetaTitle:     p.MetaTitle,
		Tags:          form.JoinList(p.Tags),
		Keywords:      form.JoinList(p.Keywords),
		FeaturedImage: p.FeaturedImage,
		Status:        p.Status,
	}
}

// PostInput is the payload sent to the create and update endpoints.
type PostInput struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug,omitempty"`
	Content       string   `json:"content"`
	Description   string   `json:"description,omitempty"`
	MetaTitle     string   `json:"metaTitle,omitempty"`
	Tags          []string `json:"tags"`
	Keywords      []string `json:"keywords,omitempty"`
	FeaturedImage string   `json:"featuredImage,omitempty"`
	Status        string   `json:"status"`
}

// PostInputFromForm builds the payload from a validated form.
func PostInputFromForm(f form.PostForm) PostInput {
	return PostInput{
		Title:         f.Title,
		Slug:          f.Slug,
		Content:       f.Content,
		Description:   f.Description,
		MetaTitle:     f.MetaTitle,
		Tags:          f.TagList(),
		Keywords:      f.KeywordList(),
		FeaturedImage: f.FeaturedImage,
		Status:        f.Status,
	}
}

// PostStats are the counters shown on the dashboard.
type PostStats struct {
	Total     int
	Published int
	Drafts    int
}

// CountPosts tallies posts by status.
func CountPosts(posts []Post) PostStats {
	stats := PostStats{Total: len(posts)}
	for _, post := range posts {
		if post.Published() {
			stats.Published++
		} else {
			stats.Drafts++
		}
	}
	return stats
}

// PostService wraps the backend post endpoints.
type PostService struct {
	api *apiclient.Client
}

// NewPostService creates a PostService instance.
func NewPostService(api *apiclient.Client) *PostService {
	return &PostService{api: api}
}

// ListForUser returns the posts owned by the caller.
func (s *PostService) ListForUser(ctx context.Context) ([]Post, error) {
	return s.list(ctx, "posts/user")
}

// List returns every post visible to the caller.
func (s *PostService) List(ctx context.Context) ([]Post, error) {
	return s.list(ctx, "posts")
}

func (s *PostService) list(ctx context.Context, path string) ([]Post, error) {
	var raw json.RawMessage
	if _, err := s.api.Get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts, err := decodePosts(raw)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Get fetches one post.
func (s *PostService) Get(ctx context.Context, id string) (*Post, error) {
	path, err := postPath(id)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if _, err := s.api.Get(ctx, path, &raw); err != nil {
		if apiclient.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return decodePost(raw)
}

// Create persists a new post.
func (s *PostService) Create(ctx context.Context, input PostInput) (*Post, error) {
	input = normalizeInput(input)
	var raw json.RawMessage
	if _, err := s.api.Post(ctx, "posts", input, &raw); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return decodeSavedPost(raw, input, "")
}

// Update replaces an existing post.
func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*Post, error) {
	path, err := postPath(id)
	if err != nil {
		return nil, err
	}
	input = normalizeInput(input)
	var raw json.RawMessage
	if _, err := s.api.Put(ctx, path, input, &raw); err != nil {
		if apiclient.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return decodeSavedPost(raw, input, id)
}

// Patch applies a partial update, used by the post detail page.
func (s *PostService) Patch(ctx context.Context, id string, input PostInput) (*Post, error) {
	path, err := postPath(id)
	if err != nil {
		return nil, err
	}
	input = normalizeInput(input)
	var raw json.RawMessage
	if _, err := s.api.Patch(ctx, path, input, &raw); err != nil {
		if apiclient.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("patch post: %w", err)
	}
	return decodeSavedPost(raw, input, id)
}

// SetStatus switches a post between draft and published.
func (s *PostService) SetStatus(ctx context.Context, id, status string) (*Post, error) {
	path, err := postPath(id)
	if err != nil {
		return nil, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !form.ValidStatus(status) {
		return nil, ErrInvalidPostStatus
	}
	var raw json.RawMessage
	if _, err := s.api.Patch(ctx, path, map[string]string{"status": status}, &raw); err != nil {
		if apiclient.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("update post status: %w", err)
	}
	post, err := decodePost(raw)
	if err != nil || post.ID == "" {
		return &Post{ID: id, Status: status}, nil
	}
	return post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	path, err := postPath(id)
	if err != nil {
		return err
	}
	if _, err := s.api.Delete(ctx, path, nil); err != nil {
		if apiclient.IsNotFound(err) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func postPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingPostID
	}
	return "posts/" + url.PathEscape(id), nil
}

func normalizeInput(input PostInput) PostInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))
	if !form.ValidStatus(input.Status) {
		input.Status = form.StatusDraft
	}
	if strings.TrimSpace(input.Slug) == "" {
		input.Slug = form.Slugify(input.Title)
	}
	if input.Tags == nil {
		input.Tags = []string{}
	}
	return input
}

// decodeSavedPost reads the saved post back, falling back to the submitted
// input when the backend only acknowledges the write.
func decodeSavedPost(raw json.RawMessage, input PostInput, id string) (*Post, error) {
	post, err := decodePost(raw)
	if err == nil && (post.ID != "" || post.Title != "") {
		if post.ID == "" {
			post.ID = id
		}
		return post, nil
	}
	return &Post{
		ID:            id,
		Title:         input.Title,
		Slug:          input.Slug,
		Status:        input.Status,
		Content:       input.Content,
		Tags:          input.Tags,
		Keywords:      input.Keywords,
		MetaTitle:     input.MetaTitle,
		Description:   input.Description,
		FeaturedImage: input.FeaturedImage,
	}, nil
}

func decodePost(raw json.RawMessage) (*Post, error) {
	var post Post
	if err := json.Unmarshal(unwrap(raw, "post", "data"), &post); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	return &post, nil
}

func decodePosts(raw json.RawMessage) ([]Post, error) {
	body := unwrap(raw, "posts", "data")
	if len(body) == 0 || string(body) == "null" {
		return []Post{}, nil
	}
	var posts []Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

// unwrap descends into the first present envelope key, so `{data: {posts: []}}`
// and a bare array decode the same way.
func unwrap(raw json.RawMessage, keys ...string) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return trimmed
	}
	for _, key := range keys {
		inner, ok := envelope[key]
		inner = bytes.TrimSpace(inner)
		if !ok || len(inner) == 0 || string(inner) == "null" {
			continue
		}
		return unwrap(inner, keys...)
	}
	return trimmed
}

// decodeStringList accepts a JSON array or a comma separated string.
func decodeStringList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return form.SplitList(strings.Join(list, ","))
	}
	var csv string
	if err := json.Unmarshal(raw, &csv); err == nil {
		return form.SplitList(csv)
	}
	return nil
}

func decodeReadTime(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		text = strings.TrimSpace(text)
		if minutes, err := strconv.Atoi(text); err == nil {
			return fmt.Sprintf("%d min read", minutes)
		}
		return text
	}
	var minutes float64
	if err := json.Unmarshal(raw, &minutes); err == nil && minutes > 0 {
		return fmt.Sprintf("%d min read", int(minutes+0.5))
	}
	return ""
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// calculateReadingTime assumes roughly 200 words per minute.
func calculateReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	minutes := words / 200
	if words%200 != 0 {
		minutes++
	}
	return minutes
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
