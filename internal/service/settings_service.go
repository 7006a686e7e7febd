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

var ErrEmptyAPIKey = errors.New("the server did not return an api key")

// Profile is the user payload some endpoints echo back.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SettingsService wraps onboarding, personalization and api key endpoints.
type SettingsService struct {
	api *apiclient.Client
}

func NewSettingsService(api *apiclient.Client) *SettingsService {
	return &SettingsService{api: api}
}

// Onboard saves the business profile. The returned profile is nil unless the
// backend echoed the updated user.
func (s *SettingsService) Onboard(ctx context.Context, f form.OnboardingForm) (*Profile, error) {
	var body struct {
		User *Profile `json:"user"`
	}
	if _, err := s.api.Post(ctx, "business/onboarding", f, &body); err != nil {
		return nil, fmt.Errorf("save business profile: %w", err)
	}
	if body.User == nil || (body.User.Name == "" && body.User.Email == "") {
		return nil, nil
	}
	return body.User, nil
}

// Personalize loads the saved preferences. Defaults are returned when the
// backend has none yet.
func (s *SettingsService) Personalize(ctx context.Context) (form.PersonalizeForm, error) {
	settings := form.DefaultPersonalizeForm()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if _, err := s.api.Get(ctx, "settings/personalize", &body); err != nil {
		return settings, fmt.Errorf("load business settings: %w", err)
	}
	data := strings.TrimSpace(string(body.Data))
	if data == "" || data == "null" {
		return settings, nil
	}
	if err := json.Unmarshal(body.Data, &settings); err != nil {
		return form.DefaultPersonalizeForm(), fmt.Errorf("decode business settings: %w", err)
	}
	return settings, nil
}

// SavePersonalize stores the preferences.
func (s *SettingsService) SavePersonalize(ctx context.Context, f form.PersonalizeForm) error {
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if _, err := s.api.Post(ctx, "settings/personalize", f, &body); err != nil {
		return fmt.Errorf("save business settings: %w", err)
	}
	if body.Status != "" && !strings.EqualFold(body.Status, "success") {
		msg := strings.TrimSpace(body.Message)
		if msg == "" {
			msg = "Failed to save business settings"
		}
		return errors.New(msg)
	}
	return nil
}

// GenerateAPIKey asks the backend for a new key. The key is returned to be
// shown once and is never stored here.
func (s *SettingsService) GenerateAPIKey(ctx context.Context) (string, error) {
	var raw json.RawMessage
	if _, err := s.api.Post(ctx, "settings/generate-api-key", struct{}{}, &raw); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	var body struct {
		APIKey string `json:"apiKey"`
		Key    string `json:"key"`
	}
	if err := json.Unmarshal(unwrap(raw, "data"), &body); err != nil {
		return "", fmt.Errorf("decode api key: %w", err)
	}
	key := firstNonEmpty(body.APIKey, body.Key)
	if key == "" {
		return "", ErrEmptyAPIKey
	}
	return key, nil
}

// MaskAPIKey hides all but the last four characters.
func MaskAPIKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", len(key)-4) + key[len(key)-4:]
}
