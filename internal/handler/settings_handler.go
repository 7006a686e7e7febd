package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/blogai/internal/form"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	tabProfile      = "profile"
	tabSubscription = "subscription"
	tabPersonalize  = "personalize"
	tabAPIKeys      = "api"
	tabMedia        = "media"
)

var settingsTabs = []navItem{
	{Title: "Profile", URL: tabProfile},
	{Title: "Subscription", URL: tabSubscription},
	{Title: "Personalize", URL: tabPersonalize},
	{Title: "API Keys", URL: tabAPIKeys},
	{Title: "Media", URL: tabMedia},
}

func settingsTab(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, tab := range settingsTabs {
		if tab.URL == raw {
			return raw
		}
	}
	return tabProfile
}

func (a *API) renderSettings(c *gin.Context, status int, tab string, data gin.H) {
	tabs := make([]navItem, len(settingsTabs))
	for i, item := range settingsTabs {
		item.Active = item.URL == tab
		tabs[i] = item
	}
	payload := gin.H{
		"title":      "Settings",
		"tab":        tab,
		"tabs":       tabs,
		"industries": form.Industries(),
		"tones":      form.Tones(),
		"wordCounts": form.WordCounts(),
	}
	for key, value := range data {
		payload[key] = value
	}
	a.renderHTML(c, status, "settings.html", payload)
}

// ShowSettings renders one settings tab. Tab data is loaded on demand.
func (a *API) ShowSettings(c *gin.Context) {
	tab := settingsTab(c.Query("tab"))
	data := gin.H{}

	switch tab {
	case tabPersonalize:
		settings, err := a.settings.Personalize(session.Context(c))
		if err != nil {
			if a.backendUnauthorized(c, err) {
				return
			}
			notifyFailure(c, "Error", err, "Failed to load business settings")
		}
		data["personalize"] = settings
	case tabMedia:
		assets, err := a.media.Recent(a.currentUser(c).Email, 24)
		if err != nil {
			log.Printf("[MEDIA] failed to list uploads: %v", err)
			session.Failure(c, "Error", "Failed to load your uploads")
		}
		data["assets"] = assets
	}

	a.renderSettings(c, http.StatusOK, tab, data)
}

// SavePersonalize stores the business profile and content preferences.
func (a *API) SavePersonalize(c *gin.Context) {
	var f form.PersonalizeForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid settings form")
		return
	}
	if errs := f.Validate(); !errs.Empty() {
		a.renderSettings(c, http.StatusUnprocessableEntity, tabPersonalize, gin.H{"personalize": f, "errors": errs})
		return
	}

	if err := a.settings.SavePersonalize(session.Context(c), f); err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to save business settings")
		a.renderSettings(c, http.StatusBadGateway, tabPersonalize, gin.H{"personalize": f})
		return
	}

	session.Success(c, "Success", "Business settings saved successfully")
	c.Redirect(http.StatusFound, "/settings?tab="+tabPersonalize)
}

// GenerateAPIKey creates a key and shows it once. The key is rendered
// directly and never stored in the session.
func (a *API) GenerateAPIKey(c *gin.Context) {
	key, err := a.settings.GenerateAPIKey(session.Context(c))
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to generate API key")
		a.renderSettings(c, http.StatusBadGateway, tabAPIKeys, nil)
		return
	}

	c.Header("Cache-Control", "no-store")
	session.Success(c, "API key generated", "Copy it now, it will not be shown again.")
	a.renderSettings(c, http.StatusOK, tabAPIKeys, gin.H{
		"apiKey":       key,
		"maskedApiKey": service.MaskAPIKey(key),
		"apiBase":      a.apiBase,
	})
}
