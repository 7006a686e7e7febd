package handler

import (
	"context"
	"strings"
	"time"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/editor"
	"github.com/blogai/internal/media"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger is implemented by optional infrastructure checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps collects what the handlers need. Only Client is required.
type Deps struct {
	Client          *apiclient.Client
	DB              *gorm.DB
	Uploader        media.Uploader
	Editor          editor.RichTextEditor
	ResearchLimiter service.RateLimiter
	LoginLimiter    *service.MemoryLimiter
	Cache           Pinger
	SiteHost        string
	CookieSecure    bool
	// ProgressTick overrides the interval between progress frames.
	ProgressTick time.Duration
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	research *service.ResearchService
	trends   *service.TrendService
	scraper  *service.ScraperService
	settings *service.SettingsService
	auth     *service.AuthService
	seo      *service.SEOService
	media    *media.Library
	editor   editor.RichTextEditor
	sessions *session.Manager
	logins   *service.MemoryLimiter
	cache    Pinger
	apiBase  string

	progressTick time.Duration
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Deps) *API {
	rte := deps.Editor
	if rte == nil {
		rte = editor.NewTinyMCE("")
	}
	logins := deps.LoginLimiter
	if logins == nil {
		logins = service.NewMemoryLimiter(5, 15*time.Minute)
	}
	tick := deps.ProgressTick
	if tick <= 0 {
		tick = time.Second
	}
	apiBase := ""
	if deps.Client != nil {
		apiBase = deps.Client.BaseURL()
	}

	return &API{
		db:           deps.DB,
		posts:        service.NewPostService(deps.Client),
		research:     service.NewResearchService(deps.Client, deps.ResearchLimiter),
		trends:       service.NewTrendService(deps.Client),
		scraper:      service.NewScraperService(deps.Client),
		settings:     service.NewSettingsService(deps.Client),
		auth:         service.NewAuthService(deps.Client),
		seo:          service.NewSEOService(deps.SiteHost),
		media:        media.NewLibrary(deps.Uploader, deps.DB),
		editor:       rte,
		sessions:     session.NewManager(deps.CookieSecure),
		logins:       logins,
		cache:        deps.Cache,
		apiBase:      apiBase,
		progressTick: tick,
	}
}

type navItem struct {
	Title  string
	URL    string
	Active bool
}

var dashboardNav = []navItem{
	{Title: "Dashboard", URL: "/dashboard"},
	{Title: "Write", URL: "/write"},
	{Title: "Generate", URL: "/generate"},
	{Title: "Posts", URL: "/posts"},
	{Title: "Trending", URL: "/trending"},
	{Title: "Scraper", URL: "/scraper"},
	{Title: "Settings", URL: "/settings"},
}

// buildNav marks the entry owning path as active. Logged out visitors get no nav.
func buildNav(path string, loggedIn bool) []navItem {
	if !loggedIn {
		return nil
	}
	items := make([]navItem, len(dashboardNav))
	for i, item := range dashboardNav {
		item.Active = path == item.URL || strings.HasPrefix(path, item.URL+"/")
		items[i] = item
	}
	return items
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	user, loggedIn := a.sessions.Current(c)
	if _, exists := payload["user"]; !exists && loggedIn {
		payload["user"] = user
	}
	if _, exists := payload["loggedIn"]; !exists {
		payload["loggedIn"] = loggedIn
	}
	if _, exists := payload["nav"]; !exists {
		payload["nav"] = buildNav(c.Request.URL.Path, loggedIn)
	}
	if _, exists := payload["notifications"]; !exists {
		payload["notifications"] = session.Notifications(c)
	}
	if _, exists := payload["currentPath"]; !exists {
		payload["currentPath"] = c.Request.URL.Path
	}
	if _, exists := payload["appName"]; !exists {
		payload["appName"] = "BlogAI"
	}

	c.HTML(status, template, payload)
}

// currentUser returns the session user. The route guard only checks the
// token cookie, so the profile may be missing.
func (a *API) currentUser(c *gin.Context) session.User {
	user, _ := a.sessions.Current(c)
	return user
}

// callerKey identifies the caller for rate limiting.
func (a *API) callerKey(c *gin.Context) string {
	if user := a.currentUser(c); user.Email != "" {
		return strings.ToLower(user.Email)
	}
	return c.ClientIP()
}
