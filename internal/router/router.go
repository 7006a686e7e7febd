package router

import (
	"fmt"

	"github.com/blogai/internal/config"
	"github.com/blogai/internal/handler"
	"github.com/blogai/internal/session"
	"github.com/blogai/internal/view"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the gin engine: sessions, the route guard, the
// embedded templates and every dashboard route.
func SetupRouter(cfg config.AppConfig, api *handler.API) (*gin.Engine, error) {
	r := gin.Default()

	r.Use(session.Middleware(session.NewStore(cfg.SessionSecret, cfg.CookieSecure)))
	r.Use(handler.RouteGuard())

	tmpl, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", view.StaticFS())

	r.GET("/healthz", api.HealthCheck)
	r.GET("/", api.ShowLanding)

	r.GET("/login", api.ShowLogin)
	r.POST("/login", api.Login)
	r.GET("/signup", api.ShowSignup)
	r.POST("/signup", api.Signup)
	r.GET("/logout", api.Logout)

	r.GET("/onboarding", api.ShowOnboarding)
	r.POST("/onboarding", api.SubmitOnboarding)

	r.GET("/dashboard", api.ShowDashboard)

	posts := r.Group("/posts")
	{
		posts.GET("", api.ShowPostList)
		posts.GET("/:id", api.ShowPostDetail)
		posts.POST("/:id", api.SavePostDetail)
		posts.GET("/:id/seo", api.ShowSEOSuggestions)
		posts.GET("/:id/delete", api.ConfirmDeletePost)
		posts.POST("/:id/delete", api.DeletePost)
		posts.POST("/:id/status", api.TogglePostStatus)
	}

	write := r.Group("/write")
	{
		write.GET("", api.ShowWrite)
		write.POST("", api.CreatePost)
		write.POST("/research", api.Research)
		write.POST("/adopt", api.AdoptSuggestion)
		write.GET("/:id", api.ShowWriteEdit)
		write.POST("/:id", api.UpdatePost)
	}

	generate := r.Group("/generate")
	{
		generate.GET("", api.ShowGenerate)
		generate.POST("", api.Generate)
		generate.POST("/save", api.SaveGenerated)
		generate.POST("/download", api.DownloadGenerated)
		generate.GET("/progress", api.GenerateProgress)
	}

	r.GET("/trending", api.ShowTrending)

	r.GET("/scraper", api.ShowScraper)
	r.POST("/scraper", api.Scrape)
	r.POST("/scraper/process", api.ProcessScraped)

	r.GET("/settings", api.ShowSettings)
	r.POST("/settings/personalize", api.SavePersonalize)
	r.POST("/settings/api-keys", api.GenerateAPIKey)

	r.POST("/media/preview", api.PreviewImage)

	return r, nil
}
