package main

import (
	"log"
	"time"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/config"
	"github.com/blogai/internal/db"
	"github.com/blogai/internal/editor"
	"github.com/blogai/internal/handler"
	"github.com/blogai/internal/media"
	"github.com/blogai/internal/router"
	"github.com/blogai/internal/service"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// The media ledger is optional; the dashboard keeps working without it.
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Printf("[DB] media ledger disabled: %v", err)
	}

	client, err := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	if err != nil {
		log.Fatalf("failed to configure backend client: %v", err)
	}

	deps := handler.Deps{
		Client:       client,
		DB:           db.DB,
		Uploader:     media.NewCloudinary(cfg.CloudName, cfg.UploadPreset),
		Editor:       editor.NewTinyMCE(cfg.EditorAPIKey),
		LoginLimiter: service.NewMemoryLimiter(5, 15*time.Minute),
		CookieSecure: cfg.CookieSecure,
		SiteHost:     cfg.SiteHost,
	}
	if cfg.RedisAddr != "" {
		limiter := service.NewRedisLimiter(cfg.RedisAddr, cfg.ResearchPerMin, time.Minute)
		defer limiter.Close()
		deps.ResearchLimiter = limiter
		deps.Cache = limiter
		log.Printf("[LIMITER] research limit %d/min backed by redis at %s", cfg.ResearchPerMin, cfg.RedisAddr)
	} else {
		deps.ResearchLimiter = service.NewMemoryLimiter(cfg.ResearchPerMin, time.Minute)
	}

	r, err := router.SetupRouter(cfg, handler.NewAPI(deps))
	if err != nil {
		log.Fatalf("failed to set up router: %v", err)
	}

	log.Printf("[SERVER] BlogAI listening on %s, backend %s", cfg.ListenAddr, cfg.APIBaseURL)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
