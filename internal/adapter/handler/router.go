package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/boardcut/boardcut/internal/infrastructure/storage"
	"github.com/boardcut/boardcut/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	highlightHandler *Highlight
	webhookHandler   *TranscriptWebhookHandler
	store            *storage.MinIOClient
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, highlightHandler *Highlight, webhookHandler *TranscriptWebhookHandler, store *storage.MinIOClient) *Router {
	return &Router{
		cfg:              cfg,
		highlightHandler: highlightHandler,
		webhookHandler:   webhookHandler,
		store:            store,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")

	rt.setupJobRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

// setupJobRoutes configures highlight job routes
func (rt *Router) setupJobRoutes(g *echo.Group) {
	jobGroup := g.Group("/jobs")

	jobGroup.POST("", rt.highlightHandler.CreateJob)
	jobGroup.GET("", rt.highlightHandler.ListJobs)
	jobGroup.GET("/:id", rt.highlightHandler.GetJob)
	jobGroup.GET("/:id/segments", rt.highlightHandler.GetSegments)
	jobGroup.GET("/:id/segments/file", rt.highlightHandler.DownloadSegmentsFile)
	jobGroup.POST("/:id/align", rt.highlightHandler.AlignTranscript)
}

// setupWebhookRoutes configures provider callback routes
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhookGroup := g.Group("/webhooks")

	webhookGroup.POST("/assemblyai", rt.webhookHandler.HandleAssemblyAIWebhook)
}

// healthCheck returns health status, including object storage reachability
func (rt *Router) healthCheck(c echo.Context) error {
	resp := map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	}

	if rt.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if info, err := rt.store.GetBucketInfo(ctx); err != nil {
			resp["storage"] = map[string]interface{}{"status": "unreachable"}
		} else {
			resp["storage"] = info
		}
	}

	return c.JSON(http.StatusOK, resp)
}
