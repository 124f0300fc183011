package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadinbox/internal/handler"
	"leadinbox/pkg/mq"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	pipelineHandler *handler.PipelineHandler,
	inboxHandler *handler.InboxHandler,
	adminHandler *handler.AdminHandler,
	db *pgxpool.Pool,
	publisher *mq.Publisher,
) *Router {
	r := gin.Default()

	r.Use(CORSMiddleware())
	r.Use(TraceMiddleware())

	registerHealthRoutes(r, db, publisher)

	// Pipeline stages, each independently invocable
	r.POST("/sync-emails", pipelineHandler.SyncEmails)
	r.POST("/categorize-email", pipelineHandler.CategorizeEmail)
	r.POST("/notify-webhook", pipelineHandler.NotifyWebhook)

	// Inbox read side
	r.GET("/emails", inboxHandler.ListEmails)
	r.POST("/emails/:id/read", inboxHandler.MarkRead)

	// Ops surface for parked outbox events
	r.GET("/admin/outbox/failed", adminHandler.ListFailedEvents)
	r.POST("/admin/outbox/:id/replay", adminHandler.ReplayEvent)

	return &Router{Engine: r}
}

// NewHealthRouter serves only liveness/readiness and metrics. The worker
// binary mounts it so orchestrators can probe the consumers.
func NewHealthRouter(db *pgxpool.Pool, publisher *mq.Publisher) *Router {
	r := gin.New()
	r.Use(gin.Recovery())

	registerHealthRoutes(r, db, publisher)

	return &Router{Engine: r}
}

func registerHealthRoutes(r *gin.Engine, db *pgxpool.Pool, publisher *mq.Publisher) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
