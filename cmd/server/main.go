package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"leadinbox/internal/classifier"
	"leadinbox/internal/config"
	"leadinbox/internal/events"
	"leadinbox/internal/handler"
	"leadinbox/internal/httpserver"
	"leadinbox/internal/mailsource"
	"leadinbox/internal/repository"
	"leadinbox/internal/service/classify"
	"leadinbox/internal/service/ingest"
	"leadinbox/internal/service/notify"
	"leadinbox/internal/webhook"
	"leadinbox/pkg/db"
	"leadinbox/pkg/logger"
	"leadinbox/pkg/mq"
	"leadinbox/pkg/outbox"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting leadinbox server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established")

	// MQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Outbox dispatcher drains email.received events onto the exchange.
	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go dispatcher.Start(dispatcherCtx)

	// Repositories
	accountRepo := repository.NewAccountRepository(dbConn)
	emailRepo := repository.NewEmailRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Clients and sinks
	aiClient := classifier.NewClient(cfg.Classifier, log)
	sinks := []notify.Sink{
		webhook.NewChatSink(cfg.Webhook.ChatURL),
		webhook.NewGenericSink(cfg.Webhook.GenericURL, cfg.Webhook.SigningSecret),
	}

	// Services
	enqueuer := events.NewOutboxEnqueuer(dbConn, outboxRepo, log)
	ingestSvc := ingest.NewService(accountRepo, emailRepo, mailsource.NewSampleSource(), enqueuer, log)
	classifySvc := classify.NewService(emailRepo, aiClient, publisher, log)
	notifySvc := notify.NewService(emailRepo, notificationRepo, sinks, log)

	// HTTP
	pipelineHandler := handler.NewPipelineHandler(ingestSvc, classifySvc, notifySvc, log)
	inboxHandler := handler.NewInboxHandler(accountRepo, emailRepo, log)
	adminHandler := handler.NewAdminHandler(outboxRepo, log)

	router := httpserver.NewRouter(pipelineHandler, inboxHandler, adminHandler, dbConn, publisher)
	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("leadinbox server is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down leadinbox server gracefully...")

	stopDispatcher()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	publisher.Close()
	dbConn.Close()

	log.Info("leadinbox server shutdown complete")
}
