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
	"leadinbox/internal/httpserver"
	"leadinbox/internal/mqhandler"
	"leadinbox/internal/repository"
	"leadinbox/internal/service/classify"
	"leadinbox/internal/service/notify"
	"leadinbox/internal/webhook"
	"leadinbox/pkg/db"
	"leadinbox/pkg/logger"
	"leadinbox/pkg/mq"
	"leadinbox/pkg/redis"
	"leadinbox/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting leadinbox worker...")

	// Redis
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour, log)
	retryCounter := util.NewRetryCounter(rdb, time.Hour)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer dbConn.Close()

	// MQ topology: events exchange plus the dead letter side.
	declareDLQTopology(cfg.MQ.URL, log)

	// Publisher carries classify fan-out and DLQ traffic.
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	emailRepo := repository.NewEmailRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Clients and sinks
	aiClient := classifier.NewClient(cfg.Classifier, log)
	sinks := []notify.Sink{
		webhook.NewChatSink(cfg.Webhook.ChatURL),
		webhook.NewGenericSink(cfg.Webhook.GenericURL, cfg.Webhook.SigningSecret),
	}

	// Services
	classifySvc := classify.NewService(emailRepo, aiClient, publisher, log)
	notifySvc := notify.NewService(emailRepo, notificationRepo, sinks, log)

	// Handlers
	classifyHandler := mqhandler.NewEmailReceivedClassifyHandler(classifySvc, retryCounter, publisher, log)
	notifyHandler := mqhandler.NewEmailInterestedNotifyHandler(notifySvc, deduper, publisher, log)

	// -------------------------
	// Classification Consumer
	// -------------------------
	log.Info("Init consumer: email.received.classify.q")
	consumerClassify, err := mq.NewConsumer(
		cfg.MQ.URL,
		"email.received.classify.q",
		mq.RoutingKeyEmailReceived,
		log,
	)
	if err != nil {
		log.Fatal("Classify consumer init failed", zap.Error(err))
	}
	consumerClassify.SetHandler(classifyHandler.HandleEmailReceived)

	go func() {
		if err := consumerClassify.StartConsuming(); err != nil {
			log.Fatal("Classify consumer crashed", zap.Error(err))
		}
	}()
	defer consumerClassify.Close()

	// -------------------------
	// Notification Consumer
	// -------------------------
	log.Info("Init consumer: email.interested.notify.q")
	consumerNotify, err := mq.NewConsumer(
		cfg.MQ.URL,
		"email.interested.notify.q",
		mq.RoutingKeyEmailInterested,
		log,
	)
	if err != nil {
		log.Fatal("Notify consumer init failed", zap.Error(err))
	}
	consumerNotify.SetHandler(notifyHandler.HandleEmailInterested)

	go func() {
		if err := consumerNotify.StartConsuming(); err != nil {
			log.Fatal("Notify consumer crashed", zap.Error(err))
		}
	}()
	defer consumerNotify.Close()

	// Health endpoints so orchestrators can probe the worker.
	healthRouter := httpserver.NewHealthRouter(dbConn, publisher)
	srv := &http.Server{
		Addr:    cfg.Server.WorkerPort,
		Handler: healthRouter.Engine,
	}

	go func() {
		log.Info("Worker health server starting", zap.String("addr", cfg.Server.WorkerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Worker health server failed", zap.Error(err))
		}
	}()

	log.Info("Worker running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down leadinbox worker gracefully...")

	// Cancel consumer registrations so in-flight deliveries drain.
	consumerClassify.Stop()
	consumerNotify.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Worker health server shutdown error", zap.Error(err))
	}

	log.Info("leadinbox worker shutdown complete")
}

func declareDLQTopology(url string, log *zap.Logger) {
	conn, err := mq.NewConnection(url)
	if err != nil {
		log.Fatal("MQ connection failed", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("MQ channel failed", zap.Error(err))
	}
	defer ch.Close()

	if err := mq.DeclareDLQExchange(ch); err != nil {
		log.Fatal("DLQ exchange declaration failed", zap.Error(err))
	}
	for _, rk := range []string{mq.RoutingKeyEmailReceived, mq.RoutingKeyEmailInterested} {
		if _, err := mq.DeclareDLQQueue(ch, rk); err != nil {
			log.Fatal("DLQ queue declaration failed", zap.String("routing_key", rk), zap.Error(err))
		}
	}
}
