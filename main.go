package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/streadway/amqp"

	"foodgram/internal/app"
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/notifications"
	"foodgram/internal/services"
	"foodgram/internal/storage"
	"foodgram/pkg/mailer"
	"foodgram/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Redis (optional) ---
	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// --- Image storage ---
	var images services.ImageStore = storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewAwsS3(context.Background(), storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		images = s3Store
	}

	// --- RabbitMQ (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Warnf("RabbitMQ unavailable, domain events disabled: %v", err)
		} else {
			defer mqClient.Close()
			events = mqClient
			startSubscriberNotifications(cfg, mqClient)
		}
	}

	application := app.New(app.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Events: events,
		Images: images,
	})

	// --- Start HTTP Server ---
	log.Infof("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := application.Shutdown(); err != nil {
		log.Errorf("Error during Fiber shutdown: %v", err)
	}
	log.Info("Server gracefully stopped")
}

// startSubscriberNotifications emails authors about new subscribers when SMTP is configured.
func startSubscriberNotifications(cfg *config.Config, mqClient *rabbitmq.Client) {
	if cfg.SMTPHost == "" {
		log.Info("SMTP not configured, subscriber notifications disabled")
		return
	}
	notifier := notifications.NewSubscriberNotifier(mailer.New(mailer.MailConfig{
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPassword: cfg.SMTPPassword,
		From:         cfg.SMTPFrom,
	}))
	err := mqClient.Consume(notifications.SubscriberQueue, notifications.SubscriberTopic, func(msg amqp.Delivery) error {
		return notifier.Handle(msg.Body)
	})
	if err != nil {
		log.Errorf("Failed to start RabbitMQ consumer: %v", err)
	}
}
