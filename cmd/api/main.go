package main

import (
	bookinghandler "fitstudio/internal/bookings/handler"
	bookingrepo "fitstudio/internal/bookings/repository"
	bookingservice "fitstudio/internal/bookings/service"
	"fitstudio/internal/bookings/validator"
	cataloghandler "fitstudio/internal/catalog/handler"
	catalogrepo "fitstudio/internal/catalog/repository"
	catalogservice "fitstudio/internal/catalog/service"
	"fitstudio/internal/notify"
	registryrepo "fitstudio/internal/registry/repository"
	"fitstudio/pkg/app"
	"fitstudio/pkg/cache"
	"fitstudio/pkg/clock"
	"fitstudio/pkg/config"
	"fitstudio/pkg/contracts"
	"fitstudio/pkg/kafka"
	kafkaconfig "fitstudio/pkg/kafka/config"
)

const ServiceName = "api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting FitStudio API service")

	notifier, producer := initNotifier(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	sessionHandler, bookingHandler := initHandlers(cfg, notifier)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, sessionHandler, bookingHandler)
	serverApp.Run()
}

func initNotifier(cfg *config.Config) (notify.Notifier, *kafka.Producer) {
	kafkaCfg := kafkaconfig.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("No Kafka brokers configured, booking confirmations will be logged only")
		return notify.NewLogNotifier(cfg.Log), nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingConfirmedTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	cfg.Log.Info("Kafka notifier initialized", "topic", cfg.BookingConfirmedTopic)
	return notify.NewKafkaNotifier(producer), producer
}

func initHandlers(cfg *config.Config, notifier notify.Notifier) (contracts.Handler, contracts.Handler) {
	clk := clock.System()

	sessionRepo := catalogrepo.NewMongoSessionRepository(cfg)
	clientRepo := registryrepo.NewMongoClientRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)

	listingCache := cache.NewNoop()
	if cfg.Client.Redis != nil {
		listingCache = cache.NewRedis(cfg.Client.Redis, cfg.Log)
		cfg.Log.Info("Listing cache enabled", "ttl", cfg.ListingCacheTTL)
	}

	sessionService := catalogservice.NewSessionService(sessionRepo, bookingRepo, clk, cfg)
	sessionHandler := cataloghandler.NewSessionHandler(sessionService, listingCache, cfg.ListingCacheTTL, cfg.Log)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		sessionRepo,
		clientRepo,
		bookingValidator,
		notifier,
		clk,
		cfg,
	)
	bookingHandler := bookinghandler.NewBookingHandler(bookingService, cfg.Log)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return sessionHandler, bookingHandler
}
