package main

import (
	"context"

	"staybook/internal/reservations/handler"
	"staybook/internal/reservations/repository"
	"staybook/internal/reservations/service"
	"staybook/internal/reservations/validator"
	"staybook/pkg/app"
	"staybook/pkg/config"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
)

const ServiceName = "reservations"

// Topics consumed by the notification service.
const (
	TopicReservationCreated   = "reservation-created"
	TopicReservationDecision  = "reservation-decision"
	TopicReservationCancelled = "reservation-cancelled"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetCollaborators()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	if err := repository.EnsureIndexes(ctx, cfg); err != nil {
		cfg.Log.Fatal("Failed to ensure Mongo indexes", "error", err)
	}
	cancel()

	cfg.Log.Info("Starting Reservations service")

	serverApp := app.NewApplication(cfg)

	reservationService := initServices(cfg, serverApp)

	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log),
		handler.NewInternalHandler(reservationService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewReservationLockRepository(cfg)

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	events := service.NewKafkaEventPublisher(
		newProducer(cfg, serverApp, kafkaCfg, TopicReservationCreated),
		newProducer(cfg, serverApp, kafkaCfg, TopicReservationDecision),
		newProducer(cfg, serverApp, kafkaCfg, TopicReservationCancelled),
		cfg.Client.Users,
		cfg.Log,
	)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		reservationValidator,
		cfg.Client.Accommodations,
		events,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}

func newProducer(cfg *config.Config, serverApp *app.Application, kafkaCfg *kafka_config.Config, topic string) *kafka.Producer {
	producer, err := kafka.NewProducer(kafkaCfg, topic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log, topic))
	}
	serverApp.AddCloser(producer)
	return producer
}
