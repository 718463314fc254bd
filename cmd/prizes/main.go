package main

import (
	"context"

	"giveaway/internal/prizes/events"
	"giveaway/internal/prizes/handler"
	"giveaway/internal/prizes/repository"
	"giveaway/internal/prizes/service"
	"giveaway/internal/prizes/validator"
	"giveaway/pkg/app"
	"giveaway/pkg/config"
	"giveaway/pkg/kafka"
	kafka_config "giveaway/pkg/kafka/config"
)

const ServiceName = "prizes"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Prizes service")
	cfg.SetMongo()

	prizeLedger := repository.NewMongoPrizeLedger(cfg)
	reservationStore := repository.NewMongoReservationStore(cfg)

	seedCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	if err := prizeLedger.Seed(seedCtx, config.DefaultPrizes()); err != nil {
		cfg.Log.Fatal("Failed to seed prize ledger", "error", err)
	}

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	allocationService := initServices(cfg, prizeLedger, reservationStore, publisher)
	sweeper := service.NewSweeper(allocationService, reservationStore, cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewAllocationHandler(allocationService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.AddWorker(sweeper)
	serverApp.Run()
}

func initServices(
	cfg *config.Config,
	prizeLedger repository.PrizeLedger,
	reservationStore repository.ReservationStore,
	publisher events.Publisher,
) service.AllocationService {
	identityValidator := validator.NewIdentityValidator(cfg.Log)
	allocationService := service.NewAllocationService(
		prizeLedger,
		reservationStore,
		identityValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Allocation service initialized", "database", cfg.MongoDatabaseName)
	return allocationService
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, reservation events will not be published")
		return events.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.KafkaTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka event publisher initialized", "topic", cfg.KafkaTopic)
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}
