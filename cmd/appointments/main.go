package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"medsched/internal/appointments/handler"
	"medsched/internal/appointments/repository"
	"medsched/internal/appointments/service"
	"medsched/internal/scheduling"
	"medsched/pkg/app"
	"medsched/pkg/cache"
	"medsched/pkg/config"
	"medsched/pkg/kafka"
	"medsched/pkg/model"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Appointments service")

	mongoClient := connectMongo(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown("mongo", mongoClient.Disconnect)

	appointmentService, catalogRepo := initServices(cfg, mongoClient, serverApp)

	serverApp.SetApp(mongoClient,
		handler.NewAppointmentHandler(appointmentService, cfg.Log),
		handler.NewCatalogHandler(catalogRepo, cfg.Log),
	)
	serverApp.Run()
}

func connectMongo(cfg *config.Config) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		cfg.Log.Fatal("Failed to ping MongoDB", "error", err)
	}

	cfg.Log.Info("Connected to MongoDB", "database", cfg.MongoDatabaseName)
	return client
}

func initServices(cfg *config.Config, mongoClient *mongo.Client, serverApp *app.Application) (service.AppointmentService, repository.CatalogRepository) {
	db := mongoClient.Database(cfg.MongoDatabaseName)

	catalogRepo := repository.NewMongoCatalogRepository(cfg, db)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg, mongoClient, db)
	lockRepo := repository.NewSlotLockRepository(db)

	engine := buildEngine(cfg, catalogRepo, appointmentRepo)

	var slotCache *cache.SlotCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewClient(cfg.RedisAddr, "")
		if err != nil {
			cfg.Log.Fatal("Failed to connect to Redis", "error", err)
		}
		slotCache = cache.NewSlotCache(rdb, cfg.SlotCacheTTL, cfg.Log)
		serverApp.OnShutdown("redis", func(context.Context) error { return rdb.Close() })
		cfg.Log.Info("Slot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SlotCacheTTL)
	} else {
		cfg.Log.Info("Slot cache disabled, REDIS_ADDR not set")
	}

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaEventTopic,
		}, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		events = producer
		serverApp.OnShutdown("kafka producer", func(context.Context) error { return producer.Close() })
		cfg.Log.Info("Event publishing enabled", "topic", cfg.KafkaEventTopic)
	} else {
		cfg.Log.Info("Event publishing disabled, KAFKA_BROKERS not set")
	}

	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName)
	return service.NewAppointmentService(engine, appointmentRepo, lockRepo, slotCache, events, cfg.Log), catalogRepo
}

func buildEngine(cfg *config.Config, catalog scheduling.Catalog, store scheduling.BookingStore) *scheduling.Engine {
	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		cfg.Log.Fatal("Invalid clinic timezone", "timezone", cfg.ClinicTimezone, "error", err)
	}

	engine, err := scheduling.New(catalog, store, scheduling.Config{
		Location:           loc,
		WeekendDays:        cfg.ClinicWeekendDays,
		Holidays:           cfg.ClinicHolidays,
		DefaultWindow:      model.WorkingWindow{Start: cfg.ClinicOpen, End: cfg.ClinicClose},
		DefaultDurationMin: cfg.DefaultDurationMin,
		MaxAdvanceDays:     cfg.MaxAdvanceDays,
		AltTimeCount:       cfg.AltTimeCount,
		AltDateCount:       cfg.AltDateCount,
		AltDateHorizonDays: cfg.AltDateHorizonDays,
		SameDayLeadTime:    cfg.SameDayLeadTime,
		PhoneRegion:        cfg.PhoneRegion,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to build scheduling engine", "error", err)
	}
	return engine
}
