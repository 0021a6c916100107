package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medsched/internal/appointments/repository"
	"medsched/pkg/config"
	"medsched/pkg/model"
)

const ServiceName = "seed"

var services = []model.Service{
	{Name: "Consultation", Description: "General consultation", DurationMin: 60, IsActive: true},
	{Name: "Checkup", Description: "Routine checkup", DurationMin: 30, IsActive: true},
	{Name: "Treatment", Description: "Extended treatment session", DurationMin: 90, IsActive: true},
	{Name: "Follow-up", Description: "Follow-up visit", DurationMin: 30, IsActive: true},
}

var specialties = []string{"dermatology", "cardiology", "orthopedics", "physiotherapy", "dentistry"}

func main() {
	specialistCount := flag.Int("specialists", 5, "number of specialists to create")
	appointmentCount := flag.Int("appointments", 40, "number of appointments to create")
	drop := flag.Bool("drop", false, "drop existing collections first")
	seed := flag.Int64("seed", 0, "random seed, 0 for nondeterministic")
	flag.Parse()

	cfg := config.Load(ServiceName)
	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.MongoDatabaseName)
	if *drop {
		for _, name := range []string{
			repository.ServicesCollection,
			repository.SpecialistsCollection,
			repository.AppointmentsCollection,
			repository.SlotLocksCollection,
		} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				cfg.Log.Fatal("Failed to drop collection", "collection", name, "error", err)
			}
		}
		cfg.Log.Info("Dropped existing collections")
	}

	serviceIDs := seedServices(ctx, cfg, db)
	specialistIDs := seedSpecialists(ctx, cfg, db, serviceIDs, *specialistCount)
	seedAppointments(ctx, cfg, db, serviceIDs, specialistIDs, *appointmentCount)

	cfg.Log.Info("Seeding complete",
		"services", len(serviceIDs),
		"specialists", len(specialistIDs),
		"appointments", *appointmentCount,
	)
}

func seedServices(ctx context.Context, cfg *config.Config, db *mongo.Database) []string {
	coll := db.Collection(repository.ServicesCollection)
	ids := make([]string, 0, len(services))
	for _, svc := range services {
		svc.CreatedAt = time.Now().UTC()
		result, err := coll.InsertOne(ctx, svc)
		if err != nil {
			cfg.Log.Fatal("Failed to insert service", "name", svc.Name, "error", err)
		}
		ids = append(ids, result.InsertedID.(primitive.ObjectID).Hex())
	}
	return ids
}

func seedSpecialists(ctx context.Context, cfg *config.Config, db *mongo.Database, serviceIDs []string, count int) []string {
	coll := db.Collection(repository.SpecialistsCollection)
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		specialist := model.Specialist{
			Name:       fmt.Sprintf("Dr. %s %s", gofakeit.FirstName(), gofakeit.LastName()),
			Specialty:  specialties[gofakeit.Number(0, len(specialties)-1)],
			ServiceIDs: pickServices(serviceIDs),
			IsActive:   true,
			CreatedAt:  time.Now().UTC(),
		}
		// Roughly half of the staff keeps personal hours, the rest uses
		// the clinic default window.
		if gofakeit.Bool() {
			specialist.WorkingHours = randomWorkingHours()
		}

		result, err := coll.InsertOne(ctx, specialist)
		if err != nil {
			cfg.Log.Fatal("Failed to insert specialist", "name", specialist.Name, "error", err)
		}
		ids = append(ids, result.InsertedID.(primitive.ObjectID).Hex())
	}
	return ids
}

func pickServices(serviceIDs []string) []string {
	n := gofakeit.Number(1, len(serviceIDs))
	picked := make([]string, 0, n)
	seen := make(map[string]bool)
	for len(picked) < n {
		id := serviceIDs[gofakeit.Number(0, len(serviceIDs)-1)]
		if !seen[id] {
			seen[id] = true
			picked = append(picked, id)
		}
	}
	return picked
}

func randomWorkingHours() map[string]model.WorkingWindow {
	weekdays := []string{"sunday", "monday", "tuesday", "wednesday", "thursday"}
	hours := make(map[string]model.WorkingWindow)
	for _, day := range weekdays {
		if gofakeit.Number(0, 4) == 0 {
			continue // day off
		}
		start := gofakeit.Number(8, 12)
		end := gofakeit.Number(start+4, 19)
		hours[day] = model.WorkingWindow{
			Start: fmt.Sprintf("%02d:00", start),
			End:   fmt.Sprintf("%02d:00", end),
		}
	}
	return hours
}

func seedAppointments(ctx context.Context, cfg *config.Config, db *mongo.Database, serviceIDs, specialistIDs []string, count int) {
	coll := db.Collection(repository.AppointmentsCollection)
	statuses := []string{model.StatusPending, model.StatusConfirmed, model.StatusConfirmed, model.StatusCancelled}

	for i := 0; i < count; i++ {
		day := time.Now().UTC().AddDate(0, 0, gofakeit.Number(1, 21))
		start := time.Date(day.Year(), day.Month(), day.Day(), gofakeit.Number(10, 17), 0, 0, 0, time.UTC)

		appt := model.Appointment{
			PatientName:  gofakeit.Name(),
			PatientPhone: fmt.Sprintf("+9725%08d", gofakeit.Number(0, 99999999)),
			SpecialistID: specialistIDs[gofakeit.Number(0, len(specialistIDs)-1)],
			ServiceID:    serviceIDs[gofakeit.Number(0, len(serviceIDs)-1)],
			StartTime:    start,
			EndTime:      start.Add(time.Hour),
			Status:       statuses[gofakeit.Number(0, len(statuses)-1)],
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		if _, err := coll.InsertOne(ctx, appt); err != nil {
			cfg.Log.Fatal("Failed to insert appointment", "error", err)
		}
	}
}
