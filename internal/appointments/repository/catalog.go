package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"medsched/internal/scheduling"
	"medsched/pkg/config"
	"medsched/pkg/model"
)

const (
	ServicesCollection    = "services"
	SpecialistsCollection = "specialists"
)

// mongoCatalogRepository backs the engine's catalog lookups. A malformed ID
// is reported as not-found rather than as an input error, so an unknown or
// garbled service ID lands in the same field-level outcome.
type mongoCatalogRepository struct {
	cfg         *config.Config
	services    *mongo.Collection
	specialists *mongo.Collection
}

type CatalogRepository interface {
	scheduling.Catalog
	ListServices(ctx context.Context) ([]*model.Service, error)
	ListSpecialists(ctx context.Context) ([]*model.Specialist, error)
}

func NewMongoCatalogRepository(cfg *config.Config, db *mongo.Database) CatalogRepository {
	return &mongoCatalogRepository{
		cfg:         cfg,
		services:    db.Collection(ServicesCollection),
		specialists: db.Collection(SpecialistsCollection),
	}
}

func (r *mongoCatalogRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCatalogRepository) ServiceByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, scheduling.ErrServiceNotFound
	}

	var service model.Service
	err = r.services.FindOne(ctx, bson.M{"_id": objectID}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduling.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &service, nil
}

func (r *mongoCatalogRepository) SpecialistByID(ctx context.Context, id string) (*model.Specialist, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, scheduling.ErrSpecialistNotFound
	}

	var specialist model.Specialist
	err = r.specialists.FindOne(ctx, bson.M{"_id": objectID}).Decode(&specialist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduling.ErrSpecialistNotFound
		}
		return nil, fmt.Errorf("failed to find specialist: %w", err)
	}
	return &specialist, nil
}

func (r *mongoCatalogRepository) ListServices(ctx context.Context) ([]*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.services.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.Service
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *mongoCatalogRepository) ListSpecialists(ctx context.Context) ([]*model.Specialist, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.specialists.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list specialists: %w", err)
	}
	defer cursor.Close(ctx)

	var specialists []*model.Specialist
	if err = cursor.All(ctx, &specialists); err != nil {
		return nil, fmt.Errorf("failed to decode specialists: %w", err)
	}
	return specialists, nil
}
