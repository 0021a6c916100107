package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	apptserrors "medsched/internal/appointments/errors"
	"medsched/pkg/model"
)

const SlotLocksCollection = "slot_locks"

// SlotLockRepository hands out short-lived advisory locks on slot
// coordinates. The unique _id is the serialization point: of two commits
// racing for the same slot, exactly one insert succeeds.
type SlotLockRepository interface {
	Acquire(ctx context.Context, specialistID string, start time.Time, ttl time.Duration) (*model.SlotLock, error)
	Release(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
}

func NewSlotLockRepository(db *mongo.Database) SlotLockRepository {
	return &mongoSlotLockRepository{
		collection: db.Collection(SlotLocksCollection),
	}
}

// LockID builds the lock key for a specialist's slot.
func LockID(specialistID string, start time.Time) string {
	return fmt.Sprintf("%s:%s", specialistID, start.UTC().Format(time.RFC3339))
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, specialistID string, start time.Time, ttl time.Duration) (*model.SlotLock, error) {
	now := time.Now().UTC()
	lock := &model.SlotLock{
		ID:        LockID(specialistID, start),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apptserrors.ErrSlotTaken
		}
		return nil, fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	return lock, nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	if err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}
