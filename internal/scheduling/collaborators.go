package scheduling

import (
	"context"
	"errors"
	"time"

	"medsched/pkg/model"
)

// Sentinel errors the collaborators return for missing records. Anything
// else coming back from a collaborator is treated as an infrastructure
// failure and aborts validation.
var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrSpecialistNotFound = errors.New("specialist not found")
)

// Catalog resolves service and specialist records by ID.
type Catalog interface {
	ServiceByID(ctx context.Context, id string) (*model.Service, error)
	SpecialistByID(ctx context.Context, id string) (*model.Specialist, error)
}

// BookingStore exposes the booked intervals the engine checks against.
// Implementations return only appointments in an active status.
type BookingStore interface {
	ActiveAppointmentsFor(ctx context.Context, specialistID string, day time.Time) ([]model.Appointment, error)
}
