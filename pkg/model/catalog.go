package model

import "time"

// WorkingWindow bounds the bookable part of a specialist's day, both ends as
// HH:MM wall-clock strings in the clinic timezone.
type WorkingWindow struct {
	Start string `json:"start" bson:"start" validate:"required"`
	End   string `json:"end" bson:"end" validate:"required"`
}

type Service struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time `json:"created_at,omitempty" bson:"created_at"`
}

// Specialist carries per-weekday working hours keyed by lowercase weekday
// name ("sunday".."saturday"). A missing key means the specialist does not
// work that day; an empty map falls back to the clinic default window.
type Specialist struct {
	ID           string                   `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string                   `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Specialty    string                   `json:"specialty" bson:"specialty" validate:"required,min=2,max=100"`
	ServiceIDs   []string                 `json:"service_ids" bson:"service_ids"`
	WorkingHours map[string]WorkingWindow `json:"working_hours,omitempty" bson:"working_hours,omitempty"`
	IsActive     bool                     `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time                `json:"created_at,omitempty" bson:"created_at"`
}

// OffersService reports whether the specialist is linked to the service.
func (s *Specialist) OffersService(serviceID string) bool {
	for _, id := range s.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
