package model

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Appointment is the booked record as the Booking Store keeps it. The
// validation engine only ever reads these; it never mutates or stores them.
type Appointment struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PatientName  string    `json:"patient_name" bson:"patient_name" validate:"required,min=2,max=100"`
	PatientPhone string    `json:"patient_phone" bson:"patient_phone" validate:"required,e164"`
	SpecialistID string    `json:"specialist_id" bson:"specialist_id" validate:"required,mongodb"`
	ServiceID    string    `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	StartTime    time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// IsActive reports whether the appointment blocks its time range.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// SlotLock is a short-lived advisory lock keyed by slot coordinates. Its _id
// uniqueness is what prevents two commits from racing into the same slot.
type SlotLock struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// AppointmentRequest is one candidate booking under evaluation. Date and
// Time stay raw strings on purpose: malformed input must surface as a field
// error, not a transport-level decode failure.
type AppointmentRequest struct {
	PatientName          string `json:"patient_name"`
	PatientPhone         string `json:"patient_phone"`
	ServiceID            string `json:"service_id,omitempty"`
	SpecialistID         string `json:"specialist_id,omitempty"`
	Date                 string `json:"date" validate:"omitempty,clinic_date"`
	Time                 string `json:"time,omitempty" validate:"omitempty,clinic_time"`
	ExcludeAppointmentID string `json:"appointment_id,omitempty"`
	Notes                string `json:"notes,omitempty"`
}
