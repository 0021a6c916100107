package model

import (
	"fmt"
	"time"
)

// Field identifies the originating input control of a validation message,
// so the UI maps messages back without inspecting message text.
type Field string

const (
	FieldName       Field = "name"
	FieldPhone      Field = "phone"
	FieldService    Field = "service"
	FieldSpecialist Field = "specialist"
	FieldDate       Field = "date"
	FieldTime       Field = "time"
)

// FieldOrder is the fixed reporting order of field-tagged messages.
var FieldOrder = []Field{
	FieldName, FieldPhone, FieldService, FieldSpecialist, FieldDate, FieldTime,
}

type Code string

const (
	CodeEmptyField         Code = "EMPTY_FIELD"
	CodeInvalidPhone       Code = "INVALID_PHONE"
	CodeUnknownService     Code = "UNKNOWN_SERVICE"
	CodeUnknownSpecialist  Code = "UNKNOWN_SPECIALIST"
	CodeServiceNotOffered  Code = "SERVICE_NOT_OFFERED_BY_SPECIALIST"
	CodePastDate           Code = "PAST_DATE"
	CodeDateOutOfRange     Code = "DATE_OUT_OF_RANGE"
	CodeInvalidDate        Code = "INVALID_DATE"
	CodeMissingTime        Code = "MISSING_TIME"
	CodeInvalidTime        Code = "INVALID_TIME"
	CodeSlotUnavailable    Code = "SLOT_UNAVAILABLE"
	CodeSchedulingConflict Code = "SCHEDULING_CONFLICT"
)

// FieldMessage is one field-tagged validation outcome.
type FieldMessage struct {
	Field   Field  `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (m FieldMessage) String() string {
	return fmt.Sprintf("%s: %s", m.Field, m.Message)
}

// Slot is one bookable interval for a specialist on a date. Start and End
// are instants in the clinic timezone; End-Start equals the service duration.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// TimeLabel renders the slot's wall-clock start as HH:MM.
func (s Slot) TimeLabel() string {
	return s.Start.Format("15:04")
}

// Alternative is one suggested (date, time) pair, ranked by proximity to
// the originally requested instant.
type Alternative struct {
	DateStr string `json:"date_str"`
	Time    string `json:"time"`
}

// ConflictDetail describes one existing appointment overlapping a proposal.
type ConflictDetail struct {
	AppointmentID string    `json:"appointment_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

func (c ConflictDetail) Description() string {
	return fmt.Sprintf("booked %s-%s", c.Start.Format("15:04"), c.End.Format("15:04"))
}

type ConflictReport struct {
	HasConflicts bool             `json:"has_conflicts"`
	Conflicts    []ConflictDetail `json:"conflicts"`
}

// ValidationResult is the aggregate outcome of one validation call. It is
// constructed fresh per call and never mutated after return.
type ValidationResult struct {
	IsValid      bool           `json:"is_valid"`
	Errors       []FieldMessage `json:"errors"`
	Warnings     []FieldMessage `json:"warnings"`
	Suggestions  []string       `json:"suggestions"`
	Alternatives []Alternative  `json:"alternatives"`
}

// HasError reports whether any error is tagged with the given field.
func (r *ValidationResult) HasError(f Field) bool {
	for _, e := range r.Errors {
		if e.Field == f {
			return true
		}
	}
	return false
}
