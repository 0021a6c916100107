package model

import (
	"testing"
	"time"
)

func TestAppointmentIsActive(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusCancelled, false},
		{StatusCompleted, false},
	}
	for _, tt := range tests {
		a := Appointment{Status: tt.status}
		if got := a.IsActive(); got != tt.want {
			t.Errorf("IsActive() with status %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestSpecialistOffersService(t *testing.T) {
	s := Specialist{ServiceIDs: []string{"svc-1", "svc-2"}}
	if !s.OffersService("svc-2") {
		t.Error("OffersService(svc-2) = false, want true")
	}
	if s.OffersService("svc-3") {
		t.Error("OffersService(svc-3) = true, want false")
	}
	empty := Specialist{}
	if empty.OffersService("svc-1") {
		t.Error("specialist with no linked services offers nothing")
	}
}

func TestValidationResultHasError(t *testing.T) {
	r := ValidationResult{Errors: []FieldMessage{
		{Field: FieldPhone, Code: CodeInvalidPhone, Message: "bad phone"},
	}}
	if !r.HasError(FieldPhone) {
		t.Error("HasError(phone) = false, want true")
	}
	if r.HasError(FieldDate) {
		t.Error("HasError(date) = true, want false")
	}
}

func TestSlotTimeLabel(t *testing.T) {
	s := Slot{Start: time.Date(2026, 3, 3, 9, 5, 0, 0, time.UTC)}
	if got := s.TimeLabel(); got != "09:05" {
		t.Errorf("TimeLabel() = %q, want %q", got, "09:05")
	}
}

func TestConflictDetailDescription(t *testing.T) {
	c := ConflictDetail{
		Start: time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC),
	}
	if got := c.Description(); got != "booked 10:00-11:00" {
		t.Errorf("Description() = %q", got)
	}
}
