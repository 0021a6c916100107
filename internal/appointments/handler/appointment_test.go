package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"medsched/internal/scheduling"
	apperrors "medsched/pkg/errors"
	"medsched/pkg/logger"
	"medsched/pkg/model"
)

type stubService struct {
	validateResult *model.ValidationResult
	validateErr    error
	slots          []model.Slot
	slotsErr       error
	slotsQuery     scheduling.SlotQuery
	report         *model.ConflictReport
	reportErr      error
	intervalStart  time.Time
	intervalEnd    time.Time
	booked         *model.Appointment
	bookErr        error
	cancelled      *model.Appointment
	cancelErr      error
	cancelledID    string
}

func (s *stubService) Validate(_ context.Context, _ model.AppointmentRequest) (*model.ValidationResult, error) {
	return s.validateResult, s.validateErr
}

func (s *stubService) GetSlots(_ context.Context, q scheduling.SlotQuery) ([]model.Slot, error) {
	s.slotsQuery = q
	return s.slots, s.slotsErr
}

func (s *stubService) CheckConflicts(_ context.Context, _, _, _, _, _ string) (*model.ConflictReport, error) {
	return s.report, s.reportErr
}

func (s *stubService) CheckConflictsBetween(_ context.Context, _ string, start, end time.Time, _ string) (*model.ConflictReport, error) {
	s.intervalStart, s.intervalEnd = start, end
	return s.report, s.reportErr
}

func (s *stubService) Book(_ context.Context, _ model.AppointmentRequest) (*model.Appointment, error) {
	return s.booked, s.bookErr
}

func (s *stubService) Cancel(_ context.Context, id string) (*model.Appointment, error) {
	s.cancelledID = id
	return s.cancelled, s.cancelErr
}

func newTestRouter(svc *stubService) *httprouter.Router {
	log := logger.New(logger.Config{Output: io.Discard})
	router := httprouter.New()
	NewAppointmentHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestValidateEndpoint(t *testing.T) {
	svc := &stubService{validateResult: &model.ValidationResult{
		IsValid: false,
		Errors: []model.FieldMessage{{
			Field:   model.FieldTime,
			Code:    model.CodeSchedulingConflict,
			Message: "overlaps an appointment booked 10:00-11:00",
		}},
		Alternatives: []model.Alternative{{DateStr: "2026-03-03", Time: "11:00"}},
	}}
	router := newTestRouter(svc)

	body := `{"patient_name":"Dana","patient_phone":"0501234567","date":"2026-03-03","time":"10:30"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		IsValid       bool                 `json:"is_valid"`
		Errors        []model.FieldMessage `json:"errors"`
		Warnings      []model.FieldMessage `json:"warnings"`
		Suggestions   []string             `json:"suggestions"`
		Alternatives  []model.Alternative  `json:"alternatives"`
		ErrorMessages []string             `json:"error_messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsValid {
		t.Error("is_valid = true, want false")
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Code != model.CodeSchedulingConflict {
		t.Errorf("errors = %v", resp.Errors)
	}
	if len(resp.ErrorMessages) != 1 || resp.ErrorMessages[0] != "time: overlaps an appointment booked 10:00-11:00" {
		t.Errorf("error_messages = %v", resp.ErrorMessages)
	}
	// Untouched collections must still be arrays, not null.
	if resp.Warnings == nil || resp.Suggestions == nil {
		t.Error("empty collections serialized as null")
	}
	if len(resp.Alternatives) != 1 || resp.Alternatives[0].Time != "11:00" {
		t.Errorf("alternatives = %v", resp.Alternatives)
	}
}

func TestValidateEndpointRejectsBadJSON(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/validate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestValidateEndpointLookupFailure(t *testing.T) {
	svc := &stubService{validateErr: apperrors.Lookup("booking store", io.ErrUnexpectedEOF)}
	router := newTestRouter(svc)

	body := `{"patient_name":"Dana","patient_phone":"0501234567"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGetSlotsEndpoint(t *testing.T) {
	start := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	svc := &stubService{slots: []model.Slot{
		{Start: start, End: start.Add(time.Hour), Available: true},
	}}
	router := newTestRouter(svc)

	body := `{"specialist_id":"sp-1","service_id":"svc-1","date":"2026-03-03"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/slots", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.slotsQuery.SpecialistID != "sp-1" || svc.slotsQuery.Date != "2026-03-03" {
		t.Errorf("query passed through = %+v", svc.slotsQuery)
	}

	var resp struct {
		Success bool `json:"success"`
		Slots   []struct {
			Time      string    `json:"time"`
			Start     time.Time `json:"start"`
			End       time.Time `json:"end"`
			Available bool      `json:"available"`
		} `json:"slots"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || len(resp.Slots) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Slots[0].Time != "10:00" {
		t.Errorf("slot time = %q, want %q", resp.Slots[0].Time, "10:00")
	}
	if !resp.Slots[0].Start.Equal(start) || !resp.Slots[0].Available {
		t.Errorf("slot = %+v", resp.Slots[0])
	}
}

func TestGetSlotsEndpointRequiresParams(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing specialist", `{"date":"2026-03-03"}`},
		{"missing date", `{"specialist_id":"sp-1"}`},
	}
	router := newTestRouter(&stubService{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/slots", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCheckConflictsEndpoint(t *testing.T) {
	svc := &stubService{report: &model.ConflictReport{
		HasConflicts: true,
		Conflicts: []model.ConflictDetail{{
			AppointmentID: "appt-1",
			Start:         time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
			End:           time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC),
		}},
	}}
	router := newTestRouter(svc)

	body := `{"specialist_id":"sp-1","date":"2026-03-03","time":"10:30"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/conflicts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Success      bool                   `json:"success"`
		HasConflicts bool                   `json:"has_conflicts"`
		Conflicts    []model.ConflictDetail `json:"conflicts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.HasConflicts || len(resp.Conflicts) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestCheckConflictsEndpointWithInterval(t *testing.T) {
	svc := &stubService{report: &model.ConflictReport{HasConflicts: false}}
	router := newTestRouter(svc)

	body := `{"specialist_id":"sp-1","start_datetime":"2026-03-03T10:30:00Z","end_datetime":"2026-03-03T11:30:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/conflicts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	wantStart := time.Date(2026, 3, 3, 10, 30, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 3, 3, 11, 30, 0, 0, time.UTC)
	if !svc.intervalStart.Equal(wantStart) || !svc.intervalEnd.Equal(wantEnd) {
		t.Errorf("interval passed through = %v-%v", svc.intervalStart, svc.intervalEnd)
	}
}

func TestCheckConflictsEndpointRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing specialist", `{"date":"2026-03-03","time":"10:30"}`},
		{"no interval or coordinate", `{"specialist_id":"sp-1"}`},
		{"malformed start instant", `{"specialist_id":"sp-1","start_datetime":"tomorrow","end_datetime":"2026-03-03T11:30:00Z"}`},
		{"missing end instant", `{"specialist_id":"sp-1","start_datetime":"2026-03-03T10:30:00Z"}`},
	}
	router := newTestRouter(&stubService{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/conflicts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestBookEndpoint(t *testing.T) {
	svc := &stubService{booked: &model.Appointment{
		ID:           "appt-new",
		PatientName:  "Dana",
		SpecialistID: "sp-1",
		Status:       model.StatusPending,
	}}
	router := newTestRouter(svc)

	body := `{"patient_name":"Dana","patient_phone":"0501234567","specialist_id":"sp-1","date":"2026-03-03","time":"11:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var appt model.Appointment
	if err := json.NewDecoder(rec.Body).Decode(&appt); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if appt.ID != "appt-new" || appt.Status != model.StatusPending {
		t.Errorf("appointment = %+v", appt)
	}
}

func TestBookEndpointValidationFailure(t *testing.T) {
	svc := &stubService{bookErr: apperrors.Validation("appointment request failed validation", nil)}
	router := newTestRouter(svc)

	body := `{"patient_name":"Dana"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	svc := &stubService{cancelled: &model.Appointment{ID: "appt-1", Status: model.StatusCancelled}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/appointments/appt-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.cancelledID != "appt-1" {
		t.Errorf("cancelled ID = %q, want appt-1", svc.cancelledID)
	}
}

func TestCancelEndpointNotFound(t *testing.T) {
	svc := &stubService{cancelErr: apperrors.NotFoundWithID("Appointment", "appt-x")}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/appointments/appt-x", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
