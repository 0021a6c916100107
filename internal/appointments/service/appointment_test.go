package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	apptserrors "medsched/internal/appointments/errors"
	"medsched/internal/scheduling"
	mongotx "medsched/pkg/db/mongo"
	apperrors "medsched/pkg/errors"
	"medsched/pkg/kafka"
	"medsched/pkg/logger"
	"medsched/pkg/model"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type memCatalog struct {
	services    map[string]*model.Service
	specialists map[string]*model.Specialist
}

func (c *memCatalog) ServiceByID(_ context.Context, id string) (*model.Service, error) {
	if s, ok := c.services[id]; ok {
		return s, nil
	}
	return nil, scheduling.ErrServiceNotFound
}

func (c *memCatalog) SpecialistByID(_ context.Context, id string) (*model.Specialist, error) {
	if s, ok := c.specialists[id]; ok {
		return s, nil
	}
	return nil, scheduling.ErrSpecialistNotFound
}

// memAppointmentRepo implements both the booking repository and the
// engine's booking store over a slice.
type memAppointmentRepo struct {
	appointments []*model.Appointment
	nextID       int
	beforeTx     func()
}

func (r *memAppointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	r.nextID++
	appt.ID = fmt.Sprintf("appt-%d", r.nextID)
	appt.CreatedAt = testNow
	appt.UpdatedAt = testNow
	stored := *appt
	r.appointments = append(r.appointments, &stored)
	return nil
}

func (r *memAppointmentRepo) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	for _, a := range r.appointments {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apptserrors.ErrNotFound
}

func (r *memAppointmentRepo) UpdateStatus(_ context.Context, id string, status string) error {
	for _, a := range r.appointments {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return apptserrors.ErrNotFound
}

func (r *memAppointmentRepo) ActiveAppointmentsFor(_ context.Context, specialistID string, day time.Time) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range r.appointments {
		if a.SpecialistID != specialistID || !a.IsActive() {
			continue
		}
		if a.StartTime.Year() == day.Year() && a.StartTime.YearDay() == day.YearDay() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if r.beforeTx != nil {
		r.beforeTx()
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

type memLockRepo struct {
	held     map[string]bool
	acquired []string
	released []string
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{held: make(map[string]bool)}
}

func (r *memLockRepo) Acquire(_ context.Context, specialistID string, start time.Time, _ time.Duration) (*model.SlotLock, error) {
	id := fmt.Sprintf("%s:%s", specialistID, start.UTC().Format(time.RFC3339))
	if r.held[id] {
		return nil, apptserrors.ErrSlotTaken
	}
	r.held[id] = true
	r.acquired = append(r.acquired, id)
	return &model.SlotLock{ID: id}, nil
}

func (r *memLockRepo) Release(_ context.Context, lockID string) error {
	delete(r.held, lockID)
	r.released = append(r.released, lockID)
	return nil
}

type memPublisher struct {
	events []string
	err    error
}

func (p *memPublisher) PublishAppointmentEvent(_ context.Context, eventType string, appt *model.Appointment) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, eventType+":"+appt.ID)
	return nil
}

func newTestService(t *testing.T, repo *memAppointmentRepo, locks *memLockRepo, events *memPublisher) AppointmentService {
	t.Helper()
	catalog := &memCatalog{
		services: map[string]*model.Service{
			"svc-consult": {ID: "svc-consult", Name: "Consultation", DurationMin: 60, IsActive: true},
		},
		specialists: map[string]*model.Specialist{
			"sp-cohen": {
				ID:         "sp-cohen",
				Name:       "Dr. Cohen",
				Specialty:  "dermatology",
				ServiceIDs: []string{"svc-consult"},
				IsActive:   true,
			},
		},
	}

	log := logger.New(logger.Config{Output: io.Discard})
	engine, err := scheduling.New(catalog, repo, scheduling.Config{Location: time.UTC}, log,
		scheduling.WithNow(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("scheduling.New() error = %v", err)
	}
	return NewAppointmentService(engine, repo, locks, nil, events, log)
}

func bookableRequest() model.AppointmentRequest {
	return model.AppointmentRequest{
		PatientName:  "Dana Mizrahi",
		PatientPhone: "0501234567",
		ServiceID:    "svc-consult",
		SpecialistID: "sp-cohen",
		Date:         "2026-03-03",
		Time:         "11:00",
	}
}

func TestBookCommitsAndPublishes(t *testing.T) {
	repo := &memAppointmentRepo{}
	locks := newMemLockRepo()
	events := &memPublisher{}
	svc := newTestService(t, repo, locks, events)

	appt, err := svc.Book(context.Background(), bookableRequest())
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if appt.ID == "" || appt.Status != model.StatusPending {
		t.Errorf("appointment = %+v", appt)
	}
	if appt.PatientPhone != "+972501234567" {
		t.Errorf("stored phone = %q, want normalized E.164", appt.PatientPhone)
	}
	want := appt.StartTime.Add(time.Hour)
	if !appt.EndTime.Equal(want) {
		t.Errorf("end time = %v, want %v", appt.EndTime, want)
	}
	if len(locks.acquired) != 1 || len(locks.released) != 1 {
		t.Errorf("lock acquired %d times, released %d times", len(locks.acquired), len(locks.released))
	}
	if len(events.events) != 1 || events.events[0] != kafka.EventAppointmentCreated+":"+appt.ID {
		t.Errorf("events = %v", events.events)
	}
}

func TestBookRejectsInvalidRequest(t *testing.T) {
	repo := &memAppointmentRepo{}
	svc := newTestService(t, repo, newMemLockRepo(), &memPublisher{})

	req := bookableRequest()
	req.PatientPhone = "abc"
	_, err := svc.Book(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeValidation)
	}
	if len(repo.appointments) != 0 {
		t.Error("invalid request must not create an appointment")
	}
}

func TestBookLockContention(t *testing.T) {
	repo := &memAppointmentRepo{}
	locks := newMemLockRepo()
	locks.held["sp-cohen:2026-03-03T11:00:00Z"] = true
	svc := newTestService(t, repo, locks, &memPublisher{})

	_, err := svc.Book(context.Background(), bookableRequest())
	if err == nil {
		t.Fatal("expected conflict for held lock")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeConflict)
	}
}

func TestBookRechecksInsideTransaction(t *testing.T) {
	repo := &memAppointmentRepo{}
	// A competing booking lands between validation and the transaction.
	repo.beforeTx = func() {
		repo.appointments = append(repo.appointments, &model.Appointment{
			ID:           "appt-racer",
			SpecialistID: "sp-cohen",
			StartTime:    time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC),
			EndTime:      time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC),
			Status:       model.StatusConfirmed,
		})
	}
	events := &memPublisher{}
	svc := newTestService(t, repo, newMemLockRepo(), events)

	_, err := svc.Book(context.Background(), bookableRequest())
	if err == nil {
		t.Fatal("expected conflict from the in-transaction recheck")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeConflict)
	}
	if len(events.events) != 0 {
		t.Errorf("no event may be published for a failed booking, got %v", events.events)
	}
}

func TestBookSurvivesPublishFailure(t *testing.T) {
	repo := &memAppointmentRepo{}
	events := &memPublisher{err: fmt.Errorf("broker down")}
	svc := newTestService(t, repo, newMemLockRepo(), events)

	appt, err := svc.Book(context.Background(), bookableRequest())
	if err != nil {
		t.Fatalf("Book() error = %v, publish failures must not fail the booking", err)
	}
	if len(repo.appointments) != 1 || appt.ID == "" {
		t.Errorf("appointment not committed: %+v", appt)
	}
}

func TestCancelPublishesAndUpdates(t *testing.T) {
	repo := &memAppointmentRepo{appointments: []*model.Appointment{{
		ID:           "appt-1",
		SpecialistID: "sp-cohen",
		StartTime:    time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC),
		Status:       model.StatusConfirmed,
	}}}
	events := &memPublisher{}
	svc := newTestService(t, repo, newMemLockRepo(), events)

	appt, err := svc.Cancel(context.Background(), "appt-1")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if appt.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", appt.Status)
	}
	if repo.appointments[0].Status != model.StatusCancelled {
		t.Error("stored appointment not updated")
	}
	if len(events.events) != 1 || events.events[0] != kafka.EventAppointmentCancelled+":appt-1" {
		t.Errorf("events = %v", events.events)
	}
}

func TestCancelStatusRules(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantCode string
	}{
		{"already cancelled", model.StatusCancelled, apperrors.CodeConflict},
		{"completed", model.StatusCompleted, apperrors.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memAppointmentRepo{appointments: []*model.Appointment{{
				ID:     "appt-1",
				Status: tt.status,
			}}}
			svc := newTestService(t, repo, newMemLockRepo(), &memPublisher{})

			_, err := svc.Cancel(context.Background(), "appt-1")
			if err == nil {
				t.Fatal("expected error")
			}
			if appErr := apperrors.AsAppError(err); appErr.Code != tt.wantCode {
				t.Errorf("error code = %s, want %s", appErr.Code, tt.wantCode)
			}
			if tt.status == model.StatusCancelled && !errors.Is(err, apptserrors.ErrAlreadyCancelled) {
				t.Errorf("error = %v, want it to wrap ErrAlreadyCancelled", err)
			}
		})
	}
}

func TestCancelUnknownAppointment(t *testing.T) {
	svc := newTestService(t, &memAppointmentRepo{}, newMemLockRepo(), &memPublisher{})

	_, err := svc.Cancel(context.Background(), "appt-x")
	if err == nil {
		t.Fatal("expected not found")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeNotFound)
	}
}

func TestGetSlotsPassesThrough(t *testing.T) {
	repo := &memAppointmentRepo{}
	svc := newTestService(t, repo, newMemLockRepo(), &memPublisher{})

	slots, err := svc.GetSlots(context.Background(), scheduling.SlotQuery{
		SpecialistID: "sp-cohen",
		ServiceID:    "svc-consult",
		Date:         "2026-03-03",
	})
	if err != nil {
		t.Fatalf("GetSlots() error = %v", err)
	}
	if len(slots) != 9 {
		t.Errorf("got %d slots, want 9", len(slots))
	}
}
