package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	apptserrors "medsched/internal/appointments/errors"
	"medsched/internal/appointments/repository"
	"medsched/internal/scheduling"
	"medsched/pkg/cache"
	apperrors "medsched/pkg/errors"
	"medsched/pkg/kafka"
	"medsched/pkg/logger"
	"medsched/pkg/model"
)

const slotLockTTL = 30 * time.Second

// EventPublisher is the slice of the Kafka producer the service needs.
type EventPublisher interface {
	PublishAppointmentEvent(ctx context.Context, eventType string, appt *model.Appointment) error
}

type AppointmentService interface {
	Validate(ctx context.Context, req model.AppointmentRequest) (*model.ValidationResult, error)
	GetSlots(ctx context.Context, q scheduling.SlotQuery) ([]model.Slot, error)
	CheckConflicts(ctx context.Context, specialistID, serviceID, date, timeStr, excludeID string) (*model.ConflictReport, error)
	CheckConflictsBetween(ctx context.Context, specialistID string, start, end time.Time, excludeID string) (*model.ConflictReport, error)
	Book(ctx context.Context, req model.AppointmentRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, id string) (*model.Appointment, error)
}

type appointmentService struct {
	engine    *scheduling.Engine
	repo      repository.AppointmentRepository
	locks     repository.SlotLockRepository
	slotCache *cache.SlotCache
	events    EventPublisher
	log       *logger.Logger
}

// NewAppointmentService wires the validation engine to the booking
// repositories. slotCache and events may be nil; both degrade cleanly.
func NewAppointmentService(
	engine *scheduling.Engine,
	repo repository.AppointmentRepository,
	locks repository.SlotLockRepository,
	slotCache *cache.SlotCache,
	events EventPublisher,
	log *logger.Logger,
) AppointmentService {
	return &appointmentService{
		engine:    engine,
		repo:      repo,
		locks:     locks,
		slotCache: slotCache,
		events:    events,
		log:       log,
	}
}

func (s *appointmentService) Validate(ctx context.Context, req model.AppointmentRequest) (*model.ValidationResult, error) {
	return s.engine.Validate(ctx, req)
}

// GetSlots serves the slot grid, from cache when possible. Only the plain
// available-only view is cached; reschedule-aware and full-grid queries
// always recompute.
func (s *appointmentService) GetSlots(ctx context.Context, q scheduling.SlotQuery) ([]model.Slot, error) {
	cacheable := s.slotCache != nil && !q.IncludeUnavailable && q.ExcludeAppointmentID == ""
	if cacheable {
		if slots, err := s.slotCache.Get(ctx, q.SpecialistID, q.ServiceID, q.Date); err == nil {
			return slots, nil
		}
	}

	slots, err := s.engine.AvailableSlots(ctx, q)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.slotCache.Set(ctx, q.SpecialistID, q.ServiceID, q.Date, slots)
	}
	return slots, nil
}

func (s *appointmentService) CheckConflicts(ctx context.Context, specialistID, serviceID, date, timeStr, excludeID string) (*model.ConflictReport, error) {
	return s.engine.ConflictsAt(ctx, specialistID, serviceID, date, timeStr, excludeID)
}

func (s *appointmentService) CheckConflictsBetween(ctx context.Context, specialistID string, start, end time.Time, excludeID string) (*model.ConflictReport, error) {
	return s.engine.ConflictsBetween(ctx, specialistID, start, end, excludeID)
}

// Book validates the request end to end and, when it passes, commits the
// appointment under an advisory slot lock and a transaction. The conflict
// check is repeated inside the transaction so a booking that raced past
// validation still cannot land twice.
func (s *appointmentService) Book(ctx context.Context, req model.AppointmentRequest) (*model.Appointment, error) {
	result, err := s.engine.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return nil, apperrors.Validation("appointment request failed validation", map[string]any{
			"errors":       result.Errors,
			"alternatives": result.Alternatives,
		})
	}

	start, end, err := s.engine.ResolveInterval(ctx, req.ServiceID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	lock, err := s.locks.Acquire(ctx, req.SpecialistID, start, slotLockTTL)
	if err != nil {
		if errors.Is(err, apptserrors.ErrSlotTaken) {
			return nil, apperrors.Conflict("slot is being booked by another request")
		}
		return nil, apperrors.Internal("failed to lock slot", err)
	}
	defer func() {
		if releaseErr := s.locks.Release(context.WithoutCancel(ctx), lock.ID); releaseErr != nil {
			s.log.Warn("failed to release slot lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	phone := strings.TrimSpace(req.PatientPhone)
	if normalized, ok := s.engine.NormalizePhone(phone); ok {
		phone = normalized
	}

	appt := &model.Appointment{
		PatientName:  strings.TrimSpace(req.PatientName),
		PatientPhone: phone,
		SpecialistID: req.SpecialistID,
		ServiceID:    req.ServiceID,
		StartTime:    start,
		EndTime:      end,
		Status:       model.StatusPending,
		Notes:        req.Notes,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		report, err := s.engine.CheckConflicts(sessCtx, req.SpecialistID, start, end, req.ExcludeAppointmentID)
		if err != nil {
			return err
		}
		if report.HasConflicts {
			return apperrors.Conflict(fmt.Sprintf("slot was booked concurrently, %s", report.Conflicts[0].Description()))
		}
		return s.repo.Create(sessCtx, appt)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, kafka.EventAppointmentCreated, appt)
	s.invalidateSlots(ctx, appt)

	s.log.Info("appointment booked",
		"appointment_id", appt.ID,
		"specialist_id", appt.SpecialistID,
		"start_time", appt.StartTime,
	)
	return appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, apptserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Appointment", id)
		case errors.Is(err, apptserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("appointment ID is not valid")
		}
		return nil, apperrors.Internal("failed to load appointment", err)
	}

	if appt.Status == model.StatusCancelled {
		conflict := apperrors.Conflict(apptserrors.ErrAlreadyCancelled.Error())
		conflict.Err = apptserrors.ErrAlreadyCancelled
		return nil, conflict
	}
	if appt.Status == model.StatusCompleted {
		return nil, apperrors.Conflict("completed appointment cannot be cancelled")
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		return nil, apperrors.Internal("failed to cancel appointment", err)
	}
	appt.Status = model.StatusCancelled

	s.publishEvent(ctx, kafka.EventAppointmentCancelled, appt)
	s.invalidateSlots(ctx, appt)

	s.log.Info("appointment cancelled", "appointment_id", appt.ID)
	return appt, nil
}

// publishEvent is best effort: the booking already committed, so a broker
// outage is logged rather than surfaced to the caller.
func (s *appointmentService) publishEvent(ctx context.Context, eventType string, appt *model.Appointment) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAppointmentEvent(ctx, eventType, appt); err != nil {
		s.log.Error("failed to publish appointment event",
			"type", eventType,
			"appointment_id", appt.ID,
			"error", err,
		)
	}
}

func (s *appointmentService) invalidateSlots(ctx context.Context, appt *model.Appointment) {
	if s.slotCache == nil {
		return
	}
	s.slotCache.Invalidate(ctx, appt.SpecialistID, appt.StartTime.Format("2006-01-02"))
}
