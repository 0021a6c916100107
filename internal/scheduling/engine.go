package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "medsched/pkg/errors"
	"medsched/pkg/logger"
	"medsched/pkg/model"
)

// Engine validates appointment requests against the clinic calendar, the
// service catalog and the booking store. It is safe for concurrent use and
// holds no mutable state between calls.
type Engine struct {
	catalog Catalog
	store   BookingStore
	fields  *fieldValidator
	clock   *clinicClock
	cfg     Config
	log     *logger.Logger
}

type engineOptions struct {
	now func() time.Time
}

// Option tweaks engine construction.
type Option func(*engineOptions)

// WithNow pins the engine's current-time source.
func WithNow(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

func New(catalog Catalog, store BookingStore, cfg Config, log *logger.Logger, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, errors.New("scheduling: catalog is required")
	}
	if store == nil {
		return nil, errors.New("scheduling: booking store is required")
	}
	if log == nil {
		return nil, errors.New("scheduling: logger is required")
	}

	var eo engineOptions
	for _, opt := range opts {
		opt(&eo)
	}

	cfg = cfg.withDefaults()
	fields, err := newFieldValidator(cfg.PhoneRegion, cfg.Location)
	if err != nil {
		return nil, err
	}

	return &Engine{
		catalog: catalog,
		store:   store,
		fields:  fields,
		clock:   newClinicClock(cfg, eo.now),
		cfg:     cfg,
		log:     log,
	}, nil
}

// Validate runs every check stage over the request and aggregates the
// outcome. All stages run even after earlier failures so the caller sees
// the full per-field picture in one pass; only an infrastructure failure
// while talking to a collaborator aborts the run.
func (e *Engine) Validate(ctx context.Context, req model.AppointmentRequest) (*model.ValidationResult, error) {
	fc := e.fields.check(req)
	warnings := make(map[model.Field][]model.FieldMessage)
	var suggestions []string

	if fc.normalizedPhone != "" && fc.normalizedPhone != strings.TrimSpace(req.PatientPhone) {
		suggestions = append(suggestions, fmt.Sprintf("use phone number %s", fc.normalizedPhone))
	}

	service, duration, err := e.resolveService(ctx, req.ServiceID, fc)
	if err != nil {
		return nil, err
	}
	specialist, err := e.resolveSpecialist(ctx, req.SpecialistID, service, fc)
	if err != nil {
		return nil, err
	}

	today := e.clock.Today()
	dateUsable := false
	pastDate := false
	if fc.hasDate && !fc.hasError(model.FieldDate) {
		switch {
		case fc.date.Before(today):
			pastDate = true
			fc.add(model.FieldDate, model.CodePastDate, fmt.Sprintf("%s is in the past", req.Date))
		case fc.date.After(today.AddDate(0, 0, e.cfg.MaxAdvanceDays)):
			dateUsable = true
			warnings[model.FieldDate] = append(warnings[model.FieldDate], model.FieldMessage{
				Field:   model.FieldDate,
				Code:    model.CodeDateOutOfRange,
				Message: fmt.Sprintf("%s is more than %d days ahead", req.Date, e.cfg.MaxAdvanceDays),
			})
		default:
			dateUsable = true
		}
	}

	if req.Time == "" {
		fc.add(model.FieldTime, model.CodeMissingTime, "appointment time is required")
	}

	needAlternatives := pastDate
	var daySlots []model.Slot
	if specialist != nil && dateUsable && fc.hasTime && !fc.hasError(model.FieldTime) {
		slots, err := e.slotsFor(ctx, specialist, fc.date, duration, req.ExcludeAppointmentID)
		if err != nil {
			return nil, apperrors.Lookup("booking store", err)
		}
		daySlots = availableOnly(slots)

		reqStart := e.clock.Combine(fc.date, fc.timeOfDay)
		reqEnd := reqStart.Add(time.Duration(duration) * time.Minute)

		if _, ok := slotStartingAt(daySlots, reqStart); !ok {
			report, err := e.CheckConflicts(ctx, specialist.ID, reqStart, reqEnd, req.ExcludeAppointmentID)
			if err != nil {
				return nil, err
			}
			needAlternatives = true
			if report.HasConflicts {
				for _, c := range report.Conflicts {
					fc.add(model.FieldTime, model.CodeSchedulingConflict, fmt.Sprintf("overlaps an appointment %s", c.Description()))
				}
			} else {
				fc.add(model.FieldTime, model.CodeSlotUnavailable, fmt.Sprintf("%s on %s is not an open slot", req.Time, req.Date))
			}
		}
	}

	var alternatives []model.Alternative
	if needAlternatives && specialist != nil {
		var requested *TimeOfDay
		if fc.hasTime {
			t := fc.timeOfDay
			requested = &t
		}

		if dateUsable && requested != nil {
			reqStart := e.clock.Combine(fc.date, *requested)
			alternatives = append(alternatives, rankAlternativeTimes(daySlots, reqStart, e.cfg.AltTimeCount)...)
		}

		from := today.AddDate(0, 0, 1)
		if dateUsable {
			from = fc.date.AddDate(0, 0, 1)
		}
		dates, err := e.alternativeDates(ctx, specialist, duration, from, requested, req.ExcludeAppointmentID, e.cfg.AltDateCount)
		if err != nil {
			return nil, apperrors.Lookup("booking store", err)
		}
		alternatives = append(alternatives, dates...)
	}

	result := &model.ValidationResult{
		Suggestions:  suggestions,
		Alternatives: alternatives,
	}
	for _, f := range model.FieldOrder {
		result.Errors = append(result.Errors, fc.errs[f]...)
		result.Warnings = append(result.Warnings, warnings[f]...)
	}
	result.IsValid = len(result.Errors) == 0

	e.log.Debug("validation finished",
		"valid", result.IsValid,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
		"alternatives", len(result.Alternatives))
	return result, nil
}

func (e *Engine) resolveService(ctx context.Context, serviceID string, fc *fieldCheck) (*model.Service, int, error) {
	if serviceID == "" {
		return nil, e.cfg.DefaultDurationMin, nil
	}
	service, err := e.catalog.ServiceByID(ctx, serviceID)
	switch {
	case errors.Is(err, ErrServiceNotFound):
		fc.add(model.FieldService, model.CodeUnknownService, fmt.Sprintf("service %q does not exist", serviceID))
		return nil, e.cfg.DefaultDurationMin, nil
	case err != nil:
		return nil, 0, apperrors.Lookup("service catalog", err)
	case !service.IsActive:
		fc.add(model.FieldService, model.CodeUnknownService, fmt.Sprintf("service %q is not offered", serviceID))
		return nil, e.cfg.DefaultDurationMin, nil
	}
	return service, service.DurationMin, nil
}

func (e *Engine) resolveSpecialist(ctx context.Context, specialistID string, service *model.Service, fc *fieldCheck) (*model.Specialist, error) {
	if specialistID == "" {
		return nil, nil
	}
	specialist, err := e.catalog.SpecialistByID(ctx, specialistID)
	switch {
	case errors.Is(err, ErrSpecialistNotFound):
		fc.add(model.FieldSpecialist, model.CodeUnknownSpecialist, fmt.Sprintf("specialist %q does not exist", specialistID))
		return nil, nil
	case err != nil:
		return nil, apperrors.Lookup("specialist catalog", err)
	case !specialist.IsActive:
		fc.add(model.FieldSpecialist, model.CodeUnknownSpecialist, fmt.Sprintf("specialist %q is not available", specialistID))
		return nil, nil
	}
	if service != nil && !specialist.OffersService(service.ID) {
		fc.add(model.FieldSpecialist, model.CodeServiceNotOffered, fmt.Sprintf("specialist %q does not offer service %q", specialistID, service.ID))
	}
	return specialist, nil
}

// NormalizePhone returns the E.164 form of a raw phone number, or false
// when it cannot be parsed as a valid number.
func (e *Engine) NormalizePhone(raw string) (string, bool) {
	return e.fields.normalizePhone(strings.TrimSpace(raw))
}

// ResolveInterval turns a (service, date, time) triple into the concrete
// half-open interval a booking would occupy. An empty service ID falls back
// to the default duration.
func (e *Engine) ResolveInterval(ctx context.Context, serviceID, date, timeStr string) (time.Time, time.Time, error) {
	duration := e.cfg.DefaultDurationMin
	if serviceID != "" {
		service, err := e.catalog.ServiceByID(ctx, serviceID)
		if errors.Is(err, ErrServiceNotFound) {
			return time.Time{}, time.Time{}, apperrors.NotFoundWithID("Service", serviceID)
		}
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.Lookup("service catalog", err)
		}
		duration = service.DurationMin
	}

	day, err := ParseDate(date, e.cfg.Location)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}
	tod, err := ParseTimeOfDay(timeStr)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("time must be in HH:MM format")
	}

	start := e.clock.Combine(day, tod)
	return start, start.Add(time.Duration(duration) * time.Minute), nil
}

// ConflictsAt runs conflict detection for a (specialist, service, date,
// time) coordinate without the rest of the validation pipeline.
func (e *Engine) ConflictsAt(ctx context.Context, specialistID, serviceID, date, timeStr, excludeID string) (*model.ConflictReport, error) {
	if _, err := e.catalog.SpecialistByID(ctx, specialistID); err != nil {
		if errors.Is(err, ErrSpecialistNotFound) {
			return nil, apperrors.NotFoundWithID("Specialist", specialistID)
		}
		return nil, apperrors.Lookup("specialist catalog", err)
	}

	start, end, err := e.ResolveInterval(ctx, serviceID, date, timeStr)
	if err != nil {
		return nil, err
	}
	return e.CheckConflicts(ctx, specialistID, start, end, excludeID)
}

// ConflictsBetween runs conflict detection for an explicit proposed
// interval, verifying the specialist exists first.
func (e *Engine) ConflictsBetween(ctx context.Context, specialistID string, start, end time.Time, excludeID string) (*model.ConflictReport, error) {
	if _, err := e.catalog.SpecialistByID(ctx, specialistID); err != nil {
		if errors.Is(err, ErrSpecialistNotFound) {
			return nil, apperrors.NotFoundWithID("Specialist", specialistID)
		}
		return nil, apperrors.Lookup("specialist catalog", err)
	}
	if !start.Before(end) {
		return nil, apperrors.InvalidInput("start must be before end")
	}
	return e.CheckConflicts(ctx, specialistID, start, end, excludeID)
}

// SlotQuery names a specialist's day whose slot grid is wanted.
type SlotQuery struct {
	SpecialistID         string
	ServiceID            string
	Date                 string
	IncludeUnavailable   bool
	ExcludeAppointmentID string
}

// AvailableSlots returns the slot grid for a specialist's day. With
// IncludeUnavailable set, booked and lead-time-excluded slots are returned
// too, flagged unavailable.
func (e *Engine) AvailableSlots(ctx context.Context, q SlotQuery) ([]model.Slot, error) {
	specialist, err := e.catalog.SpecialistByID(ctx, q.SpecialistID)
	if errors.Is(err, ErrSpecialistNotFound) {
		return nil, apperrors.NotFoundWithID("Specialist", q.SpecialistID)
	}
	if err != nil {
		return nil, apperrors.Lookup("specialist catalog", err)
	}

	duration := e.cfg.DefaultDurationMin
	if q.ServiceID != "" {
		service, err := e.catalog.ServiceByID(ctx, q.ServiceID)
		if errors.Is(err, ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", q.ServiceID)
		}
		if err != nil {
			return nil, apperrors.Lookup("service catalog", err)
		}
		duration = service.DurationMin
	}

	date, err := ParseDate(q.Date, e.cfg.Location)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}

	slots, err := e.slotsFor(ctx, specialist, date, duration, q.ExcludeAppointmentID)
	if err != nil {
		return nil, apperrors.Lookup("booking store", err)
	}
	if q.IncludeUnavailable {
		return slots, nil
	}
	return availableOnly(slots), nil
}
