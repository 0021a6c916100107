package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medsched/pkg/model"
)

// windowFor picks the working window for a specialist on a given date.
// Explicit per-weekday hours win over the clinic default; a specialist with
// an hours map that omits the weekday is off that day. Clinic-wide closures
// (weekend, holiday) always win.
func (e *Engine) windowFor(specialist *model.Specialist, date time.Time) (model.WorkingWindow, bool) {
	if !e.clock.IsWorkingDay(date) {
		return model.WorkingWindow{}, false
	}
	if len(specialist.WorkingHours) == 0 {
		return e.cfg.DefaultWindow, true
	}
	w, ok := specialist.WorkingHours[strings.ToLower(date.Weekday().String())]
	if !ok {
		return model.WorkingWindow{}, false
	}
	return w, true
}

// slotsFor partitions the specialist's working window on the given date
// into consecutive duration-sized slots. Slots start at the window start
// and advance by exactly one duration; a final slot that would spill past
// the window end is not generated. A slot is unavailable when it overlaps
// a booked appointment or, on the current day, starts inside the lead-time
// buffer. excludeID frees the interval of that appointment, which is what
// makes rescheduling checks see the patient's own slot as open.
func (e *Engine) slotsFor(ctx context.Context, specialist *model.Specialist, date time.Time, durationMin int, excludeID string) ([]model.Slot, error) {
	window, open := e.windowFor(specialist, date)
	if !open {
		return nil, nil
	}

	start, err := ParseTimeOfDay(window.Start)
	if err != nil {
		return nil, fmt.Errorf("working window start: %w", err)
	}
	end, err := ParseTimeOfDay(window.End)
	if err != nil {
		return nil, fmt.Errorf("working window end: %w", err)
	}

	booked, err := e.store.ActiveAppointmentsFor(ctx, specialist.ID, date)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(durationMin) * time.Minute
	windowEnd := e.clock.Combine(date, end)

	var earliest time.Time
	if today := e.clock.Today(); date.Equal(today) {
		earliest = e.clock.Now().Add(e.cfg.SameDayLeadTime)
	}

	var slots []model.Slot
	for cur := e.clock.Combine(date, start); !cur.Add(duration).After(windowEnd); cur = cur.Add(duration) {
		slot := model.Slot{Start: cur, End: cur.Add(duration), Available: true}
		if !earliest.IsZero() && cur.Before(earliest) {
			slot.Available = false
		}
		for _, appt := range booked {
			if appt.ID == excludeID || !appt.IsActive() {
				continue
			}
			if overlaps(slot.Start, slot.End, appt.StartTime, appt.EndTime) {
				slot.Available = false
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func availableOnly(slots []model.Slot) []model.Slot {
	out := make([]model.Slot, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

func slotStartingAt(slots []model.Slot, start time.Time) (model.Slot, bool) {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return s, true
		}
	}
	return model.Slot{}, false
}
