package scheduling

import (
	"context"
	"time"

	apperrors "medsched/pkg/errors"
	"medsched/pkg/model"
)

// overlaps implements the half-open interval rule: [s1,e1) and [s2,e2)
// collide when each starts before the other ends. Back-to-back intervals
// sharing a boundary instant do not overlap.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// CheckConflicts reports every active appointment of the specialist whose
// interval overlaps [start, end). The appointment named by excludeID is
// skipped so a reschedule does not collide with itself. A store failure
// surfaces as a lookup error and is never reported as "no conflicts".
func (e *Engine) CheckConflicts(ctx context.Context, specialistID string, start, end time.Time, excludeID string) (*model.ConflictReport, error) {
	booked, err := e.store.ActiveAppointmentsFor(ctx, specialistID, e.clock.DateOf(start))
	if err != nil {
		return nil, apperrors.Lookup("booking store", err)
	}

	report := &model.ConflictReport{}
	for _, appt := range booked {
		if appt.ID == excludeID || !appt.IsActive() {
			continue
		}
		if overlaps(start, end, appt.StartTime, appt.EndTime) {
			report.Conflicts = append(report.Conflicts, model.ConflictDetail{
				AppointmentID: appt.ID,
				Start:         appt.StartTime,
				End:           appt.EndTime,
			})
		}
	}
	report.HasConflicts = len(report.Conflicts) > 0
	return report, nil
}
