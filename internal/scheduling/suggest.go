package scheduling

import (
	"context"
	"sort"
	"time"

	"medsched/pkg/model"
)

// rankAlternativeTimes orders the available slots of a day by distance from
// the requested instant, earlier slot winning a tie, and keeps the first n.
func rankAlternativeTimes(slots []model.Slot, requested time.Time, n int) []model.Alternative {
	ranked := make([]model.Slot, len(slots))
	copy(ranked, slots)
	sort.SliceStable(ranked, func(i, j int) bool {
		di := absDuration(ranked[i].Start.Sub(requested))
		dj := absDuration(ranked[j].Start.Sub(requested))
		if di != dj {
			return di < dj
		}
		return ranked[i].Start.Before(ranked[j].Start)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]model.Alternative, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, model.Alternative{
			DateStr: s.Start.Format(dateLayout),
			Time:    s.TimeLabel(),
		})
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// alternativeDates walks forward day by day from the given date, skipping
// days where the specialist has no open slots, and picks one slot per day
// until n dates are found or the horizon runs out. When the caller knows
// the requested wall-clock time, the slot nearest to it represents the day;
// otherwise the day's first available slot does.
func (e *Engine) alternativeDates(ctx context.Context, specialist *model.Specialist, durationMin int, from time.Time, requested *TimeOfDay, excludeID string, n int) ([]model.Alternative, error) {
	var out []model.Alternative
	for i := 0; i < e.cfg.AltDateHorizonDays && len(out) < n; i++ {
		day := from.AddDate(0, 0, i)
		slots, err := e.slotsFor(ctx, specialist, day, durationMin, excludeID)
		if err != nil {
			return nil, err
		}
		open := availableOnly(slots)
		if len(open) == 0 {
			continue
		}
		pick := open[0]
		if requested != nil {
			want := e.clock.Combine(day, *requested)
			best := absDuration(open[0].Start.Sub(want))
			for _, s := range open[1:] {
				if d := absDuration(s.Start.Sub(want)); d < best {
					best = d
					pick = s
				}
			}
		}
		out = append(out, model.Alternative{
			DateStr: day.Format(dateLayout),
			Time:    pick.TimeLabel(),
		})
	}
	return out, nil
}
