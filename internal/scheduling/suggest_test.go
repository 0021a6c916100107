package scheduling

import (
	"context"
	"testing"
	"time"

	"medsched/pkg/model"
)

func slotsAt(date time.Time, labels ...string) []model.Slot {
	out := make([]model.Slot, 0, len(labels))
	for _, l := range labels {
		tod, err := ParseTimeOfDay(l)
		if err != nil {
			panic(err)
		}
		start := time.Date(date.Year(), date.Month(), date.Day(), tod.Hour, tod.Minute, 0, 0, date.Location())
		out = append(out, model.Slot{Start: start, End: start.Add(time.Hour), Available: true})
	}
	return out
}

func TestRankAlternativeTimes(t *testing.T) {
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	slots := slotsAt(day, "10:00", "11:00", "14:00", "15:00")

	tests := []struct {
		name      string
		requested string
		n         int
		want      []string
	}{
		{"nearest first", "10:30", 3, []string{"10:00", "11:00", "14:00"}},
		{"tie broken by earlier", "10:30", 2, []string{"10:00", "11:00"}},
		{"after all slots", "17:00", 2, []string{"15:00", "14:00"}},
		{"cap respected", "12:00", 1, []string{"11:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tod, _ := ParseTimeOfDay(tt.requested)
			requested := time.Date(2026, 3, 3, tod.Hour, tod.Minute, 0, 0, time.UTC)
			got := rankAlternativeTimes(slots, requested, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d alternatives, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].Time != w {
					t.Errorf("alternative %d = %s, want %s", i, got[i].Time, w)
				}
				if got[i].DateStr != "2026-03-03" {
					t.Errorf("alternative %d date = %s", i, got[i].DateStr)
				}
			}
		})
	}
}

func TestAlternativeDatesSkipClosedAndFullDays(t *testing.T) {
	// Tuesday 2026-03-03 is fully booked for Dr. Cohen; Friday and
	// Saturday are weekend. The walk starting Tuesday must land on
	// Wednesday, Thursday and Sunday.
	var booked []model.Appointment
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	for h := 10; h < 19; h++ {
		booked = append(booked, model.Appointment{
			ID:           "appt",
			SpecialistID: "sp-cohen",
			StartTime:    time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, time.UTC),
			EndTime:      time.Date(day.Year(), day.Month(), day.Day(), h+1, 0, 0, 0, time.UTC),
			Status:       model.StatusConfirmed,
		})
	}
	eng := newTestEngine(t, testCatalog(), &fakeStore{appointments: booked})

	specialist, err := eng.catalog.SpecialistByID(context.Background(), "sp-cohen")
	if err != nil {
		t.Fatalf("SpecialistByID() error = %v", err)
	}

	got, err := eng.alternativeDates(context.Background(), specialist, 60, day, nil, "", 3)
	if err != nil {
		t.Fatalf("alternativeDates() error = %v", err)
	}
	want := []string{"2026-03-04", "2026-03-05", "2026-03-08"}
	if len(got) != len(want) {
		t.Fatalf("got %d dates, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].DateStr != w {
			t.Errorf("date %d = %s, want %s", i, got[i].DateStr, w)
		}
		if got[i].Time != "10:00" {
			t.Errorf("date %d time = %s, want first open slot 10:00", i, got[i].Time)
		}
	}
}

func TestAlternativeDatesPickSlotNearestRequestedTime(t *testing.T) {
	eng := newTestEngine(t, testCatalog(), &fakeStore{})

	specialist, err := eng.catalog.SpecialistByID(context.Background(), "sp-cohen")
	if err != nil {
		t.Fatalf("SpecialistByID() error = %v", err)
	}

	requested := TimeOfDay{Hour: 15, Minute: 30}
	from := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	got, err := eng.alternativeDates(context.Background(), specialist, 60, from, &requested, "", 1)
	if err != nil {
		t.Fatalf("alternativeDates() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d dates, want 1", len(got))
	}
	if got[0].Time != "15:00" {
		t.Errorf("picked %s, want slot nearest 15:30 which is 15:00", got[0].Time)
	}
}

func TestAlternativeDatesHonorHorizon(t *testing.T) {
	// A specialist with no working days in range yields no date
	// alternatives instead of walking forever.
	catalog := testCatalog()
	catalog.specialists["sp-away"] = &model.Specialist{
		ID:        "sp-away",
		Name:      "Dr. Away",
		Specialty: "none",
		IsActive:  true,
		// Friday is a clinic weekend day, so this map leaves no
		// reachable working day at all.
		WorkingHours: map[string]model.WorkingWindow{
			"friday": {Start: "10:00", End: "14:00"},
		},
	}
	eng := newTestEngine(t, catalog, &fakeStore{})

	specialist, err := eng.catalog.SpecialistByID(context.Background(), "sp-away")
	if err != nil {
		t.Fatalf("SpecialistByID() error = %v", err)
	}

	from := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	got, err := eng.alternativeDates(context.Background(), specialist, 60, from, nil, "", 3)
	if err != nil {
		t.Fatalf("alternativeDates() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d dates for a specialist with no hours, want 0", len(got))
	}
}
