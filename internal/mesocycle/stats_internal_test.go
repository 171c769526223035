package mesocycle

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mvihanto/repcycle/internal/ptr"
)

func TestComputeRecap(t *testing.T) {
	t.Parallel()

	meso := Mesocycle{TotalWeeks: 3}
	weekByWorkoutID := map[int64]int{10: 1, 20: 2}
	muscles := map[string]string{"Bench Press": "Chest"}

	exercises := []Exercise{
		{
			WorkoutID: 10,
			Name:      "Bench Press",
			SetResults: []SetResult{
				{Weight: ptr.Ref(80.0), Reps: ptr.Ref(8)},
				{Weight: ptr.Ref(80.0), Reps: ptr.Ref(6)},
				{Reps: ptr.Ref(0)}, // unperformed
			},
		},
		{
			WorkoutID: 20,
			Name:      "Bench Press",
			SetResults: []SetResult{
				{Weight: ptr.Ref(85.0), Reps: ptr.Ref(8)},
			},
		},
		{
			WorkoutID: 10,
			Name:      "Face Pull", // not in the library, falls back to Other
			SetResults: []SetResult{
				{Reps: ptr.Ref(15)}, // bodyweight-style: counts as a set, no volume
			},
		},
	}

	recap := computeRecap(meso, weekByWorkoutID, exercises, muscles)

	wantVolume := 80.0*8 + 80.0*6 + 85.0*8
	if recap.TotalVolume != wantVolume {
		t.Errorf("TotalVolume = %v, want %v", recap.TotalVolume, wantVolume)
	}

	wantMuscles := []MuscleStat{{Name: "Chest", Count: 3}, {Name: "Other", Count: 1}}
	if diff := cmp.Diff(wantMuscles, recap.MuscleStats); diff != "" {
		t.Errorf("MuscleStats mismatch (-want +got):\n%s", diff)
	}

	// All three weeks appear even though week 3 saw no training.
	if len(recap.WeeklyBreakdown) != 3 {
		t.Fatalf("got %d weeks, want 3", len(recap.WeeklyBreakdown))
	}
	if recap.WeeklyBreakdown[0].Total != 3 || recap.WeeklyBreakdown[1].Total != 1 || recap.WeeklyBreakdown[2].Total != 0 {
		t.Errorf("weekly totals = %+v", recap.WeeklyBreakdown)
	}
	if recap.WeeklyBreakdown[0].Muscles["Chest"] != 2 {
		t.Errorf("week 1 chest sets = %d, want 2", recap.WeeklyBreakdown[0].Muscles["Chest"])
	}

	// Progress needs at least two trained weeks per exercise.
	if len(recap.Progress) != 1 {
		t.Fatalf("got %d progress entries, want 1", len(recap.Progress))
	}
	p := recap.Progress[0]
	if p.Name != "Bench Press" {
		t.Errorf("progress name = %q", p.Name)
	}
	if p.Start.Weight != 80 || p.Start.Reps != 8 {
		t.Errorf("start best set = %+v", p.Start)
	}
	if p.End.Weight != 85 || p.DeltaWeight != 5 || p.DeltaReps != 0 {
		t.Errorf("end best set = %+v, delta %v/%v", p.End, p.DeltaWeight, p.DeltaReps)
	}
}

func TestComputeLifetimeStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	workouts := []Workout{
		{ID: 1, CompletedAt: time.Date(2025, 3, 2, 18, 0, 0, 0, time.UTC)},
		{ID: 2, CompletedAt: time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)},
	}
	exercises := []Exercise{
		{
			WorkoutID: 1,
			Name:      "Squat",
			SetResults: []SetResult{
				{Weight: ptr.Ref(100.0), Reps: ptr.Ref(5)},
				{Weight: ptr.Ref(100.0), Reps: ptr.Ref(8)}, // same weight, more reps wins the PR
				{Reps: ptr.Ref(12)},                        // missing weight, excluded here
			},
		},
		{
			WorkoutID:  2,
			Name:       "Squat",
			SetResults: []SetResult{{Weight: ptr.Ref(90.0), Reps: ptr.Ref(10)}},
		},
	}

	stats := computeLifetimeStats(workouts, exercises, map[string]string{"Squat": "Quadriceps"}, now)
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.TotalWorkouts != 2 {
		t.Errorf("TotalWorkouts = %d", stats.TotalWorkouts)
	}
	if stats.TotalSets != 3 {
		t.Errorf("TotalSets = %d, want 3", stats.TotalSets)
	}
	if want := 100.0*5 + 100.0*8 + 90.0*10; stats.TotalVolume != want {
		t.Errorf("TotalVolume = %v, want %v", stats.TotalVolume, want)
	}
	// First completion was March 1 evening; partial days round up.
	if stats.DaysActive != 9 {
		t.Errorf("DaysActive = %d, want 9", stats.DaysActive)
	}
	wantPRs := []PersonalRecord{{Name: "Squat", Weight: 100, Reps: 8}}
	if diff := cmp.Diff(wantPRs, stats.PersonalRecords); diff != "" {
		t.Errorf("PersonalRecords mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeLifetimeStats_empty(t *testing.T) {
	t.Parallel()
	if stats := computeLifetimeStats(nil, nil, nil, time.Now()); stats != nil {
		t.Errorf("expected nil stats, got %+v", stats)
	}
}

func TestWeeklyChartData(t *testing.T) {
	t.Parallel()

	recap := &Recap{WeeklyBreakdown: []WeekBreakdown{
		{Week: 1, Total: 12, Muscles: map[string]int{"Chest": 5}},
		{Week: 2, Total: 14, Muscles: map[string]int{"Chest": 6}},
	}}

	testCases := []struct {
		name   string
		recap  *Recap
		filter string
		want   ChartData
	}{
		{
			name:   "all muscles",
			recap:  recap,
			filter: "All",
			want:   ChartData{Bars: []ChartBar{{Week: 1, Count: 12}, {Week: 2, Count: 14}}, Max: 14},
		},
		{
			name:   "single muscle",
			recap:  recap,
			filter: "Chest",
			want:   ChartData{Bars: []ChartBar{{Week: 1, Count: 5}, {Week: 2, Count: 6}}, Max: 6},
		},
		{
			name:   "untrained muscle keeps the default axis",
			recap:  recap,
			filter: "Calves",
			want:   ChartData{Bars: []ChartBar{{Week: 1, Count: 0}, {Week: 2, Count: 0}}, Max: 10},
		},
		{
			name:   "nil recap",
			recap:  nil,
			filter: "All",
			want:   ChartData{Bars: []ChartBar{}, Max: 10},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := WeeklyChartData(tc.recap, tc.filter)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("chart mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildCalendarGrid(t *testing.T) {
	t.Parallel()

	workouts := []Workout{
		{ID: 1, WeekNumber: 1, DayNumber: 1},
		{ID: 2, WeekNumber: 1, DayNumber: 3},
		{ID: 3, WeekNumber: 2, DayNumber: 1},
		{ID: 4, WeekNumber: 9, DayNumber: 1}, // out of range, dropped
	}

	grid := buildCalendarGrid(workouts, 2, 4)
	if len(grid) != 2 || len(grid[0]) != 4 {
		t.Fatalf("grid dimensions = %dx%d", len(grid), len(grid[0]))
	}
	if grid[0][0] == nil || grid[0][0].ID != 1 {
		t.Errorf("grid[0][0] = %+v", grid[0][0])
	}
	if grid[0][1] != nil {
		t.Error("rest day cell should be nil")
	}
	if grid[0][2] == nil || grid[0][2].ID != 2 {
		t.Errorf("grid[0][2] = %+v", grid[0][2])
	}
	if grid[1][0] == nil || grid[1][0].ID != 3 {
		t.Errorf("grid[1][0] = %+v", grid[1][0])
	}
}
