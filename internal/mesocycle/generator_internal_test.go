package mesocycle

import (
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func testSchedule() []ScheduleDay {
	return []ScheduleDay{
		{Type: DayTypeLift, WorkoutName: "Push"},
		{Type: DayTypeRest},
		{Type: DayTypeLift, WorkoutName: "Pull"},
		{Type: DayTypeRest},
	}
}

func testTemplates() map[string][]ExerciseTemplate {
	return map[string][]ExerciseTemplate{
		"Push": {
			{Name: "Bench Press", StartSets: 2, EndSets: 5},
			{Name: "Overhead Press", StartSets: 3, EndSets: 3, IsDropset: true},
		},
		"Pull": {
			{Name: "Barbell Row", StartSets: 2, EndSets: 4},
		},
	}
}

func TestPlanGenerator_plan(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	gen := &planGenerator{
		userID: 1,
		cfg: PlanConfig{
			Name:        "Spring block",
			StartDate:   start,
			DaysPerWeek: 4,
			TotalCycles: 4,
		},
		schedule: testSchedule(),
		deload: DeloadConfig{
			Enabled:  true,
			Duration: 1,
			Weeks: [][]DeloadDaySettings{
				{
					{DayIndex: 0, ReduceSetsPercent: 50, ReduceWeightPercent: 20, ReduceRepsPercent: 10},
					{DayIndex: 2, ReduceSetsPercent: 0, ReduceWeightPercent: 15, ReduceRepsPercent: 0},
				},
			},
		},
		templates: testTemplates(),
		now:       fixedClock,
	}

	meso, intents := gen.plan()

	if meso.TotalWeeks != 5 {
		t.Errorf("TotalWeeks = %d, want 5", meso.TotalWeeks)
	}
	// 4 days per week over 5 weeks minus one day.
	wantEnd := start.AddDate(0, 0, 4*5-1)
	if !meso.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", meso.EndDate, wantEnd)
	}

	// Two lift days per week over 5 weeks.
	if len(intents) != 10 {
		t.Fatalf("got %d workouts, want 10", len(intents))
	}

	// Rest days advance the calendar without emitting workouts.
	first, second := intents[0].workout, intents[1].workout
	if !first.ScheduledDate.Equal(start) {
		t.Errorf("first workout date = %v, want %v", first.ScheduledDate, start)
	}
	if !second.ScheduledDate.Equal(start.AddDate(0, 0, 2)) {
		t.Errorf("second workout date = %v, want %v", second.ScheduledDate, start.AddDate(0, 0, 2))
	}
	if first.DayNumber != 1 || second.DayNumber != 3 {
		t.Errorf("day numbers = %d, %d, want 1, 3", first.DayNumber, second.DayNumber)
	}

	// Deload weeks follow the standard weeks contiguously.
	var weeks []int
	for _, intent := range intents {
		weeks = append(weeks, intent.workout.WeekNumber)
	}
	wantWeeks := []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5}
	for i, want := range wantWeeks {
		if weeks[i] != want {
			t.Fatalf("week sequence = %v, want %v", weeks, wantWeeks)
		}
	}

	// Deload workouts carry the suffix and the deload metadata.
	deload := intents[8]
	if deload.workout.Name != "Push (Deload)" {
		t.Errorf("deload workout name = %q, want %q", deload.workout.Name, "Push (Deload)")
	}
	if !deload.meta.isDeload || deload.meta.deloadSettings == nil {
		t.Fatalf("deload metadata missing: %+v", deload.meta)
	}
	if deload.meta.templateName != "Push" {
		t.Errorf("deload template name = %q, want pre-deload name", deload.meta.templateName)
	}
}

func TestPlanGenerator_exercisesFor_standardInterpolation(t *testing.T) {
	t.Parallel()
	gen := &planGenerator{
		userID:    1,
		cfg:       PlanConfig{Name: "x", StartDate: fixedClock(), DaysPerWeek: 4, TotalCycles: 4},
		schedule:  testSchedule(),
		templates: testTemplates(),
		now:       fixedClock,
	}

	// Bench interpolates 2 → 5 sets over 4 cycles: 2, 3, 4, 5.
	wantSets := []int{2, 3, 4, 5}
	for cycle := 1; cycle <= 4; cycle++ {
		progress := float64(cycle-1) / 3
		exs := gen.exercisesFor(workoutIntent{
			meta: generationMeta{templateName: "Push", progress: progress},
		})
		if len(exs) != 2 {
			t.Fatalf("cycle %d: got %d exercises, want 2", cycle, len(exs))
		}
		bench := exs[0]
		if bench.TargetSets != wantSets[cycle-1] {
			t.Errorf("cycle %d: bench sets = %d, want %d", cycle, bench.TargetSets, wantSets[cycle-1])
		}
		if len(bench.SetResults) != bench.TargetSets {
			t.Errorf("cycle %d: %d set results for %d target sets", cycle, len(bench.SetResults), bench.TargetSets)
		}
		if bench.Notes != nil || bench.Config != nil {
			t.Errorf("cycle %d: standard exercise carries deload data", cycle)
		}
	}

	// Dropset exercises get one empty dropset per set.
	exs := gen.exercisesFor(workoutIntent{meta: generationMeta{templateName: "Push"}})
	ohp := exs[1]
	for i, set := range ohp.SetResults {
		if len(set.Dropsets) != 1 {
			t.Errorf("set %d: %d dropsets, want 1", i, len(set.Dropsets))
		}
	}
	for i, set := range exs[0].SetResults {
		if len(set.Dropsets) != 0 {
			t.Errorf("bench set %d: %d dropsets, want 0", i, len(set.Dropsets))
		}
	}
}

func TestPlanGenerator_exercisesFor_singleCycleUsesStartSets(t *testing.T) {
	t.Parallel()
	gen := &planGenerator{
		userID:    1,
		cfg:       PlanConfig{Name: "x", StartDate: fixedClock(), DaysPerWeek: 4, TotalCycles: 1},
		schedule:  testSchedule(),
		templates: testTemplates(),
		now:       fixedClock,
	}
	_, intents := gen.plan()
	exs := gen.exercisesFor(intents[0])
	if exs[0].TargetSets != 2 {
		t.Errorf("single-cycle sets = %d, want start sets 2", exs[0].TargetSets)
	}
}

func TestPlanGenerator_exercisesFor_deload(t *testing.T) {
	t.Parallel()
	gen := &planGenerator{
		userID:    1,
		cfg:       PlanConfig{Name: "x", StartDate: fixedClock(), DaysPerWeek: 4, TotalCycles: 3},
		schedule:  testSchedule(),
		templates: testTemplates(),
		now:       fixedClock,
	}

	settings := &DeloadDaySettings{DayIndex: 0, ReduceSetsPercent: 50, ReduceWeightPercent: 20, ReduceRepsPercent: 10}
	exs := gen.exercisesFor(workoutIntent{
		meta: generationMeta{templateName: "Push", isDeload: true, deloadSettings: settings},
	})

	// Bench: half of the end volume, 5 * 0.5 = 2.5 rounds to 3.
	if exs[0].TargetSets != 3 {
		t.Errorf("reduced sets = %d, want 3", exs[0].TargetSets)
	}

	// The prescription is persisted regardless of the note.
	for _, ex := range exs {
		if ex.Config == nil || ex.Config.Deload == nil {
			t.Fatalf("exercise %q missing deload config", ex.Name)
		}
		if ex.Config.Deload.ReduceWeightPercent != 20 || ex.Config.Deload.ReduceRepsPercent != 10 {
			t.Errorf("exercise %q prescription = %+v", ex.Name, ex.Config.Deload)
		}
		if ex.Notes == nil {
			t.Fatalf("exercise %q missing deload note", ex.Name)
		}
		if !strings.Contains(ex.Notes.Text, "Weight -20%") || !strings.Contains(ex.Notes.Text, "Reps -10%") {
			t.Errorf("note text = %q", ex.Notes.Text)
		}
		if !ex.Notes.Date.Equal(fixedClock()) {
			t.Errorf("note date = %v, want injected clock", ex.Notes.Date)
		}
	}

	// Zero set reduction falls back to the starting volume.
	noSetCut := &DeloadDaySettings{DayIndex: 0, ReduceWeightPercent: 20}
	exs = gen.exercisesFor(workoutIntent{
		meta: generationMeta{templateName: "Push", isDeload: true, deloadSettings: noSetCut},
	})
	if exs[0].TargetSets != 2 {
		t.Errorf("sets without reduction = %d, want start sets 2", exs[0].TargetSets)
	}

	// Reductions of zero produce no note but still persist the config.
	silent := &DeloadDaySettings{DayIndex: 0, ReduceSetsPercent: 50}
	exs = gen.exercisesFor(workoutIntent{
		meta: generationMeta{templateName: "Push", isDeload: true, deloadSettings: silent},
	})
	if exs[0].Notes != nil {
		t.Errorf("expected no note, got %q", exs[0].Notes.Text)
	}
	if exs[0].Config == nil || exs[0].Config.Deload == nil {
		t.Error("config must be persisted even without a note")
	}
}

func TestPlanGenerator_exercisesFor_missingTemplate(t *testing.T) {
	t.Parallel()
	gen := &planGenerator{
		userID:    1,
		cfg:       PlanConfig{Name: "x", StartDate: fixedClock(), DaysPerWeek: 4, TotalCycles: 2},
		schedule:  testSchedule(),
		templates: map[string][]ExerciseTemplate{},
		now:       fixedClock,
	}
	if exs := gen.exercisesFor(workoutIntent{meta: generationMeta{templateName: "Push"}}); len(exs) != 0 {
		t.Errorf("got %d exercises for missing template, want 0", len(exs))
	}
}

func TestAddDays_dateOnlyRoundTrip(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC)
	end := addDays(start, 7*4-1)
	reparsed, err := time.Parse(time.DateOnly, end.Format(time.DateOnly))
	if err != nil {
		t.Fatalf("reparse end date: %v", err)
	}
	if !reparsed.Equal(end) {
		t.Errorf("end date drifts under reformatting: %v vs %v", end, reparsed)
	}
	if got := end.Format(time.DateOnly); got != "2025-03-26" {
		t.Errorf("end date = %s, want 2025-03-26", got)
	}
}
