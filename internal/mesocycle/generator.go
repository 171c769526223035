package mesocycle

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// generationMeta carries the per-workout context the generator needs when it
// later expands exercise templates into concrete set targets.
type generationMeta struct {
	templateName   string
	progress       float64
	isDeload       bool
	deloadSettings *DeloadDaySettings
}

// workoutIntent pairs a workout to be persisted with its generation metadata
// so that workouts and their exercises are built in a single aligned pass.
type workoutIntent struct {
	workout Workout
	meta    generationMeta
}

// planGenerator expands a compact schedule and deload configuration into the
// full, dated workout calendar of a mesocycle.
type planGenerator struct {
	userID    int64
	cfg       PlanConfig
	schedule  []ScheduleDay
	deload    DeloadConfig
	templates map[string][]ExerciseTemplate
	now       func() time.Time
}

// plan produces the mesocycle header and the ordered workout intents.
// The date cursor advances one day per schedule slot, rest days included,
// but only lift days emit a workout.
func (g *planGenerator) plan() (Mesocycle, []workoutIntent) {
	totalWeeks := g.cfg.TotalCycles
	if g.deload.Enabled {
		totalWeeks += g.deload.Duration
	}

	meso := Mesocycle{
		UserID:      g.userID,
		Name:        g.cfg.Name,
		StartDate:   g.cfg.StartDate,
		EndDate:     addDays(g.cfg.StartDate, g.cfg.DaysPerWeek*totalWeeks-1),
		DaysPerWeek: g.cfg.DaysPerWeek,
		TotalWeeks:  totalWeeks,
	}

	var intents []workoutIntent
	cursor := g.cfg.StartDate

	// Standard block: set counts interpolate linearly from start to end
	// across the cycles.
	for cycle := 1; cycle <= g.cfg.TotalCycles; cycle++ {
		progress := float64(cycle-1) / float64(max(g.cfg.TotalCycles-1, 1))
		for day := 0; day < g.cfg.DaysPerWeek; day++ {
			if plan := g.schedule[day]; plan.Type == DayTypeLift && plan.WorkoutName != "" {
				intents = append(intents, workoutIntent{
					workout: Workout{
						UserID:        g.userID,
						Name:          plan.WorkoutName,
						ScheduledDate: cursor,
						WeekNumber:    cycle,
						DayNumber:     day + 1,
					},
					meta: generationMeta{
						templateName: plan.WorkoutName,
						progress:     progress,
					},
				})
			}
			cursor = addDays(cursor, 1)
		}
	}

	// Deload block: week numbers continue where the standard block ended.
	if g.deload.Enabled {
		for d := 0; d < g.deload.Duration; d++ {
			week := g.cfg.TotalCycles + d + 1
			weekSettings := g.deload.Weeks[d]
			for day := 0; day < g.cfg.DaysPerWeek; day++ {
				if plan := g.schedule[day]; plan.Type == DayTypeLift && plan.WorkoutName != "" {
					intents = append(intents, workoutIntent{
						workout: Workout{
							UserID:        g.userID,
							Name:          plan.WorkoutName + " (Deload)",
							ScheduledDate: cursor,
							WeekNumber:    week,
							DayNumber:     day + 1,
						},
						meta: generationMeta{
							templateName:   plan.WorkoutName,
							isDeload:       true,
							deloadSettings: daySettings(weekSettings, day),
						},
					})
				}
				cursor = addDays(cursor, 1)
			}
		}
	}

	return meso, intents
}

// exercisesFor expands the workout's template into exercise rows. The
// WorkoutID is left zero; the caller fills it in after the workout has been
// persisted. Workouts whose template is missing yield no exercises.
func (g *planGenerator) exercisesFor(intent workoutIntent) []Exercise {
	template := g.templates[intent.meta.templateName]
	exercises := make([]Exercise, 0, len(template))
	for i, tmpl := range template {
		sets := setCountFor(intent.meta, tmpl)

		var (
			note   *Note
			config *ExerciseConfig
		)
		if intent.meta.isDeload && intent.meta.deloadSettings != nil {
			s := intent.meta.deloadSettings
			note = deloadNote(*s, g.now())
			config = &ExerciseConfig{Deload: &DeloadPrescription{
				ReduceWeightPercent: s.ReduceWeightPercent,
				ReduceRepsPercent:   s.ReduceRepsPercent,
			}}
		}

		exercises = append(exercises, Exercise{
			Name:       tmpl.Name,
			TargetSets: sets,
			SortOrder:  i,
			Notes:      note,
			Config:     config,
			SetResults: initialSetResults(sets, tmpl.IsDropset),
		})
	}
	return exercises
}

// setCountFor applies the set-count policy: percentage reduction of the end
// volume on deload weeks, linear interpolation on standard weeks.
func setCountFor(meta generationMeta, tmpl ExerciseTemplate) int {
	if meta.isDeload && meta.deloadSettings != nil {
		if pct := meta.deloadSettings.ReduceSetsPercent; pct > 0 {
			reduced := float64(tmpl.EndSets) * float64(100-pct) / 100
			return max(1, int(math.Round(reduced)))
		}
		return tmpl.StartSets
	}
	diff := float64(tmpl.EndSets - tmpl.StartSets)
	return int(math.Round(float64(tmpl.StartSets) + diff*meta.progress))
}

// deloadNote synthesizes the reduction summary attached to deload exercises.
// Returns nil when neither reduction is active.
func deloadNote(s DeloadDaySettings, at time.Time) *Note {
	var parts []string
	if s.ReduceWeightPercent > 0 {
		parts = append(parts, fmt.Sprintf("Weight -%d%%", s.ReduceWeightPercent))
	}
	if s.ReduceRepsPercent > 0 {
		parts = append(parts, fmt.Sprintf("Reps -%d%%", s.ReduceRepsPercent))
	}
	if len(parts) == 0 {
		return nil
	}
	return &Note{Text: "Deload targets:\n• " + strings.Join(parts, "\n• "), Date: at}
}

// initialSetResults builds the empty set placeholders for a fresh exercise.
// Dropset exercises get a single empty dropset per set so that the UI renders
// the extra input row.
func initialSetResults(count int, isDropset bool) []SetResult {
	results := make([]SetResult, count)
	for i := range results {
		results[i] = SetResult{Dropsets: []Dropset{}}
		if isDropset {
			results[i].Dropsets = []Dropset{{}}
		}
	}
	return results
}

// daySettings finds the deload settings matching a 0-based schedule day.
func daySettings(settings []DeloadDaySettings, dayIndex int) *DeloadDaySettings {
	for i := range settings {
		if settings[i].DayIndex == dayIndex {
			return &settings[i]
		}
	}
	return nil
}

// addDays advances a date by whole days without touching the time component.
func addDays(date time.Time, days int) time.Time {
	return date.AddDate(0, 0, days)
}
