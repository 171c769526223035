package mesocycle

import (
	"math"
	"sort"
	"time"
)

// fallbackMuscleGroup is used for exercises missing from the library.
const fallbackMuscleGroup = "Other"

// computeRecap summarises the performed sets of a mesocycle: total volume,
// per-muscle set counts, a per-week breakdown, and first-versus-last best-set
// progress per exercise. A set counts once reps were recorded; volume only
// accumulates when weight was recorded too.
func computeRecap(
	meso Mesocycle,
	weekByWorkoutID map[int64]int,
	exercises []Exercise,
	muscleByName map[string]string,
) *Recap {
	type bestSetAt struct {
		week int
		best BestSet
	}

	var totalVolume float64
	muscleCounts := map[string]int{}
	weekly := map[int]*WeekBreakdown{}
	historyByExercise := map[string][]bestSetAt{}

	for week := 1; week <= meso.TotalWeeks; week++ {
		weekly[week] = &WeekBreakdown{Week: week, Muscles: map[string]int{}}
	}

	for _, ex := range exercises {
		week := weekByWorkoutID[ex.WorkoutID]
		muscle := muscleGroupFor(ex.Name, muscleByName)
		if weekly[week] == nil {
			weekly[week] = &WeekBreakdown{Week: week, Muscles: map[string]int{}}
		}

		validSets := 0
		var best BestSet
		for _, s := range ex.SetResults {
			reps := intValue(s.Reps)
			weight := floatValue(s.Weight)
			if reps <= 0 {
				continue
			}
			validSets++
			if weight > 0 {
				totalVolume += weight * float64(reps)
			}
			if weight > best.Weight || (weight == best.Weight && reps > best.Reps) {
				best = BestSet{Weight: weight, Reps: reps}
			}
		}

		if validSets > 0 {
			muscleCounts[muscle] += validSets
			weekly[week].Total += validSets
			weekly[week].Muscles[muscle] += validSets
			historyByExercise[ex.Name] = append(historyByExercise[ex.Name], bestSetAt{week: week, best: best})
		}
	}

	var progress []ExerciseProgress
	for name, hist := range historyByExercise {
		sort.SliceStable(hist, func(i, j int) bool { return hist[i].week < hist[j].week })
		if len(hist) < 2 {
			continue
		}
		start, end := hist[0].best, hist[len(hist)-1].best
		progress = append(progress, ExerciseProgress{
			Name:        name,
			Start:       start,
			End:         end,
			DeltaWeight: end.Weight - start.Weight,
			DeltaReps:   end.Reps - start.Reps,
		})
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].Name < progress[j].Name })

	breakdown := make([]WeekBreakdown, 0, len(weekly))
	for _, wb := range weekly {
		breakdown = append(breakdown, *wb)
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Week < breakdown[j].Week })

	return &Recap{
		TotalVolume:     totalVolume,
		MuscleStats:     sortedMuscleStats(muscleCounts),
		WeeklyBreakdown: breakdown,
		Progress:        progress,
	}
}

// computeLifetimeStats aggregates across all completed workouts. Only sets
// with both weight and reps recorded count here.
func computeLifetimeStats(
	workouts []Workout,
	exercises []Exercise,
	muscleByName map[string]string,
	now time.Time,
) *LifetimeStats {
	if len(workouts) == 0 {
		return nil
	}

	first := workouts[0].CompletedAt
	for _, w := range workouts[1:] {
		if w.CompletedAt.Before(first) {
			first = w.CompletedAt
		}
	}
	daysActive := int(math.Ceil(now.Sub(first).Hours() / 24))

	var (
		totalVolume float64
		totalSets   int
	)
	muscleCounts := map[string]int{}
	records := map[string]BestSet{}

	for _, ex := range exercises {
		muscle := muscleGroupFor(ex.Name, muscleByName)
		validSets := 0
		for _, s := range ex.SetResults {
			reps := intValue(s.Reps)
			weight := floatValue(s.Weight)
			if reps <= 0 || weight <= 0 {
				continue
			}
			validSets++
			totalVolume += weight * float64(reps)

			pr, ok := records[ex.Name]
			if !ok || weight > pr.Weight || (weight == pr.Weight && reps > pr.Reps) {
				records[ex.Name] = BestSet{Weight: weight, Reps: reps}
			}
		}
		if validSets > 0 {
			totalSets += validSets
			muscleCounts[muscle] += validSets
		}
	}

	prs := make([]PersonalRecord, 0, len(records))
	for name, best := range records {
		prs = append(prs, PersonalRecord{Name: name, Weight: best.Weight, Reps: best.Reps})
	}
	sort.Slice(prs, func(i, j int) bool { return prs[i].Name < prs[j].Name })

	return &LifetimeStats{
		TotalWorkouts:   len(workouts),
		TotalVolume:     totalVolume,
		TotalSets:       totalSets,
		DaysActive:      daysActive,
		MuscleStats:     sortedMuscleStats(muscleCounts),
		PersonalRecords: prs,
	}
}

// WeeklyChartData shapes a recap's weekly breakdown into chart bars for a
// muscle filter. The filter "All" selects the weekly totals. Max defaults to
// 10 so an empty chart still has a sensible axis.
func WeeklyChartData(recap *Recap, filter string) ChartData {
	if recap == nil || len(recap.WeeklyBreakdown) == 0 {
		return ChartData{Bars: []ChartBar{}, Max: 10}
	}
	bars := make([]ChartBar, len(recap.WeeklyBreakdown))
	maxCount := 0
	for i, w := range recap.WeeklyBreakdown {
		count := w.Total
		if filter != "All" {
			count = w.Muscles[filter]
		}
		bars[i] = ChartBar{Week: w.Week, Count: count}
		if count > maxCount {
			maxCount = count
		}
	}
	if maxCount == 0 {
		maxCount = 10
	}
	return ChartData{Bars: bars, Max: maxCount}
}

// buildCalendarGrid arranges the flat workout list into a week×day grid.
// Cells without a workout (rest days) stay nil.
func buildCalendarGrid(workouts []Workout, totalWeeks, daysPerWeek int) [][]*Workout {
	grid := make([][]*Workout, totalWeeks)
	for i := range grid {
		grid[i] = make([]*Workout, daysPerWeek)
	}
	for i := range workouts {
		w := &workouts[i]
		weekIdx, dayIdx := w.WeekNumber-1, w.DayNumber-1
		if weekIdx >= 0 && weekIdx < totalWeeks && dayIdx >= 0 && dayIdx < daysPerWeek {
			grid[weekIdx][dayIdx] = w
		}
	}
	return grid
}

func muscleGroupFor(exerciseName string, muscleByName map[string]string) string {
	if muscle, ok := muscleByName[exerciseName]; ok {
		return muscle
	}
	return fallbackMuscleGroup
}

func sortedMuscleStats(counts map[string]int) []MuscleStat {
	stats := make([]MuscleStat, 0, len(counts))
	for name, count := range counts {
		stats = append(stats, MuscleStat{Name: name, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func floatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
