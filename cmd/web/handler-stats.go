package main

import (
	"net/http"

	"github.com/mvihanto/repcycle/internal/errors"
	"github.com/mvihanto/repcycle/internal/mesocycle"
)

type bestSetJSON struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

type muscleStatJSON struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type weekBreakdownJSON struct {
	Week    int            `json:"week"`
	Total   int            `json:"total"`
	Muscles map[string]int `json:"muscles"`
}

type exerciseProgressJSON struct {
	Name        string      `json:"name"`
	Start       bestSetJSON `json:"start"`
	End         bestSetJSON `json:"end"`
	DeltaWeight float64     `json:"deltaWeight"`
	DeltaReps   int         `json:"deltaReps"`
}

type chartBarJSON struct {
	Week  int `json:"week"`
	Count int `json:"count"`
}

type chartJSON struct {
	Bars []chartBarJSON `json:"bars"`
	Max  int            `json:"max"`
}

type recapJSON struct {
	TotalVolume     float64                `json:"totalVolume"`
	MuscleStats     []muscleStatJSON       `json:"muscleStats"`
	WeeklyBreakdown []weekBreakdownJSON    `json:"weeklyBreakdown"`
	Progress        []exerciseProgressJSON `json:"progress"`
	Chart           chartJSON              `json:"chart"`
}

func toMuscleStatsJSON(in []mesocycle.MuscleStat) []muscleStatJSON {
	out := make([]muscleStatJSON, len(in))
	for i, s := range in {
		out[i] = muscleStatJSON{Name: s.Name, Count: s.Count}
	}
	return out
}

func toRecapJSON(recap *mesocycle.Recap, chart mesocycle.ChartData) recapJSON {
	out := recapJSON{
		TotalVolume:     recap.TotalVolume,
		MuscleStats:     toMuscleStatsJSON(recap.MuscleStats),
		WeeklyBreakdown: make([]weekBreakdownJSON, len(recap.WeeklyBreakdown)),
		Progress:        make([]exerciseProgressJSON, len(recap.Progress)),
		Chart:           chartJSON{Bars: make([]chartBarJSON, len(chart.Bars)), Max: chart.Max},
	}
	for i, week := range recap.WeeklyBreakdown {
		out.WeeklyBreakdown[i] = weekBreakdownJSON{Week: week.Week, Total: week.Total, Muscles: week.Muscles}
	}
	for i, p := range recap.Progress {
		out.Progress[i] = exerciseProgressJSON{
			Name:        p.Name,
			Start:       bestSetJSON(p.Start),
			End:         bestSetJSON(p.End),
			DeltaWeight: p.DeltaWeight,
			DeltaReps:   p.DeltaReps,
		}
	}
	for i, bar := range chart.Bars {
		out.Chart.Bars[i] = chartBarJSON(bar)
	}
	return out
}

type personalRecordJSON struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

type lifetimeStatsJSON struct {
	TotalWorkouts   int                  `json:"totalWorkouts"`
	TotalVolume     float64              `json:"totalVolume"`
	TotalSets       int                  `json:"totalSets"`
	DaysActive      int                  `json:"daysActive"`
	MuscleStats     []muscleStatJSON     `json:"muscleStats"`
	PersonalRecords []personalRecordJSON `json:"personalRecords"`
}

func (app *application) statsGET(w http.ResponseWriter, r *http.Request) {
	stats, err := app.mesocycleService.LifetimeStats(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "compute lifetime stats"))
		return
	}
	if stats == nil {
		// Nothing logged yet: an empty but valid summary.
		app.writeJSON(w, r, http.StatusOK, lifetimeStatsJSON{
			MuscleStats:     []muscleStatJSON{},
			PersonalRecords: []personalRecordJSON{},
		})
		return
	}

	out := lifetimeStatsJSON{
		TotalWorkouts:   stats.TotalWorkouts,
		TotalVolume:     stats.TotalVolume,
		TotalSets:       stats.TotalSets,
		DaysActive:      stats.DaysActive,
		MuscleStats:     toMuscleStatsJSON(stats.MuscleStats),
		PersonalRecords: make([]personalRecordJSON, len(stats.PersonalRecords)),
	}
	for i, pr := range stats.PersonalRecords {
		out.PersonalRecords[i] = personalRecordJSON(pr)
	}
	app.writeJSON(w, r, http.StatusOK, out)
}
