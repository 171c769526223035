package main

import (
	"net/http"
	"time"

	"github.com/mvihanto/repcycle/internal/errors"
	"github.com/mvihanto/repcycle/internal/mesocycle"
)

type mesocycleJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	DaysPerWeek int    `json:"daysPerWeek"`
	TotalWeeks  int    `json:"totalWeeks"`
}

func toMesocycleJSON(m mesocycle.Mesocycle) mesocycleJSON {
	return mesocycleJSON{
		ID:          m.ID,
		Name:        m.Name,
		StartDate:   m.StartDate.Format(time.DateOnly),
		EndDate:     m.EndDate.Format(time.DateOnly),
		DaysPerWeek: m.DaysPerWeek,
		TotalWeeks:  m.TotalWeeks,
	}
}

type scheduleDayJSON struct {
	Type        string `json:"type"`
	WorkoutName string `json:"workoutName,omitempty"`
}

type deloadDayJSON struct {
	DayIndex            int `json:"dayIndex"`
	ReduceSetsPercent   int `json:"reduceSetsPercent"`
	ReduceWeightPercent int `json:"reduceWeightPercent"`
	ReduceRepsPercent   int `json:"reduceRepsPercent"`
}

type exerciseTemplateJSON struct {
	Name      string `json:"name"`
	StartSets int    `json:"startSets"`
	EndSets   int    `json:"endSets"`
	IsDropset bool   `json:"isDropset"`
}

type createMesocycleRequest struct {
	Name        string            `json:"name"`
	StartDate   string            `json:"startDate"`
	DaysPerWeek int               `json:"daysPerWeek"`
	TotalCycles int               `json:"totalCycles"`
	Schedule    []scheduleDayJSON `json:"schedule"`
	Deload      struct {
		Enabled  bool              `json:"enabled"`
		Duration int               `json:"duration"`
		Weeks    [][]deloadDayJSON `json:"weeks"`
	} `json:"deload"`
	Templates map[string][]exerciseTemplateJSON `json:"templates"`
}

func toTemplates(in map[string][]exerciseTemplateJSON) map[string][]mesocycle.ExerciseTemplate {
	templates := make(map[string][]mesocycle.ExerciseTemplate, len(in))
	for name, list := range in {
		converted := make([]mesocycle.ExerciseTemplate, len(list))
		for i, tmpl := range list {
			converted[i] = mesocycle.ExerciseTemplate{
				Name:      tmpl.Name,
				StartSets: tmpl.StartSets,
				EndSets:   tmpl.EndSets,
				IsDropset: tmpl.IsDropset,
			}
		}
		templates[name] = converted
	}
	return templates
}

func fromTemplates(in map[string][]mesocycle.ExerciseTemplate) map[string][]exerciseTemplateJSON {
	templates := make(map[string][]exerciseTemplateJSON, len(in))
	for name, list := range in {
		converted := make([]exerciseTemplateJSON, len(list))
		for i, tmpl := range list {
			converted[i] = exerciseTemplateJSON{
				Name:      tmpl.Name,
				StartSets: tmpl.StartSets,
				EndSets:   tmpl.EndSets,
				IsDropset: tmpl.IsDropset,
			}
		}
		templates[name] = converted
	}
	return templates
}

func (app *application) mesocycleCreatePOST(w http.ResponseWriter, r *http.Request) {
	var req createMesocycleRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "startDate must be formatted as 2006-01-02")
		return
	}

	schedule := make([]mesocycle.ScheduleDay, len(req.Schedule))
	for i, day := range req.Schedule {
		switch day.Type {
		case string(mesocycle.DayTypeLift), string(mesocycle.DayTypeRest):
		default:
			app.clientError(w, r, http.StatusBadRequest, "schedule day type must be lift or rest")
			return
		}
		schedule[i] = mesocycle.ScheduleDay{
			Type:        mesocycle.DayType(day.Type),
			WorkoutName: day.WorkoutName,
		}
	}

	deload := mesocycle.DeloadConfig{
		Enabled:  req.Deload.Enabled,
		Duration: req.Deload.Duration,
		Weeks:    make([][]mesocycle.DeloadDaySettings, len(req.Deload.Weeks)),
	}
	for i, week := range req.Deload.Weeks {
		settings := make([]mesocycle.DeloadDaySettings, len(week))
		for j, day := range week {
			settings[j] = mesocycle.DeloadDaySettings{
				DayIndex:            day.DayIndex,
				ReduceSetsPercent:   day.ReduceSetsPercent,
				ReduceWeightPercent: day.ReduceWeightPercent,
				ReduceRepsPercent:   day.ReduceRepsPercent,
			}
		}
		deload.Weeks[i] = settings
	}

	meso, err := app.mesocycleService.CreatePlan(r.Context(), mesocycle.PlanConfig{
		Name:        req.Name,
		StartDate:   startDate,
		DaysPerWeek: req.DaysPerWeek,
		TotalCycles: req.TotalCycles,
	}, schedule, deload, toTemplates(req.Templates))
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "create plan"))
		return
	}

	app.writeJSON(w, r, http.StatusCreated, toMesocycleJSON(meso))
}

func (app *application) mesocyclesGET(w http.ResponseWriter, r *http.Request) {
	mesocycles, err := app.mesocycleService.Mesocycles(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list mesocycles"))
		return
	}
	out := make([]mesocycleJSON, len(mesocycles))
	for i, m := range mesocycles {
		out[i] = toMesocycleJSON(m)
	}
	app.writeJSON(w, r, http.StatusOK, out)
}

func (app *application) mesocycleDELETE(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := app.mesocycleService.DeleteMesocycle(r.Context(), id); err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "delete mesocycle"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}

type calendarCellJSON struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ScheduledDate string `json:"scheduledDate"`
	WeekNumber    int    `json:"weekNumber"`
	DayNumber     int    `json:"dayNumber"`
	Completed     bool   `json:"completed"`
}

func (app *application) mesocycleCalendarGET(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	grid, err := app.mesocycleService.CalendarGrid(r.Context(), id)
	if err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "load calendar"))
		return
	}

	out := make([][]*calendarCellJSON, len(grid))
	for week, row := range grid {
		out[week] = make([]*calendarCellJSON, len(row))
		for day, workout := range row {
			if workout == nil {
				continue
			}
			out[week][day] = &calendarCellJSON{
				ID:            workout.ID,
				Name:          workout.Name,
				ScheduledDate: workout.ScheduledDate.Format(time.DateOnly),
				WeekNumber:    workout.WeekNumber,
				DayNumber:     workout.DayNumber,
				Completed:     workout.Completed,
			}
		}
	}
	app.writeJSON(w, r, http.StatusOK, out)
}

func (app *application) mesocycleRecapGET(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	recap, err := app.mesocycleService.Recap(r.Context(), id)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "compute recap"))
		return
	}
	if recap == nil {
		http.NotFound(w, r)
		return
	}
	muscle := r.URL.Query().Get("muscle")
	if muscle == "" {
		muscle = "All"
	}
	app.writeJSON(w, r, http.StatusOK, toRecapJSON(recap, mesocycle.WeeklyChartData(recap, muscle)))
}

func (app *application) mesocycleTemplatesGET(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	templates, err := app.mesocycleService.PlanTemplates(r.Context(), id)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "derive templates"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, fromTemplates(templates))
}

func (app *application) mesocycleTemplatesPOST(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	var req map[string][]exerciseTemplateJSON
	if !app.readJSON(w, r, &req) {
		return
	}
	if err := app.mesocycleService.RebuildFutureWorkouts(r.Context(), id, toTemplates(req)); err != nil {
		app.serverError(w, r, errors.Wrap(err, "rebuild future workouts"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}
