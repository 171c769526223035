package main

import (
	"net/http"
	"time"

	"github.com/mvihanto/repcycle/internal/errors"
	"github.com/mvihanto/repcycle/internal/mesocycle"
)

type dropsetJSON struct {
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps"`
}

type assembledSetJSON struct {
	Weight          *float64      `json:"weight"`
	Reps            *int          `json:"reps"`
	Dropsets        []dropsetJSON `json:"dropsets"`
	SuggestedWeight *float64      `json:"suggestedWeight,omitempty"`
	SuggestedReps   *int          `json:"suggestedReps,omitempty"`
	HasSuggestion   bool          `json:"hasSuggestion"`
	HitWeight       bool          `json:"hitWeight"`
	HitReps         bool          `json:"hitReps"`
}

type noteEntryJSON struct {
	Week int    `json:"week"`
	Text string `json:"text"`
	Date string `json:"date"`
}

type assembledExerciseJSON struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	TargetSets  int                `json:"targetSets"`
	SortOrder   int                `json:"sortOrder"`
	Sets        []assembledSetJSON `json:"sets"`
	CurrentNote string             `json:"currentNote,omitempty"`
	NoteHistory []noteEntryJSON    `json:"noteHistory,omitempty"`
}

type workoutJSON struct {
	ID            int64                   `json:"id"`
	MesocycleID   int64                   `json:"mesocycleId"`
	Name          string                  `json:"name"`
	ScheduledDate string                  `json:"scheduledDate"`
	WeekNumber    int                     `json:"weekNumber"`
	DayNumber     int                     `json:"dayNumber"`
	Completed     bool                    `json:"completed"`
	StartedAt     *time.Time              `json:"startedAt,omitempty"`
	CompletedAt   *time.Time              `json:"completedAt,omitempty"`
	Exercises     []assembledExerciseJSON `json:"exercises"`
}

func toDropsetsJSON(in []mesocycle.Dropset) []dropsetJSON {
	out := make([]dropsetJSON, len(in))
	for i, d := range in {
		out[i] = dropsetJSON{Weight: d.Weight, Reps: d.Reps}
	}
	return out
}

func toWorkoutJSON(workout mesocycle.Workout, exercises []mesocycle.AssembledExercise) workoutJSON {
	out := workoutJSON{
		ID:            workout.ID,
		MesocycleID:   workout.MesocycleID,
		Name:          workout.Name,
		ScheduledDate: workout.ScheduledDate.Format(time.DateOnly),
		WeekNumber:    workout.WeekNumber,
		DayNumber:     workout.DayNumber,
		Completed:     workout.Completed,
		Exercises:     make([]assembledExerciseJSON, len(exercises)),
	}
	if !workout.StartedAt.IsZero() {
		out.StartedAt = &workout.StartedAt
	}
	if !workout.CompletedAt.IsZero() {
		out.CompletedAt = &workout.CompletedAt
	}

	for i, ex := range exercises {
		sets := make([]assembledSetJSON, len(ex.Sets))
		for j, set := range ex.Sets {
			sets[j] = assembledSetJSON{
				Weight:          set.Weight,
				Reps:            set.Reps,
				Dropsets:        toDropsetsJSON(set.Dropsets),
				SuggestedWeight: set.SuggestedWeight,
				SuggestedReps:   set.SuggestedReps,
				HasSuggestion:   set.HasSuggestion,
				HitWeight:       set.HitWeight,
				HitReps:         set.HitReps,
			}
		}
		notes := make([]noteEntryJSON, len(ex.NoteHistory))
		for j, entry := range ex.NoteHistory {
			notes[j] = noteEntryJSON{Week: entry.Week, Text: entry.Text, Date: entry.Date.Format(time.RFC3339)}
		}
		out.Exercises[i] = assembledExerciseJSON{
			ID:          ex.ID,
			Name:        ex.Name,
			TargetSets:  ex.TargetSets,
			SortOrder:   ex.SortOrder,
			Sets:        sets,
			CurrentNote: ex.CurrentNote,
			NoteHistory: notes,
		}
	}
	return out
}

func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	workout, exercises, err := app.mesocycleService.OpenWorkout(r.Context(), id)
	if err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "open workout"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, toWorkoutJSON(workout, exercises))
}

func (app *application) workoutCompletePOST(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := app.mesocycleService.CompleteWorkout(r.Context(), id); err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "complete workout"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}

type addExerciseRequest struct {
	Name       string `json:"name"`
	TargetSets int    `json:"targetSets"`
	OrderIndex int    `json:"orderIndex"`
}

func (app *application) workoutAddExercisePOST(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	var req addExerciseRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.TargetSets < 1 {
		app.clientError(w, r, http.StatusBadRequest, "name and a positive targetSets are required")
		return
	}
	ex, err := app.mesocycleService.AddExercise(r.Context(), id, req.Name, req.TargetSets, req.OrderIndex)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "add exercise"))
		return
	}
	app.writeJSON(w, r, http.StatusCreated, map[string]int64{"id": ex.ID})
}

type reorderRequest struct {
	ExerciseIDs []int64 `json:"exerciseIds"`
}

func (app *application) workoutReorderPOST(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.parseIDParam(w, r); !ok {
		return
	}
	var req reorderRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	if err := app.mesocycleService.ReorderExercises(r.Context(), req.ExerciseIDs); err != nil {
		app.serverError(w, r, errors.Wrap(err, "reorder exercises"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}

type propagateRequest struct {
	Name       string `json:"name"`
	TargetSets int    `json:"targetSets"`
}

func (app *application) workoutPropagatePOST(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	var req propagateRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.TargetSets < 1 {
		app.clientError(w, r, http.StatusBadRequest, "name and a positive targetSets are required")
		return
	}
	if err := app.mesocycleService.PropagateExercise(r.Context(), id, req.Name, req.TargetSets); err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "propagate exercise"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}
