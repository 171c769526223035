package main

import (
	"net/http"
	"strconv"

	"github.com/mvihanto/repcycle/internal/errors"
	"github.com/mvihanto/repcycle/internal/mesocycle"
)

type setSaveJSON struct {
	Weight          *float64      `json:"weight"`
	Reps            *int          `json:"reps"`
	Dropsets        []dropsetJSON `json:"dropsets"`
	SuggestedWeight *float64      `json:"suggestedWeight"`
	SuggestedReps   *int          `json:"suggestedReps"`
}

type saveSetsRequest struct {
	Sets []setSaveJSON `json:"sets"`
}

func (app *application) exerciseSetsPOST(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	var req saveSetsRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	sets := make([]mesocycle.SetSave, len(req.Sets))
	for i, set := range req.Sets {
		dropsets := make([]mesocycle.Dropset, len(set.Dropsets))
		for j, d := range set.Dropsets {
			dropsets[j] = mesocycle.Dropset{Weight: d.Weight, Reps: d.Reps}
		}
		sets[i] = mesocycle.SetSave{
			Weight:          set.Weight,
			Reps:            set.Reps,
			Dropsets:        dropsets,
			SuggestedWeight: set.SuggestedWeight,
			SuggestedReps:   set.SuggestedReps,
		}
	}

	if err := app.mesocycleService.SaveSets(r.Context(), id, sets); err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "save sets"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}

func (app *application) exerciseSetDELETE(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		http.NotFound(w, r)
		return
	}
	if err = app.mesocycleService.DeleteSet(r.Context(), id, index); err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "delete set"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}

type saveNoteRequest struct {
	Text string `json:"text"`
}

func (app *application) exerciseNotePOST(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	var req saveNoteRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	if err := app.mesocycleService.SaveNote(r.Context(), id, req.Text); err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "save note"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}

func (app *application) exerciseDELETE(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}
	if err := app.mesocycleService.DeleteExercise(r.Context(), id); err != nil {
		if errors.Is(err, mesocycle.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "delete exercise"))
		return
	}
	app.writeJSON(w, r, http.StatusNoContent, nil)
}
