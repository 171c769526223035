package main

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mvihanto/repcycle/internal/errors"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type libraryExerciseJSON struct {
	Name            string `json:"name"`
	MuscleGroup     string `json:"muscleGroup"`
	DescriptionHTML string `json:"descriptionHtml"`
}

func (app *application) libraryGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.mesocycleService.Library(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list library"))
		return
	}

	out := make([]libraryExerciseJSON, len(exercises))
	for i, ex := range exercises {
		var buf bytes.Buffer
		if err = markdown.Convert([]byte(ex.DescriptionMarkdown), &buf); err != nil {
			// A broken description should not take down the whole list.
			app.logger.LogAttrs(r.Context(), slog.LevelWarn, "render exercise description",
				slog.String("exercise", ex.Name), slog.Any("error", err))
		}
		out[i] = libraryExerciseJSON{
			Name:            ex.Name,
			MuscleGroup:     ex.MuscleGroup,
			DescriptionHTML: buf.String(),
		}
	}
	app.writeJSON(w, r, http.StatusOK, out)
}
