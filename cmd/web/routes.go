package main

import "net/http"

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		base = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(app.timeout(next))))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.authenticateSession(base(next)))))
		}
	)

	mux.Handle("POST /api/mesocycles", session(http.HandlerFunc(app.mesocycleCreatePOST)))
	mux.Handle("GET /api/mesocycles", session(http.HandlerFunc(app.mesocyclesGET)))
	mux.Handle("DELETE /api/mesocycles/{id}", session(http.HandlerFunc(app.mesocycleDELETE)))
	mux.Handle("GET /api/mesocycles/{id}/recap", session(http.HandlerFunc(app.mesocycleRecapGET)))
	mux.Handle("GET /api/mesocycles/{id}/calendar", session(http.HandlerFunc(app.mesocycleCalendarGET)))
	mux.Handle("GET /api/mesocycles/{id}/templates", session(http.HandlerFunc(app.mesocycleTemplatesGET)))
	mux.Handle("POST /api/mesocycles/{id}/templates", session(http.HandlerFunc(app.mesocycleTemplatesPOST)))

	mux.Handle("GET /api/workouts/{id}", session(http.HandlerFunc(app.workoutGET)))
	mux.Handle("POST /api/workouts/{id}/complete", session(http.HandlerFunc(app.workoutCompletePOST)))
	mux.Handle("POST /api/workouts/{id}/exercises", session(http.HandlerFunc(app.workoutAddExercisePOST)))
	mux.Handle("POST /api/workouts/{id}/exercises/reorder", session(http.HandlerFunc(app.workoutReorderPOST)))
	mux.Handle("POST /api/workouts/{id}/exercises/propagate", session(http.HandlerFunc(app.workoutPropagatePOST)))

	mux.Handle("POST /api/exercises/{id}/sets", session(http.HandlerFunc(app.exerciseSetsPOST)))
	mux.Handle("DELETE /api/exercises/{id}/sets/{index}", session(http.HandlerFunc(app.exerciseSetDELETE)))
	mux.Handle("POST /api/exercises/{id}/note", session(http.HandlerFunc(app.exerciseNotePOST)))
	mux.Handle("DELETE /api/exercises/{id}", session(http.HandlerFunc(app.exerciseDELETE)))

	mux.Handle("GET /api/stats", session(http.HandlerFunc(app.statsGET)))
	mux.Handle("GET /api/library", session(http.HandlerFunc(app.libraryGET)))
	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	return mux
}
