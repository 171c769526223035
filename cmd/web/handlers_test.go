package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mvihanto/repcycle/internal/mesocycle"
	"github.com/mvihanto/repcycle/internal/sqlite"
	"github.com/mvihanto/repcycle/internal/testhelpers"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()
	ctx := t.Context()

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	return &application{
		logger:           logger,
		sessionManager:   initializeSessionManager(db),
		mesocycleService: mesocycle.NewService(db, logger, func() time.Time { return now }),
	}
}

func doRequest(t *testing.T, app *application, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

const createPlanBody = `{
	"name": "Spring block",
	"startDate": "2025-03-17",
	"daysPerWeek": 2,
	"totalCycles": 2,
	"schedule": [
		{"type": "lift", "workoutName": "Full Body"},
		{"type": "rest"}
	],
	"deload": {"enabled": false, "duration": 0, "weeks": []},
	"templates": {
		"Full Body": [
			{"name": "Squat", "startSets": 2, "endSets": 3, "isDropset": false}
		]
	}
}`

func Test_healthy(t *testing.T) {
	app := newTestApplication(t)

	rec := doRequest(t, app, http.MethodGet, "/api/healthy", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func Test_mesocycleLifecycle(t *testing.T) {
	app := newTestApplication(t)

	rec := doRequest(t, app, http.MethodPost, "/api/mesocycles", createPlanBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %q", rec.Code, rec.Body.String())
	}
	var created mesocycleJSON
	decodeBody(t, rec, &created)
	if created.ID == 0 || created.TotalWeeks != 2 {
		t.Errorf("created = %+v", created)
	}
	if created.EndDate != "2025-03-20" {
		t.Errorf("EndDate = %q, want 2025-03-20", created.EndDate)
	}

	rec = doRequest(t, app, http.MethodGet, "/api/mesocycles", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []mesocycleJSON
	decodeBody(t, rec, &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("listed = %+v", listed)
	}

	rec = doRequest(t, app, http.MethodGet, "/api/mesocycles/1/calendar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("calendar status = %d", rec.Code)
	}
	var grid [][]*calendarCellJSON
	decodeBody(t, rec, &grid)
	if len(grid) != 2 || len(grid[0]) != 2 {
		t.Fatalf("grid dimensions = %dx%d", len(grid), len(grid[0]))
	}
	if grid[0][0] == nil || grid[0][1] != nil {
		t.Errorf("grid row = %+v", grid[0])
	}

	rec = doRequest(t, app, http.MethodDelete, "/api/mesocycles/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doRequest(t, app, http.MethodDelete, "/api/mesocycles/1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", rec.Code)
	}
}

func Test_workoutFlow(t *testing.T) {
	app := newTestApplication(t)

	if rec := doRequest(t, app, http.MethodPost, "/api/mesocycles", createPlanBody); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %q", rec.Code, rec.Body.String())
	}

	rec := doRequest(t, app, http.MethodGet, "/api/mesocycles/1/calendar", "")
	var grid [][]*calendarCellJSON
	decodeBody(t, rec, &grid)
	workoutPath := fmt.Sprintf("/api/workouts/%d", grid[0][0].ID)

	rec = doRequest(t, app, http.MethodGet, workoutPath, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("open status = %d, body %q", rec.Code, rec.Body.String())
	}
	var opened workoutJSON
	decodeBody(t, rec, &opened)
	if opened.StartedAt == nil {
		t.Errorf("opened = %+v", opened)
	}
	if len(opened.Exercises) != 1 || opened.Exercises[0].Name != "Squat" {
		t.Fatalf("exercises = %+v", opened.Exercises)
	}

	body := `{"sets": [
		{"weight": 100, "reps": 5, "dropsets": []},
		{"weight": 100, "reps": 4, "dropsets": []}
	]}`
	rec = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/exercises/%d/sets", opened.Exercises[0].ID), body)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("save sets status = %d, body %q", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, app, http.MethodPost, workoutPath+"/complete", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("complete status = %d", rec.Code)
	}

	rec = doRequest(t, app, http.MethodGet, workoutPath, "")
	decodeBody(t, rec, &opened)
	if !opened.Completed || opened.CompletedAt == nil {
		t.Errorf("workout not completed: %+v", opened)
	}
	if got := opened.Exercises[0].Sets; len(got) != 2 || got[0].Weight == nil || *got[0].Weight != 100 {
		t.Errorf("saved sets = %+v", got)
	}

	rec = doRequest(t, app, http.MethodGet, "/api/mesocycles/1/recap", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("recap status = %d", rec.Code)
	}
	var recap recapJSON
	decodeBody(t, rec, &recap)
	if recap.TotalVolume != 100*5+100*4 {
		t.Errorf("recap volume = %v", recap.TotalVolume)
	}

	rec = doRequest(t, app, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats lifetimeStatsJSON
	decodeBody(t, rec, &stats)
	if stats.TotalWorkouts != 1 || stats.TotalSets != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func Test_library(t *testing.T) {
	app := newTestApplication(t)

	rec := doRequest(t, app, http.MethodGet, "/api/library", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("library status = %d", rec.Code)
	}
	var library []libraryExerciseJSON
	decodeBody(t, rec, &library)
	if len(library) == 0 {
		t.Fatal("library is empty")
	}
	for _, ex := range library {
		if ex.DescriptionHTML == "" || !strings.Contains(ex.DescriptionHTML, "<") {
			t.Errorf("exercise %q description not rendered: %q", ex.Name, ex.DescriptionHTML)
		}
	}
}

func Test_badRequests(t *testing.T) {
	app := newTestApplication(t)

	if rec := doRequest(t, app, http.MethodPost, "/api/mesocycles", `{"name":`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
	if rec := doRequest(t, app, http.MethodGet, "/api/workouts/notanumber", ""); rec.Code != http.StatusNotFound {
		t.Errorf("bad id status = %d, want 404", rec.Code)
	}
	if rec := doRequest(t, app, http.MethodGet, "/api/workouts/99999", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing workout status = %d, want 404", rec.Code)
	}
	if rec := doRequest(t, app, http.MethodGet, "/api/mesocycles/99999/recap", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing recap status = %d, want 404", rec.Code)
	}
}
