package mesocycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mvihanto/repcycle/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"
const dateFormat = time.DateOnly

// ErrNotFound is returned when a requested entity is not found.
var ErrNotFound = errors.New("not found")

// repository contains the repositories for the mesocycle domain aggregates.
type repository struct {
	mesocycles mesocycleRepository
	workouts   workoutRepository
	exercises  exerciseRepository
	library    libraryRepository
}

// mesocycleRepository handles mesocycle persistence.
type mesocycleRepository interface {
	Create(ctx context.Context, meso Mesocycle) (Mesocycle, error)
	Get(ctx context.Context, id int64) (Mesocycle, error)
	List(ctx context.Context) ([]Mesocycle, error)
	Delete(ctx context.Context, id int64) error
}

// workoutRepository handles workout persistence.
type workoutRepository interface {
	CreateBatch(ctx context.Context, workouts []Workout) ([]Workout, error)
	Get(ctx context.Context, id int64) (Workout, error)
	ListByMesocycle(ctx context.Context, mesocycleID int64) ([]Workout, error)
	ListIncompleteByMesocycle(ctx context.Context, mesocycleID int64) ([]Workout, error)
	ListFuture(ctx context.Context, mesocycleID int64, dayNumber, afterWeek int) ([]Workout, error)
	ListCompleted(ctx context.Context) ([]Workout, error)
	MarkStarted(ctx context.Context, id int64, at time.Time) error
	MarkCompleted(ctx context.Context, id int64, at time.Time) error
}

// exerciseRepository handles workout exercise persistence.
type exerciseRepository interface {
	Create(ctx context.Context, ex Exercise) (Exercise, error)
	CreateBatch(ctx context.Context, exercises []Exercise) error
	Get(ctx context.Context, id int64) (Exercise, error)
	ListByWorkout(ctx context.Context, workoutID int64) ([]Exercise, error)
	ListByWorkouts(ctx context.Context, workoutIDs []int64) ([]Exercise, error)
	Update(ctx context.Context, id int64, updateFn func(*Exercise) (bool, error)) error
	UpdateSortOrder(ctx context.Context, id int64, sortOrder int) error
	Delete(ctx context.Context, id int64) error
	DeleteByWorkouts(ctx context.Context, workoutIDs []int64) error
	MaxSortOrder(ctx context.Context, workoutID int64) (int, error)
	LatestCompletedResults(ctx context.Context, names []string, excludeWorkoutID int64) (map[string][]SetResult, error)
	NotesByMesocycle(ctx context.Context, names []string, mesocycleID, excludeWorkoutID int64) (map[string][]NoteEntry, error)
}

// libraryRepository reads the exercise library.
type libraryRepository interface {
	List(ctx context.Context) ([]LibraryExercise, error)
	MuscleGroups(ctx context.Context) (map[string]string, error)
}

// repositoryFactory creates repository instances.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newRepositoryFactory creates a new repository factory.
func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

// newRepository creates a new repository aggregate.
func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		mesocycles: newMesocycleRepository(f.db, f.logger),
		workouts:   newWorkoutRepository(f.db, f.logger),
		exercises:  newExerciseRepository(f.db, f.logger),
		library:    newLibraryRepository(f.db, f.logger),
	}
}

// formatDate renders a date-only column value.
func formatDate(date time.Time) string {
	return date.Format(dateFormat)
}

// parseDate parses a date-only column value.
func parseDate(dateStr string) (time.Time, error) {
	date, err := time.Parse(dateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return date, nil
}

// formatTimestamp renders a nullable timestamp column value. The zero time
// maps to NULL.
func formatTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timestampFormat)
}

// parseTimestamp parses a nullable timestamp column value. NULL maps to the
// zero time.
func parseTimestamp(timestampStr sql.NullString) (time.Time, error) {
	if !timestampStr.Valid {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(timestampFormat, timestampStr.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp format: %w", err)
	}
	return parsed, nil
}

// inPlaceholders builds the "?, ?, …" fragment for an IN clause.
func inPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
