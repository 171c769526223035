package mesocycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvihanto/repcycle/internal/contexthelpers"
	"github.com/mvihanto/repcycle/internal/sqlite"
)

// sqliteWorkoutRepository implements workoutRepository.
type sqliteWorkoutRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newWorkoutRepository(db *sqlite.Database, logger *slog.Logger) workoutRepository {
	return &sqliteWorkoutRepository{db: db, logger: logger}
}

const workoutColumns = `id, mesocycle_id, user_id, name, scheduled_date, week_number,
		day_number, completed, started_at, completed_at`

// CreateBatch inserts the generated workouts in order, capturing the
// generated ids. Any failure aborts the remaining inserts and surfaces.
func (r *sqliteWorkoutRepository) CreateBatch(ctx context.Context, workouts []Workout) (_ []Workout, err error) {
	userID := contexthelpers.CurrentUserID(ctx)

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	created := make([]Workout, len(workouts))
	for i, w := range workouts {
		w.UserID = userID
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO workouts (mesocycle_id, user_id, name, scheduled_date, week_number, day_number, completed)
			VALUES (?, ?, ?, ?, ?, ?, 0)
			RETURNING id`,
			w.MesocycleID, w.UserID, w.Name, formatDate(w.ScheduledDate),
			w.WeekNumber, w.DayNumber).Scan(&w.ID); err != nil {
			return nil, fmt.Errorf("insert workout: %w", err)
		}
		created[i] = w
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// Get retrieves a single workout by id.
func (r *sqliteWorkoutRepository) Get(ctx context.Context, id int64) (Workout, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE id = ? AND user_id = ?`, id, userID)

	workout, err := scanWorkout(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Workout{}, ErrNotFound
	}
	if err != nil {
		return Workout{}, fmt.Errorf("query workout: %w", err)
	}
	return workout, nil
}

// ListByMesocycle retrieves all workouts of a mesocycle in schedule order.
func (r *sqliteWorkoutRepository) ListByMesocycle(ctx context.Context, mesocycleID int64) ([]Workout, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	return r.list(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE mesocycle_id = ? AND user_id = ?
		ORDER BY week_number, day_number`, mesocycleID, userID)
}

// ListIncompleteByMesocycle retrieves the not-yet-completed workouts of a
// mesocycle, earliest week first.
func (r *sqliteWorkoutRepository) ListIncompleteByMesocycle(ctx context.Context, mesocycleID int64) ([]Workout, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	return r.list(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE mesocycle_id = ? AND user_id = ? AND completed = 0
		ORDER BY week_number, day_number`, mesocycleID, userID)
}

// ListFuture retrieves the not-yet-completed workouts sharing dayNumber with
// a week strictly greater than afterWeek.
func (r *sqliteWorkoutRepository) ListFuture(
	ctx context.Context,
	mesocycleID int64,
	dayNumber, afterWeek int,
) ([]Workout, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	return r.list(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE mesocycle_id = ? AND user_id = ? AND day_number = ? AND week_number > ? AND completed = 0
		ORDER BY week_number`, mesocycleID, userID, dayNumber, afterWeek)
}

// ListCompleted retrieves all completed workouts of the user, earliest
// completion first.
func (r *sqliteWorkoutRepository) ListCompleted(ctx context.Context) ([]Workout, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	return r.list(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE user_id = ? AND completed = 1
		ORDER BY completed_at`, userID)
}

// MarkStarted stamps started_at once; later calls keep the original stamp.
func (r *sqliteWorkoutRepository) MarkStarted(ctx context.Context, id int64, at time.Time) error {
	userID := contexthelpers.CurrentUserID(ctx)

	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workouts
		SET started_at = COALESCE(started_at, ?)
		WHERE id = ? AND user_id = ?`,
		formatTimestamp(at), id, userID); err != nil {
		return fmt.Errorf("mark workout started: %w", err)
	}
	return nil
}

// MarkCompleted marks a workout as completed.
func (r *sqliteWorkoutRepository) MarkCompleted(ctx context.Context, id int64, at time.Time) error {
	userID := contexthelpers.CurrentUserID(ctx)

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workouts
		SET completed = 1, completed_at = ?
		WHERE id = ? AND user_id = ?`,
		formatTimestamp(at), id, userID)
	if err != nil {
		return fmt.Errorf("mark workout completed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteWorkoutRepository) list(ctx context.Context, query string, args ...any) (_ []Workout, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var workouts []Workout
	for rows.Next() {
		var workout Workout
		if workout, err = scanWorkout(rows.Scan); err != nil {
			return nil, fmt.Errorf("scan workout row: %w", err)
		}
		workouts = append(workouts, workout)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return workouts, nil
}

// scanWorkout scans a workoutColumns row.
func scanWorkout(scan func(dest ...any) error) (Workout, error) {
	var (
		workout        Workout
		dateStr        string
		startedAtStr   sql.NullString
		completedAtStr sql.NullString
	)
	err := scan(&workout.ID, &workout.MesocycleID, &workout.UserID, &workout.Name,
		&dateStr, &workout.WeekNumber, &workout.DayNumber, &workout.Completed,
		&startedAtStr, &completedAtStr)
	if err != nil {
		return Workout{}, err
	}
	if workout.ScheduledDate, err = parseDate(dateStr); err != nil {
		return Workout{}, fmt.Errorf("parse scheduled date: %w", err)
	}
	if workout.StartedAt, err = parseTimestamp(startedAtStr); err != nil {
		return Workout{}, fmt.Errorf("parse started_at: %w", err)
	}
	if workout.CompletedAt, err = parseTimestamp(completedAtStr); err != nil {
		return Workout{}, fmt.Errorf("parse completed_at: %w", err)
	}
	return workout, nil
}
