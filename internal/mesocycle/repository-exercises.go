package mesocycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mvihanto/repcycle/internal/contexthelpers"
	"github.com/mvihanto/repcycle/internal/sqlite"
)

// sqliteExerciseRepository implements exerciseRepository. Exercises have no
// user_id column; ownership checks go through the workouts join.
type sqliteExerciseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newExerciseRepository(db *sqlite.Database, logger *slog.Logger) exerciseRepository {
	return &sqliteExerciseRepository{db: db, logger: logger}
}

// Create inserts a single exercise and returns it with the generated id.
func (r *sqliteExerciseRepository) Create(ctx context.Context, ex Exercise) (Exercise, error) {
	notes, config, setResults, err := marshalExerciseDocs(ex)
	if err != nil {
		return Exercise{}, err
	}

	err = r.db.ReadWrite.QueryRowContext(ctx, `
		INSERT INTO workout_exercises (workout_id, name, target_sets, sort_order, notes, config, set_results)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		ex.WorkoutID, ex.Name, ex.TargetSets, ex.SortOrder, notes, config, setResults).Scan(&ex.ID)
	if err != nil {
		return Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}
	return ex, nil
}

// CreateBatch inserts exercises in order inside one transaction.
func (r *sqliteExerciseRepository) CreateBatch(ctx context.Context, exercises []Exercise) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	for _, ex := range exercises {
		var notes, config, setResults any
		if notes, config, setResults, err = marshalExerciseDocs(ex); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO workout_exercises (workout_id, name, target_sets, sort_order, notes, config, set_results)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ex.WorkoutID, ex.Name, ex.TargetSets, ex.SortOrder, notes, config, setResults); err != nil {
			return fmt.Errorf("insert exercise: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Get retrieves an exercise by id.
func (r *sqliteExerciseRepository) Get(ctx context.Context, id int64) (Exercise, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT we.id, we.workout_id, we.name, we.target_sets, we.sort_order, we.notes, we.config, we.set_results
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.id = ? AND w.user_id = ?`, id, userID)

	ex, err := scanExercise(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	return ex, nil
}

// ListByWorkout retrieves the exercises of a workout in display order.
func (r *sqliteExerciseRepository) ListByWorkout(ctx context.Context, workoutID int64) ([]Exercise, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	return r.list(ctx, `
		SELECT we.id, we.workout_id, we.name, we.target_sets, we.sort_order, we.notes, we.config, we.set_results
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.workout_id = ? AND w.user_id = ?
		ORDER BY we.sort_order, we.id`, workoutID, userID)
}

// ListByWorkouts retrieves the exercises of many workouts at once.
func (r *sqliteExerciseRepository) ListByWorkouts(ctx context.Context, workoutIDs []int64) ([]Exercise, error) {
	if len(workoutIDs) == 0 {
		return nil, nil
	}
	userID := contexthelpers.CurrentUserID(ctx)

	args := make([]any, 0, len(workoutIDs)+1)
	for _, id := range workoutIDs {
		args = append(args, id)
	}
	args = append(args, userID)

	return r.list(ctx, `
		SELECT we.id, we.workout_id, we.name, we.target_sets, we.sort_order, we.notes, we.config, we.set_results
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.workout_id IN (`+inPlaceholders(len(workoutIDs))+`) AND w.user_id = ?
		ORDER BY we.workout_id, we.sort_order, we.id`, args...)
}

// Update applies a copy-on-write update function to an exercise.
func (r *sqliteExerciseRepository) Update(
	ctx context.Context,
	id int64,
	updateFn func(ex *Exercise) (bool, error),
) error {
	exercise, err := r.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get exercise for update: %w", err)
	}

	updated, err := updateFn(&exercise)
	if err != nil {
		return fmt.Errorf("update function: %w", err)
	}
	if !updated {
		return nil
	}

	notes, config, setResults, err := marshalExerciseDocs(exercise)
	if err != nil {
		return err
	}

	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workout_exercises
		SET name = ?, target_sets = ?, sort_order = ?, notes = ?, config = ?, set_results = ?
		WHERE id = ?`,
		exercise.Name, exercise.TargetSets, exercise.SortOrder, notes, config, setResults, id); err != nil {
		return fmt.Errorf("save updated exercise: %w", err)
	}
	return nil
}

// UpdateSortOrder sets the display position of an exercise.
func (r *sqliteExerciseRepository) UpdateSortOrder(ctx context.Context, id int64, sortOrder int) error {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		`UPDATE workout_exercises SET sort_order = ? WHERE id = ?`, sortOrder, id)
	if err != nil {
		return fmt.Errorf("update sort order: %w", err)
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

// Delete removes an exercise from its workout.
func (r *sqliteExerciseRepository) Delete(ctx context.Context, id int64) error {
	userID := contexthelpers.CurrentUserID(ctx)

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM workout_exercises
		WHERE id = ? AND workout_id IN (SELECT id FROM workouts WHERE user_id = ?)`, id, userID)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
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

// DeleteByWorkouts removes all exercises of the given workouts.
func (r *sqliteExerciseRepository) DeleteByWorkouts(ctx context.Context, workoutIDs []int64) error {
	if len(workoutIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(workoutIDs))
	for _, id := range workoutIDs {
		args = append(args, id)
	}
	if _, err := r.db.ReadWrite.ExecContext(ctx,
		`DELETE FROM workout_exercises WHERE workout_id IN (`+inPlaceholders(len(workoutIDs))+`)`,
		args...); err != nil {
		return fmt.Errorf("delete exercises by workouts: %w", err)
	}
	return nil
}

// MaxSortOrder returns the highest sort order in a workout, or -1 when the
// workout has no exercises yet.
func (r *sqliteExerciseRepository) MaxSortOrder(ctx context.Context, workoutID int64) (int, error) {
	var maxOrder sql.NullInt64
	err := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT MAX(sort_order) FROM workout_exercises WHERE workout_id = ?`, workoutID).Scan(&maxOrder)
	if err != nil {
		return 0, fmt.Errorf("query max sort order: %w", err)
	}
	if !maxOrder.Valid {
		return -1, nil
	}
	return int(maxOrder.Int64), nil
}

// LatestCompletedResults returns, per exercise name, the set results from the
// most recent completed workout other than the one being opened.
func (r *sqliteExerciseRepository) LatestCompletedResults(
	ctx context.Context,
	names []string,
	excludeWorkoutID int64,
) (_ map[string][]SetResult, err error) {
	if len(names) == 0 {
		return map[string][]SetResult{}, nil
	}
	userID := contexthelpers.CurrentUserID(ctx)

	args := make([]any, 0, len(names)+2)
	for _, name := range names {
		args = append(args, name)
	}
	args = append(args, excludeWorkoutID, userID)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT we.name, we.set_results
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.name IN (`+inPlaceholders(len(names))+`)
		  AND we.workout_id <> ?
		  AND w.user_id = ?
		  AND w.completed_at IS NOT NULL
		ORDER BY we.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercise history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	history := map[string][]SetResult{}
	for rows.Next() {
		var (
			name          string
			setResultsRaw string
		)
		if err = rows.Scan(&name, &setResultsRaw); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		// Rows arrive newest first; keep only the most recent per name.
		if _, seen := history[name]; seen {
			continue
		}
		var setResults []SetResult
		if err = json.Unmarshal([]byte(setResultsRaw), &setResults); err != nil {
			return nil, fmt.Errorf("unmarshal set results: %w", err)
		}
		history[name] = setResults
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return history, nil
}

// NotesByMesocycle returns, per exercise name, the notes recorded in earlier
// workouts of the same mesocycle, ordered by date ascending.
func (r *sqliteExerciseRepository) NotesByMesocycle(
	ctx context.Context,
	names []string,
	mesocycleID, excludeWorkoutID int64,
) (_ map[string][]NoteEntry, err error) {
	if len(names) == 0 {
		return map[string][]NoteEntry{}, nil
	}
	userID := contexthelpers.CurrentUserID(ctx)

	args := make([]any, 0, len(names)+3)
	for _, name := range names {
		args = append(args, name)
	}
	args = append(args, mesocycleID, excludeWorkoutID, userID)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT we.name, we.notes, w.week_number
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.name IN (`+inPlaceholders(len(names))+`)
		  AND w.mesocycle_id = ?
		  AND we.workout_id <> ?
		  AND w.user_id = ?
		  AND we.notes IS NOT NULL`, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	notes := map[string][]NoteEntry{}
	for rows.Next() {
		var (
			name     string
			notesRaw string
			week     int
		)
		if err = rows.Scan(&name, &notesRaw, &week); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		var note Note
		if err = json.Unmarshal([]byte(notesRaw), &note); err != nil {
			return nil, fmt.Errorf("unmarshal note: %w", err)
		}
		if note.Text == "" {
			continue
		}
		notes[name] = append(notes[name], NoteEntry{Week: week, Text: note.Text, Date: note.Date})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for name := range notes {
		entries := notes[name]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	}
	return notes, nil
}

func (r *sqliteExerciseRepository) list(ctx context.Context, query string, args ...any) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		var ex Exercise
		if ex, err = scanExercise(rows.Scan); err != nil {
			return nil, fmt.Errorf("scan exercise row: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}

// scanExercise scans an exercise row, decoding the JSON document columns.
func scanExercise(scan func(dest ...any) error) (Exercise, error) {
	var (
		ex            Exercise
		notesRaw      sql.NullString
		configRaw     sql.NullString
		setResultsRaw string
	)
	err := scan(&ex.ID, &ex.WorkoutID, &ex.Name, &ex.TargetSets, &ex.SortOrder,
		&notesRaw, &configRaw, &setResultsRaw)
	if err != nil {
		return Exercise{}, err
	}

	if notesRaw.Valid {
		var note Note
		if err = json.Unmarshal([]byte(notesRaw.String), &note); err != nil {
			return Exercise{}, fmt.Errorf("unmarshal notes: %w", err)
		}
		ex.Notes = &note
	}
	if configRaw.Valid {
		var config ExerciseConfig
		if err = json.Unmarshal([]byte(configRaw.String), &config); err != nil {
			return Exercise{}, fmt.Errorf("unmarshal config: %w", err)
		}
		if config.Deload != nil {
			ex.Config = &config
		}
	}
	if err = json.Unmarshal([]byte(setResultsRaw), &ex.SetResults); err != nil {
		return Exercise{}, fmt.Errorf("unmarshal set results: %w", err)
	}
	return ex, nil
}

// marshalExerciseDocs encodes the JSON document columns. Nil notes and config
// map to NULL.
func marshalExerciseDocs(ex Exercise) (notes, config, setResults any, err error) {
	if ex.Notes != nil {
		var encoded []byte
		if encoded, err = json.Marshal(ex.Notes); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal notes: %w", err)
		}
		notes = string(encoded)
	}
	if ex.Config != nil {
		var encoded []byte
		if encoded, err = json.Marshal(ex.Config); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal config: %w", err)
		}
		config = string(encoded)
	}
	results := ex.SetResults
	if results == nil {
		results = []SetResult{}
	}
	var encoded []byte
	if encoded, err = json.Marshal(results); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal set results: %w", err)
	}
	setResults = string(encoded)
	return notes, config, setResults, nil
}
