package mesocycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvihanto/repcycle/internal/contexthelpers"
	"github.com/mvihanto/repcycle/internal/sqlite"
)

// Service handles the business logic for mesocycle planning and progression.
type Service struct {
	repo   *repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new mesocycle service. A nil now falls back to
// time.Now; tests inject a fixed clock.
func NewService(db *sqlite.Database, logger *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:   factory.newRepository(),
		logger: logger,
		now:    now,
	}
}

// CreatePlan generates and persists a full mesocycle: the header row, the
// dated workout calendar, and the per-exercise set targets.
//
// Persistence happens mesocycle-first, then workouts, then exercises. A
// failure partway leaves the already-persisted rows in place; deleting the
// mesocycle cascades them away.
func (s *Service) CreatePlan(
	ctx context.Context,
	cfg PlanConfig,
	schedule []ScheduleDay,
	deload DeloadConfig,
	templates map[string][]ExerciseTemplate,
) (Mesocycle, error) {
	if len(schedule) != cfg.DaysPerWeek {
		return Mesocycle{}, fmt.Errorf("schedule has %d days, config wants %d", len(schedule), cfg.DaysPerWeek)
	}
	if cfg.TotalCycles < 1 {
		return Mesocycle{}, errors.New("at least one standard week is required")
	}
	if deload.Enabled && len(deload.Weeks) < deload.Duration {
		return Mesocycle{}, fmt.Errorf("deload wants %d weeks, got settings for %d", deload.Duration, len(deload.Weeks))
	}

	gen := &planGenerator{
		userID:    contexthelpers.CurrentUserID(ctx),
		cfg:       cfg,
		schedule:  schedule,
		deload:    deload,
		templates: templates,
		now:       s.now,
	}
	meso, intents := gen.plan()

	meso, err := s.repo.mesocycles.Create(ctx, meso)
	if err != nil {
		return Mesocycle{}, fmt.Errorf("create mesocycle: %w", err)
	}

	workouts := make([]Workout, len(intents))
	for i, intent := range intents {
		workouts[i] = intent.workout
		workouts[i].MesocycleID = meso.ID
	}
	created, err := s.repo.workouts.CreateBatch(ctx, workouts)
	if err != nil {
		return Mesocycle{}, fmt.Errorf("create workouts: %w", err)
	}

	var exercises []Exercise
	for i, workout := range created {
		expanded := gen.exercisesFor(intents[i])
		if len(expanded) == 0 {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "no exercise template for workout",
				slog.String("workout", intents[i].meta.templateName))
			continue
		}
		for _, ex := range expanded {
			ex.WorkoutID = workout.ID
			exercises = append(exercises, ex)
		}
	}
	if err = s.repo.exercises.CreateBatch(ctx, exercises); err != nil {
		return Mesocycle{}, fmt.Errorf("create exercises: %w", err)
	}

	return meso, nil
}

// Mesocycles lists the user's mesocycles.
func (s *Service) Mesocycles(ctx context.Context) ([]Mesocycle, error) {
	mesocycles, err := s.repo.mesocycles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mesocycles: %w", err)
	}
	return mesocycles, nil
}

// DeleteMesocycle removes a mesocycle and, via cascade, its workouts and
// exercises.
func (s *Service) DeleteMesocycle(ctx context.Context, id int64) error {
	if err := s.repo.mesocycles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete mesocycle %d: %w", id, err)
	}
	return nil
}

// OpenWorkout loads a workout with assembled per-set suggestions. On first
// access it stamps started_at; the stamp is idempotent, later opens keep the
// original timestamp.
func (s *Service) OpenWorkout(ctx context.Context, workoutID int64) (Workout, []AssembledExercise, error) {
	workout, err := s.repo.workouts.Get(ctx, workoutID)
	if err != nil {
		return Workout{}, nil, fmt.Errorf("get workout %d: %w", workoutID, err)
	}

	if workout.StartedAt.IsZero() {
		startedAt := s.now()
		if err = s.repo.workouts.MarkStarted(ctx, workoutID, startedAt); err != nil {
			return Workout{}, nil, fmt.Errorf("mark workout %d started: %w", workoutID, err)
		}
		workout.StartedAt = startedAt
	}

	exercises, err := s.repo.exercises.ListByWorkout(ctx, workoutID)
	if err != nil {
		return Workout{}, nil, fmt.Errorf("list exercises: %w", err)
	}

	names := make([]string, len(exercises))
	for i, ex := range exercises {
		names[i] = ex.Name
	}

	history, err := s.repo.exercises.LatestCompletedResults(ctx, names, workoutID)
	if err != nil {
		return Workout{}, nil, fmt.Errorf("load history: %w", err)
	}
	notes, err := s.repo.exercises.NotesByMesocycle(ctx, names, workout.MesocycleID, workoutID)
	if err != nil {
		return Workout{}, nil, fmt.Errorf("load notes: %w", err)
	}

	return workout, assembleExercises(workout, exercises, history, notes), nil
}

// CompleteWorkout marks a workout as completed, making it visible to the
// history lookup of later workouts.
func (s *Service) CompleteWorkout(ctx context.Context, workoutID int64) error {
	if err := s.repo.workouts.MarkCompleted(ctx, workoutID, s.now()); err != nil {
		return fmt.Errorf("complete workout %d: %w", workoutID, err)
	}
	return nil
}

// SaveSets persists the recorded sets of an exercise. Hit flags compare the
// recorded values against the suggestion that was on display; the suggestion
// is persisted into the set's target so it survives reloads. The target-set
// count follows the saved array length.
func (s *Service) SaveSets(ctx context.Context, exerciseID int64, sets []SetSave) error {
	err := s.repo.exercises.Update(ctx, exerciseID, func(ex *Exercise) (bool, error) {
		cleaned := make([]SetResult, len(sets))
		for i, set := range sets {
			targetWeight := set.SuggestedWeight
			targetReps := set.SuggestedReps
			if targetWeight == nil && i < len(ex.SetResults) {
				targetWeight = ex.SetResults[i].TargetWeight
			}
			if targetReps == nil && i < len(ex.SetResults) {
				targetReps = ex.SetResults[i].TargetReps
			}

			dropsets := set.Dropsets
			if dropsets == nil {
				dropsets = []Dropset{}
			}

			cleaned[i] = SetResult{
				Weight:       set.Weight,
				Reps:         set.Reps,
				Dropsets:     dropsets,
				TargetWeight: targetWeight,
				TargetReps:   targetReps,
				HitWeight:    set.Weight != nil && set.SuggestedWeight != nil && *set.Weight >= *set.SuggestedWeight,
				HitReps:      set.Reps != nil && set.SuggestedReps != nil && *set.Reps >= *set.SuggestedReps,
			}
		}
		ex.SetResults = cleaned
		ex.TargetSets = len(cleaned)
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("save sets for exercise %d: %w", exerciseID, err)
	}
	return nil
}

// DeleteSet removes a single set by index and shrinks the target-set count
// accordingly.
func (s *Service) DeleteSet(ctx context.Context, exerciseID int64, setIndex int) error {
	err := s.repo.exercises.Update(ctx, exerciseID, func(ex *Exercise) (bool, error) {
		if setIndex < 0 || setIndex >= len(ex.SetResults) {
			return false, fmt.Errorf("set index %d out of bounds", setIndex)
		}
		ex.SetResults = append(ex.SetResults[:setIndex], ex.SetResults[setIndex+1:]...)
		ex.TargetSets = len(ex.SetResults)
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("delete set %d of exercise %d: %w", setIndex, exerciseID, err)
	}
	return nil
}

// SaveNote replaces the exercise's note. An empty text clears it.
func (s *Service) SaveNote(ctx context.Context, exerciseID int64, text string) error {
	err := s.repo.exercises.Update(ctx, exerciseID, func(ex *Exercise) (bool, error) {
		if text == "" {
			ex.Notes = nil
		} else {
			ex.Notes = &Note{Text: text, Date: s.now()}
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("save note for exercise %d: %w", exerciseID, err)
	}
	return nil
}

// DeleteExercise removes an exercise from its workout.
func (s *Service) DeleteExercise(ctx context.Context, exerciseID int64) error {
	if err := s.repo.exercises.Delete(ctx, exerciseID); err != nil {
		return fmt.Errorf("delete exercise %d: %w", exerciseID, err)
	}
	return nil
}

// AddExercise appends an exercise to a workout at the given display position
// with empty sets.
func (s *Service) AddExercise(
	ctx context.Context,
	workoutID int64,
	name string,
	targetSets int,
	orderIndex int,
) (Exercise, error) {
	ex, err := s.repo.exercises.Create(ctx, Exercise{
		WorkoutID:  workoutID,
		Name:       name,
		TargetSets: targetSets,
		SortOrder:  orderIndex,
		SetResults: initialSetResults(targetSets, false),
	})
	if err != nil {
		return Exercise{}, fmt.Errorf("add exercise to workout %d: %w", workoutID, err)
	}
	return ex, nil
}

// ReorderExercises assigns each exercise its positional index as the new
// sort order. The updates run concurrently; the first failure surfaces and
// already-applied updates stay in place, so callers should re-read on error.
func (s *Service) ReorderExercises(ctx context.Context, exerciseIDs []int64) error {
	var g errgroup.Group
	for i, id := range exerciseIDs {
		g.Go(func() error {
			return s.repo.exercises.UpdateSortOrder(ctx, id, i)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reorder exercises: %w", err)
	}
	return nil
}

// PropagateExercise inserts the named exercise into every not-yet-completed
// workout that shares the source workout's day slot in a later week. Each
// insert appends after the target workout's highest sort order. Like
// reordering, a partial failure leaves earlier inserts in place.
func (s *Service) PropagateExercise(ctx context.Context, workoutID int64, name string, targetSets int) error {
	workout, err := s.repo.workouts.Get(ctx, workoutID)
	if err != nil {
		return fmt.Errorf("get workout %d: %w", workoutID, err)
	}

	future, err := s.repo.workouts.ListFuture(ctx, workout.MesocycleID, workout.DayNumber, workout.WeekNumber)
	if err != nil {
		return fmt.Errorf("list future workouts: %w", err)
	}

	var g errgroup.Group
	for _, fw := range future {
		g.Go(func() error {
			maxOrder, err := s.repo.exercises.MaxSortOrder(ctx, fw.ID)
			if err != nil {
				return err
			}
			_, err = s.repo.exercises.Create(ctx, Exercise{
				WorkoutID:  fw.ID,
				Name:       name,
				TargetSets: targetSets,
				SortOrder:  maxOrder + 1,
				SetResults: initialSetResults(targetSets, false),
			})
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return fmt.Errorf("propagate exercise: %w", err)
	}
	return nil
}

// PlanTemplates derives the editable plan blueprint from the earliest
// not-yet-completed workout of each workout name.
func (s *Service) PlanTemplates(ctx context.Context, mesocycleID int64) (map[string][]ExerciseTemplate, error) {
	workouts, err := s.repo.workouts.ListIncompleteByMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, fmt.Errorf("list incomplete workouts: %w", err)
	}

	templates := map[string][]ExerciseTemplate{}
	for _, workout := range workouts {
		if _, seen := templates[workout.Name]; seen {
			continue
		}
		exercises, err := s.repo.exercises.ListByWorkout(ctx, workout.ID)
		if err != nil {
			return nil, fmt.Errorf("list exercises of workout %d: %w", workout.ID, err)
		}
		blueprint := make([]ExerciseTemplate, len(exercises))
		for i, ex := range exercises {
			blueprint[i] = ExerciseTemplate{
				Name:      ex.Name,
				StartSets: ex.TargetSets,
				EndSets:   ex.TargetSets,
				IsDropset: hasDropsets(ex.SetResults),
			}
		}
		templates[workout.Name] = blueprint
	}
	return templates, nil
}

// RebuildFutureWorkouts replaces the exercises of all not-yet-completed
// workouts whose name matches an edited template. Exercises are recreated at
// the template's starting volume with empty sets.
func (s *Service) RebuildFutureWorkouts(
	ctx context.Context,
	mesocycleID int64,
	templates map[string][]ExerciseTemplate,
) error {
	workouts, err := s.repo.workouts.ListIncompleteByMesocycle(ctx, mesocycleID)
	if err != nil {
		return fmt.Errorf("list incomplete workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var targetIDs []int64
		for _, workout := range workouts {
			if workout.Name == name {
				targetIDs = append(targetIDs, workout.ID)
			}
		}
		if len(targetIDs) == 0 {
			continue
		}

		if err = s.repo.exercises.DeleteByWorkouts(ctx, targetIDs); err != nil {
			return fmt.Errorf("clear exercises of %q workouts: %w", name, err)
		}

		var payload []Exercise
		for _, workoutID := range targetIDs {
			for i, tmpl := range templates[name] {
				payload = append(payload, Exercise{
					WorkoutID:  workoutID,
					Name:       tmpl.Name,
					TargetSets: tmpl.StartSets,
					SortOrder:  i,
					SetResults: initialSetResults(tmpl.StartSets, tmpl.IsDropset),
				})
			}
		}
		if err = s.repo.exercises.CreateBatch(ctx, payload); err != nil {
			return fmt.Errorf("recreate exercises of %q workouts: %w", name, err)
		}
	}
	return nil
}

// CalendarGrid arranges a mesocycle's workouts into a week×day grid with nil
// cells for rest days.
func (s *Service) CalendarGrid(ctx context.Context, mesocycleID int64) ([][]*Workout, error) {
	meso, err := s.repo.mesocycles.Get(ctx, mesocycleID)
	if err != nil {
		return nil, fmt.Errorf("get mesocycle %d: %w", mesocycleID, err)
	}
	workouts, err := s.repo.workouts.ListByMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return buildCalendarGrid(workouts, meso.TotalWeeks, meso.DaysPerWeek), nil
}

// Recap summarises a mesocycle's performed work. An absent mesocycle or one
// without workouts yields nil rather than an error: nothing to show.
func (s *Service) Recap(ctx context.Context, mesocycleID int64) (*Recap, error) {
	meso, err := s.repo.mesocycles.Get(ctx, mesocycleID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mesocycle %d: %w", mesocycleID, err)
	}

	workouts, err := s.repo.workouts.ListByMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil, nil
	}

	weekByWorkoutID := make(map[int64]int, len(workouts))
	workoutIDs := make([]int64, len(workouts))
	for i, w := range workouts {
		weekByWorkoutID[w.ID] = w.WeekNumber
		workoutIDs[i] = w.ID
	}

	exercises, err := s.repo.exercises.ListByWorkouts(ctx, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	muscles, err := s.repo.library.MuscleGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load muscle groups: %w", err)
	}

	return computeRecap(meso, weekByWorkoutID, exercises, muscles), nil
}

// LifetimeStats aggregates all completed workouts of the user. No completed
// workouts yields nil.
func (s *Service) LifetimeStats(ctx context.Context) (*LifetimeStats, error) {
	workouts, err := s.repo.workouts.ListCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list completed workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil, nil
	}

	workoutIDs := make([]int64, len(workouts))
	for i, w := range workouts {
		workoutIDs[i] = w.ID
	}
	exercises, err := s.repo.exercises.ListByWorkouts(ctx, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	muscles, err := s.repo.library.MuscleGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load muscle groups: %w", err)
	}

	return computeLifetimeStats(workouts, exercises, muscles, s.now()), nil
}

// Library lists the exercise library.
func (s *Service) Library(ctx context.Context) ([]LibraryExercise, error) {
	exercises, err := s.repo.library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return exercises, nil
}

// hasDropsets reports whether any set of the exercise carries dropsets.
func hasDropsets(results []SetResult) bool {
	for _, s := range results {
		if len(s.Dropsets) > 0 {
			return true
		}
	}
	return false
}
