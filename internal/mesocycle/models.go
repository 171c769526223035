package mesocycle

import "time"

// DayType tags an entry in the weekly schedule.
type DayType string

const (
	DayTypeLift DayType = "lift"
	DayTypeRest DayType = "rest"
)

// ScheduleDay is one slot of the repeating weekly schedule. WorkoutName is
// only meaningful for lift days.
type ScheduleDay struct {
	Type        DayType
	WorkoutName string
}

// PlanConfig holds the user-supplied parameters for a new training block.
type PlanConfig struct {
	Name        string
	StartDate   time.Time
	DaysPerWeek int
	// TotalCycles is the number of standard (non-deload) weeks.
	TotalCycles int
}

// DeloadDaySettings are the reduction percentages for one lift day of a
// deload week.
type DeloadDaySettings struct {
	DayIndex            int
	ReduceSetsPercent   int
	ReduceWeightPercent int
	ReduceRepsPercent   int
}

// DeloadConfig describes the optional taper at the end of a block.
// Weeks holds one settings list per deload week, each entry keyed by DayIndex.
type DeloadConfig struct {
	Enabled  bool
	Duration int
	Weeks    [][]DeloadDaySettings
}

// ExerciseTemplate bounds the linear set interpolation for one exercise of a
// named workout day.
type ExerciseTemplate struct {
	Name      string
	StartSets int
	EndSets   int
	IsDropset bool
}

// Mesocycle is a multi-week training block. It is created once by the plan
// generator and never mutated afterwards except via deletion.
type Mesocycle struct {
	ID          int64
	UserID      int64
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	DaysPerWeek int
	// TotalWeeks includes the deload weeks; the standard block spans
	// weeks 1..TotalWeeks-deloadDuration.
	TotalWeeks int
}

// Workout is a single scheduled training day. WeekNumber and DayNumber are
// 1-based. A zero StartedAt/CompletedAt means not started/completed.
type Workout struct {
	ID            int64
	MesocycleID   int64
	UserID        int64
	Name          string
	ScheduledDate time.Time
	WeekNumber    int
	DayNumber     int
	Completed     bool
	StartedAt     time.Time
	CompletedAt   time.Time
}

// Dropset is an immediate reduced-weight continuation of a set.
type Dropset struct {
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps"`
}

// SetResult is one performed (or planned) set. Weight and Reps are the
// recorded performance; TargetWeight/TargetReps persist the suggestion that
// was active at save time; HitWeight/HitReps record whether the performance
// met it.
type SetResult struct {
	Weight       *float64  `json:"weight"`
	Reps         *int      `json:"reps"`
	Dropsets     []Dropset `json:"dropsets"`
	TargetWeight *float64  `json:"target_weight,omitempty"`
	TargetReps   *int      `json:"target_reps,omitempty"`
	HitWeight    bool      `json:"hit_weight,omitempty"`
	HitReps      bool      `json:"hit_reps,omitempty"`
}

// Note is a free-text annotation attached to an exercise.
type Note struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// DeloadPrescription is persisted on deload-week exercises so that the
// suggestion engine can detect deload status without re-deriving it from the
// week number.
type DeloadPrescription struct {
	ReduceWeightPercent int `json:"reduceWeightPercent"`
	ReduceRepsPercent   int `json:"reduceRepsPercent"`
}

// ExerciseConfig is the optional per-exercise configuration document.
type ExerciseConfig struct {
	Deload *DeloadPrescription `json:"deload,omitempty"`
}

// Exercise is one exercise slot within a workout.
type Exercise struct {
	ID         int64
	WorkoutID  int64
	Name       string
	TargetSets int
	SortOrder  int
	Notes      *Note
	Config     *ExerciseConfig
	SetResults []SetResult
}

// deloaded reports whether this exercise carries a deload prescription.
func (e Exercise) deloaded() bool {
	return e.Config != nil && e.Config.Deload != nil
}

// AssembledSet is a SetResult decorated with the computed suggestion for
// display when a workout is opened. Suggestions are not persisted as such;
// they flow back into TargetWeight/TargetReps on save.
type AssembledSet struct {
	SetResult
	SuggestedWeight *float64
	SuggestedReps   *int
	HasSuggestion   bool
}

// NoteEntry is a historical note from an earlier week of the same mesocycle.
type NoteEntry struct {
	Week int
	Text string
	Date time.Time
}

// AssembledExercise is the per-exercise view served when a workout is opened.
type AssembledExercise struct {
	Exercise
	Sets        []AssembledSet
	CurrentNote string
	NoteHistory []NoteEntry
}

// SetSave is the per-set payload of a save-sets operation. The suggested
// values are echoed back from the assembled view so that hit flags and
// persisted targets can be derived.
type SetSave struct {
	Weight          *float64
	Reps            *int
	Dropsets        []Dropset
	SuggestedWeight *float64
	SuggestedReps   *int
}

// LibraryExercise maps an exercise name to its muscle group and description.
type LibraryExercise struct {
	Name                string
	MuscleGroup         string
	DescriptionMarkdown string
}

// BestSet is the heaviest set of an exercise in a workout (ties broken by
// reps).
type BestSet struct {
	Weight float64
	Reps   int
}

// ExerciseProgress compares the first and last best sets of an exercise
// across a mesocycle.
type ExerciseProgress struct {
	Name        string
	Start       BestSet
	End         BestSet
	DeltaWeight float64
	DeltaReps   int
}

// MuscleStat is a per-muscle-group completed-set count.
type MuscleStat struct {
	Name  string
	Count int
}

// WeekBreakdown is the per-week completed-set tally of a recap.
type WeekBreakdown struct {
	Week    int
	Total   int
	Muscles map[string]int
}

// Recap summarises a finished (or in-progress) mesocycle.
type Recap struct {
	TotalVolume     float64
	MuscleStats     []MuscleStat
	WeeklyBreakdown []WeekBreakdown
	Progress        []ExerciseProgress
}

// PersonalRecord is the best weight (reps as tie-break) ever logged for an
// exercise.
type PersonalRecord struct {
	Name   string
	Weight float64
	Reps   int
}

// LifetimeStats aggregates all completed workouts of a user.
type LifetimeStats struct {
	TotalWorkouts   int
	TotalVolume     float64
	TotalSets       int
	DaysActive      int
	MuscleStats     []MuscleStat
	PersonalRecords []PersonalRecord
}

// ChartBar is one bar of the weekly volume chart.
type ChartBar struct {
	Week  int
	Count int
}

// ChartData shapes a recap's weekly breakdown for rendering.
type ChartData struct {
	Bars []ChartBar
	Max  int
}
