package mesocycle

// assembleExercises merges persisted sets, prior history, and note history
// into the per-exercise view served when a workout is opened.
//
// Deload status is decided strictly from the exercise's persisted config, not
// from the workout's week number. A persisted target on a set always wins
// over the freshly computed suggestion.
func assembleExercises(
	workout Workout,
	exercises []Exercise,
	history map[string][]SetResult,
	notes map[string][]NoteEntry,
) []AssembledExercise {
	assembled := make([]AssembledExercise, 0, len(exercises))
	for _, ex := range exercises {
		results := padSetResults(ex.SetResults, ex.TargetSets)
		prev := history[ex.Name]

		sets := make([]AssembledSet, len(results))
		for i, result := range results {
			set := AssembledSet{SetResult: result}
			if i < len(prev) {
				if ex.deloaded() {
					d := ex.Config.Deload
					target := deloadTarget(prev[i].Weight, prev[i].Reps, d.ReduceWeightPercent, d.ReduceRepsPercent)
					set.SuggestedWeight = target.Weight
					set.SuggestedReps = target.Reps
					set.HasSuggestion = true
				} else {
					next := nextStep(prev[i].Weight, prev[i].Reps, workout.WeekNumber)
					set.SuggestedWeight = next.Weight
					set.SuggestedReps = next.Reps
					set.HasSuggestion = next.Weight != nil || next.Reps != nil
				}
				if result.TargetWeight != nil && *result.TargetWeight != 0 {
					set.SuggestedWeight = result.TargetWeight
				}
				if result.TargetReps != nil && *result.TargetReps != 0 {
					set.SuggestedReps = result.TargetReps
				}
			}
			sets[i] = set
		}

		var currentNote string
		if ex.Notes != nil {
			currentNote = ex.Notes.Text
		}

		assembled = append(assembled, AssembledExercise{
			Exercise:    ex,
			Sets:        sets,
			CurrentNote: currentNote,
			NoteHistory: notes[ex.Name],
		})
	}
	return assembled
}

// padSetResults appends empty sets until the slice reaches targetSets. It
// never truncates; only target-set mutations shrink the slice.
func padSetResults(results []SetResult, targetSets int) []SetResult {
	padded := make([]SetResult, len(results))
	copy(padded, results)
	for len(padded) < targetSets {
		padded = append(padded, SetResult{Dropsets: []Dropset{}})
	}
	return padded
}
