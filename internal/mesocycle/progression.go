package mesocycle

import "math"

// suggestion is a computed per-set target. A nil field means no suggestion
// for that dimension.
type suggestion struct {
	Weight *float64
	Reps   *int
}

// nextStep computes the standard progressive-overload target from the set
// performed at the same index last time. No suggestion is made before week 2.
//
// Reps progress by one. Weight progresses by a percentage bracket rounded to
// a plate-friendly increment: above 100 by 2.5% rounded to 5, between 50 and
// 100 by 5% rounded to 5, below 50 by 10% rounded to 2.5.
func nextStep(prevWeight *float64, prevReps *int, currentWeek int) suggestion {
	if currentWeek <= 1 {
		return suggestion{Weight: nil, Reps: nil}
	}

	var next suggestion
	if prevReps != nil {
		reps := *prevReps
		if reps > 0 {
			reps++
		}
		next.Reps = &reps
	}
	if prevWeight != nil {
		weight := *prevWeight
		if weight > 0 {
			var increase float64
			rounding := 5.0
			switch {
			case weight > 100:
				increase = weight * 0.025
			case weight >= 50:
				increase = weight * 0.05
			default:
				increase = weight * 0.10
				rounding = 2.5
			}
			weight = math.Round((weight+increase)/rounding) * rounding
		}
		next.Weight = &weight
	}
	return next
}

// deloadTarget tapers the previous performance by the configured reduction
// percentages. Weight floors to the nearest multiple of 5 but never to zero
// when a prior weight existed; reps floor to a minimum of one. A zero or
// absent percentage passes the previous value through unchanged.
func deloadTarget(prevWeight *float64, prevReps *int, reduceWeightPct, reduceRepsPct int) suggestion {
	var target suggestion
	if prevWeight != nil {
		weight := *prevWeight
		if weight > 0 && reduceWeightPct > 0 {
			factor := float64(100-reduceWeightPct) / 100
			weight = math.Floor(weight*factor/5) * 5
			if weight == 0 {
				weight = 5
			}
		}
		target.Weight = &weight
	}
	if prevReps != nil {
		reps := *prevReps
		if reps > 0 && reduceRepsPct > 0 {
			factor := float64(100-reduceRepsPct) / 100
			reps = int(math.Floor(float64(reps) * factor))
			if reps < 1 {
				reps = 1
			}
		}
		target.Reps = &reps
	}
	return target
}
