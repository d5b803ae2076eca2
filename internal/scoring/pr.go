package scoring

import "fmt"

// estimatedMaxRepFactor is the divisor in the Epley one-rep-max estimate.
const estimatedMaxRepFactor = 30.0

// ComparisonScore reduces a set to the single number the PR detector compares
// against the baseline for the chosen rule.
func ComparisonScore(rule ComparisonRule, effectiveLoad float64, reps int) float64 {
	switch rule {
	case CompareEstimatedMax:
		return effectiveLoad * (1 + float64(reps)/estimatedMaxRepFactor)
	case CompareRawLoad:
		return effectiveLoad
	default:
		return effectiveLoad
	}
}

// CheckPR reports whether a set is a personal record for its exercise and
// goal bucket.
//
// A nil baseline means the exercise has never been attempted under this goal;
// the first attempt always bootstraps a record. The function is side-effect
// free: the caller persists the new baseline after a confirmed record, and
// must do so before the next PR check for the same exercise and goal.
func CheckPR(
	cfg Config,
	effectiveLoad float64,
	reps int,
	goal GoalBucket,
	baseline *Baseline,
) (bool, error) {
	if reps <= 0 {
		return false, fmt.Errorf("reps must be positive, got %d", reps)
	}
	rule, ok := cfg.ComparisonRules[goal]
	if !ok {
		return false, fmt.Errorf("unknown goal bucket: %s", goal)
	}
	if baseline == nil {
		return true, nil
	}
	return ComparisonScore(rule, effectiveLoad, reps) > baseline.Best, nil
}
