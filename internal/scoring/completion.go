package scoring

// SessionSummary is the aggregate shape of a finished workout session.
type SessionSummary struct {
	TotalSets       int
	DurationMinutes int
	ExerciseCount   int
}

// CompletionBonus computes the one-time bonus awarded when a workout session
// ends.
//
// It rewards sessions with both enough volume and enough exercise variety
// inside a plausible duration window; trivial single-set "workouts" and
// degenerate marathon sessions earn nothing. Within the configured caps the
// bonus is monotonic in both total sets and exercise count.
func CompletionBonus(cfg Config, summary SessionSummary) int {
	rules := cfg.Completion
	if summary.TotalSets < rules.MinSets || summary.ExerciseCount < rules.MinExercises {
		return 0
	}
	if summary.DurationMinutes < rules.MinDurationMinutes || summary.DurationMinutes > rules.MaxDurationMinutes {
		return 0
	}

	sets := min(summary.TotalSets, rules.SetCap)
	exercises := min(summary.ExerciseCount, rules.ExerciseCap)
	return rules.BasePoints + rules.PointsPerSet*sets + rules.PointsPerExercise*exercises
}
