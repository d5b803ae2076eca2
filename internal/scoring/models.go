package scoring

import (
	"errors"
	"fmt"
)

// ExerciseKind tells whether a set is loaded with external weight or bodyweight.
type ExerciseKind string

const (
	KindWeighted   ExerciseKind = "weighted"
	KindBodyweight ExerciseKind = "bodyweight"
)

// GoalBucket classifies a workout by training goal. It selects the rep-range
// table and the personal-record comparison rule.
type GoalBucket string

const (
	GoalStrength    GoalBucket = "strength"
	GoalHypertrophy GoalBucket = "hypertrophy"
	GoalEndurance   GoalBucket = "endurance"
)

// SetContext carries everything needed to score a single logged set.
// It is plain data assembled by the session state holder; the scorer never
// reads anything beyond it.
type SetContext struct {
	ExerciseID int64
	Kind       ExerciseKind
	Compound   bool
	// Muscle is the exercise's primary muscle group.
	Muscle string
	// WeightKg is nil exactly when Kind is KindBodyweight.
	WeightKg *float64
	Reps     int
	// SetNumber is this set's 1-based ordinal within its exercise for the workout.
	SetNumber int
	// MuscleSetNumber is this set's 1-based ordinal among all sets worked for
	// its primary muscle in the current workout.
	MuscleSetNumber int
	// BodyweightKg is the user's bodyweight, used for bodyweight exercises.
	BodyweightKg float64
}

// Validate rejects attributes that make scoring meaningless.
func (c SetContext) Validate() error {
	if c.Reps <= 0 {
		return fmt.Errorf("reps must be positive, got %d", c.Reps)
	}
	switch c.Kind {
	case KindWeighted:
		if c.WeightKg == nil {
			return errors.New("weighted set requires a weight")
		}
	case KindBodyweight:
		if c.WeightKg != nil {
			return errors.New("bodyweight set must not carry a weight")
		}
		if c.BodyweightKg <= 0 {
			return fmt.Errorf("bodyweight must be positive, got %f", c.BodyweightKg)
		}
	default:
		return fmt.Errorf("unknown exercise kind: %s", c.Kind)
	}
	if c.SetNumber < 1 || c.MuscleSetNumber < 1 {
		return errors.New("set ordinals are 1-based")
	}
	return nil
}

// Baseline is the best historically observed comparison score for an exercise
// and goal bucket. A nil *Baseline means the exercise has never been attempted
// under that goal, which is a legitimate state rather than an error.
type Baseline struct {
	ExerciseID int64
	Goal       GoalBucket
	// Best is the output of the goal bucket's comparison rule, not raw weight.
	Best float64
}

// BonusKind tags a bonus contribution.
type BonusKind string

const (
	BonusRepRange            BonusKind = "rep_range"
	BonusProgressiveOverload BonusKind = "progressive_overload"
	BonusWorkoutStreak       BonusKind = "workout_streak"
	BonusVolumeScaling       BonusKind = "volume_scaling"
	BonusCharm               BonusKind = "charm"
)

// Bonus is a single named contribution to a set's score.
//
// Additive bonuses pool together as (1 + sum of multipliers). Bonuses with
// Multiplicative set compose as a tail of (1 + multiplier) factors applied
// after the additive pool; the volume-scaling penalty is always such a tail
// factor and carries a negative multiplier.
type Bonus struct {
	Kind           BonusKind `json:"kind"`
	Multiplier     float64   `json:"multiplier"`
	Description    string    `json:"description"`
	Multiplicative bool      `json:"multiplicative,omitempty"`
}

// Result is the immutable outcome of scoring one set. Bonuses are listed in
// presentation order; the caller stores the result verbatim for history.
type Result struct {
	BasePoints  int     `json:"base_points"`
	Bonuses     []Bonus `json:"bonuses"`
	FinalPoints int     `json:"final_points"`
}
