package scoring

import (
	"errors"
	"fmt"
)

// RepRange is the inclusive target rep window for a goal bucket.
type RepRange struct {
	Min int
	Max int
}

// Contains reports whether reps falls inside the range.
func (r RepRange) Contains(reps int) bool {
	return reps >= r.Min && reps <= r.Max
}

// ComparisonRule selects how a set's effective load is reduced to a single
// personal-record comparison score.
type ComparisonRule string

const (
	// CompareRawLoad compares the effective load as-is. Used for strength
	// work where the heaviest single load is what counts.
	CompareRawLoad ComparisonRule = "raw_load"
	// CompareEstimatedMax compares an Epley-style one-rep-max estimate,
	// load * (1 + reps/30), so higher-rep sets can still set records.
	CompareEstimatedMax ComparisonRule = "estimated_max"
)

// StreakCurve parameterises the workout-streak bonus: zero below MinDays,
// then a saturating hyperbolic climb towards Max.
type StreakCurve struct {
	MinDays  int
	Max      float64
	HalfLife float64
}

// Multiplier evaluates the curve for a streak of the given days.
// The marginal return per additional day diminishes and never exceeds Max.
func (s StreakCurve) Multiplier(days int) float64 {
	if days < s.MinDays {
		return 0
	}
	d := float64(days)
	return s.Max * d / (d + s.HalfLife)
}

// VolumeScaling parameterises the diminishing-returns penalty for junk volume.
type VolumeScaling struct {
	// ThresholdSets is the number of per-muscle sets in one workout that score
	// at full value. Sets beyond it are penalised.
	ThresholdSets int
	// PenaltyPerSet is the multiplier reduction per set past the threshold.
	PenaltyPerSet float64
	// Floor is the lowest the volume multiplier can go.
	Floor float64
}

// Multiplier returns the total-score factor for the muscleSetNumber-th set of
// a muscle within one workout. It is 1.0 up to the threshold and strictly
// decreasing past it until the floor.
func (v VolumeScaling) Multiplier(muscleSetNumber int) float64 {
	if muscleSetNumber <= v.ThresholdSets {
		return 1.0
	}
	m := 1.0 - v.PenaltyPerSet*float64(muscleSetNumber-v.ThresholdSets)
	if m < v.Floor {
		return v.Floor
	}
	return m
}

// CompletionRules parameterises the one-time workout completion bonus.
type CompletionRules struct {
	MinSets            int
	MinExercises       int
	MinDurationMinutes int
	MaxDurationMinutes int
	BasePoints         int
	PointsPerSet       int
	PointsPerExercise  int
	SetCap             int
	ExerciseCap        int
}

// Config is the static, versioned constant table for the scoring engine.
// It carries no logic beyond curve evaluation; all values are validated once
// at startup rather than on every call.
type Config struct {
	RepRanges        map[GoalBucket]RepRange
	ComparisonRules  map[GoalBucket]ComparisonRule
	RepRangeBonus    float64
	OverloadBonus    float64
	Streak           StreakCurve
	Volume           VolumeScaling
	Completion       CompletionRules
	BodyweightFactor float64
	CompoundFactor   float64
}

// Rep ranges match the training-goal conventions used by the workout planner.
const (
	strengthMinReps    = 3
	strengthMaxReps    = 6
	hypertrophyMinReps = 8
	hypertrophyMaxReps = 12
	enduranceMinReps   = 12
	enduranceMaxReps   = 15
)

// DefaultConfig returns the tuned production constants.
func DefaultConfig() Config {
	return Config{
		RepRanges: map[GoalBucket]RepRange{
			GoalStrength:    {Min: strengthMinReps, Max: strengthMaxReps},
			GoalHypertrophy: {Min: hypertrophyMinReps, Max: hypertrophyMaxReps},
			GoalEndurance:   {Min: enduranceMinReps, Max: enduranceMaxReps},
		},
		ComparisonRules: map[GoalBucket]ComparisonRule{
			GoalStrength:    CompareRawLoad,
			GoalHypertrophy: CompareEstimatedMax,
			GoalEndurance:   CompareEstimatedMax,
		},
		RepRangeBonus: 0.25,
		OverloadBonus: 0.5,
		Streak: StreakCurve{
			MinDays:  3,
			Max:      0.5,
			HalfLife: 10,
		},
		Volume: VolumeScaling{
			ThresholdSets: 4,
			PenaltyPerSet: 0.15,
			Floor:         0.4,
		},
		Completion: CompletionRules{
			MinSets:            10,
			MinExercises:       3,
			MinDurationMinutes: 15,
			MaxDurationMinutes: 180,
			BasePoints:         50,
			PointsPerSet:       5,
			PointsPerExercise:  10,
			SetCap:             30,
			ExerciseCap:        8,
		},
		BodyweightFactor: 0.65,
		CompoundFactor:   1.2,
	}
}

// Validate checks the configuration for inconsistencies that would corrupt
// scoring. It is a startup-time concern; per-call functions assume a valid
// config.
func (c Config) Validate() error {
	var errs []error
	for _, goal := range []GoalBucket{GoalStrength, GoalHypertrophy, GoalEndurance} {
		rr, ok := c.RepRanges[goal]
		if !ok {
			errs = append(errs, fmt.Errorf("missing rep range for goal %s", goal))
			continue
		}
		if rr.Min <= 0 || rr.Max < rr.Min {
			errs = append(errs, fmt.Errorf("invalid rep range for goal %s: %d-%d", goal, rr.Min, rr.Max))
		}
		rule, ok := c.ComparisonRules[goal]
		if !ok {
			errs = append(errs, fmt.Errorf("missing comparison rule for goal %s", goal))
		} else if rule != CompareRawLoad && rule != CompareEstimatedMax {
			errs = append(errs, fmt.Errorf("unknown comparison rule %s for goal %s", rule, goal))
		}
	}
	if c.RepRangeBonus < 0 {
		errs = append(errs, errors.New("rep range bonus must not be negative"))
	}
	if c.OverloadBonus < 0 {
		errs = append(errs, errors.New("overload bonus must not be negative"))
	}
	if c.Streak.Max < 0 || c.Streak.HalfLife <= 0 {
		errs = append(errs, errors.New("streak curve must have non-negative max and positive half-life"))
	}
	if c.Volume.ThresholdSets < 1 || c.Volume.PenaltyPerSet <= 0 || c.Volume.Floor < 0 || c.Volume.Floor > 1 {
		errs = append(errs, errors.New("volume scaling must have positive threshold and penalty and a floor in [0, 1]"))
	}
	if c.BodyweightFactor <= 0 {
		errs = append(errs, errors.New("bodyweight factor must be positive"))
	}
	if c.CompoundFactor < 1 {
		errs = append(errs, errors.New("compound factor must be at least 1"))
	}
	if c.Completion.MinSets < 1 || c.Completion.MinExercises < 1 {
		errs = append(errs, errors.New("completion minimums must be positive"))
	}
	if c.Completion.MinDurationMinutes < 0 || c.Completion.MaxDurationMinutes <= c.Completion.MinDurationMinutes {
		errs = append(errs, errors.New("completion duration window must be non-empty"))
	}
	if c.Completion.SetCap < c.Completion.MinSets || c.Completion.ExerciseCap < c.Completion.MinExercises {
		errs = append(errs, errors.New("completion caps must not be below the minimums"))
	}
	return errors.Join(errs...)
}

// EffectiveLoad returns the load value used for scoring and PR comparisons:
// the actual weight for weighted sets, or bodyweight scaled by the configured
// factor for bodyweight sets.
func (c Config) EffectiveLoad(ctx SetContext) float64 {
	if ctx.Kind == KindBodyweight {
		return ctx.BodyweightKg * c.BodyweightFactor
	}
	return *ctx.WeightKg
}
