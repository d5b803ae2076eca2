// Package scoring turns logged sets into points. It is a pure computation
// library: every function is deterministic in its inputs, performs no I/O,
// and reads no clocks. The session state holder owns all persistence.
package scoring

import (
	"fmt"
	"math"
)

// ScoreSet computes the point value of a single logged set.
//
// baseline may be nil for a first-ever attempt, which counts as progressive
// overload so that new exercises are rewarded. currentStreak is supplied by
// the caller; the scorer never consults a clock. charmBonuses are extra
// contributions already resolved by the charm resolver and are folded into
// the additive pool, or into the multiplicative tail for effects marked so.
//
// Composition: final = floor(base * (1 + sum of additive multipliers) *
// product of (1 + tail multipliers)), never negative. The volume-scaling
// penalty is the first tail factor, multiplicative charm effects follow in
// the order given.
func ScoreSet(
	cfg Config,
	ctx SetContext,
	baseline *Baseline,
	goal GoalBucket,
	currentStreak int,
	charmBonuses []Bonus,
) (Result, error) {
	if err := ctx.Validate(); err != nil {
		return Result{}, fmt.Errorf("validate set: %w", err)
	}
	repRange, ok := cfg.RepRanges[goal]
	if !ok {
		return Result{}, fmt.Errorf("unknown goal bucket: %s", goal)
	}

	base := cfg.EffectiveLoad(ctx) * float64(ctx.Reps)
	if ctx.Compound {
		base *= cfg.CompoundFactor
	}

	var bonuses []Bonus

	if repRange.Contains(ctx.Reps) {
		bonuses = append(bonuses, Bonus{
			Kind:        BonusRepRange,
			Multiplier:  cfg.RepRangeBonus,
			Description: fmt.Sprintf("In the %d-%d rep range", repRange.Min, repRange.Max),
		})
	}

	if overloaded(cfg, ctx, baseline, goal) {
		bonuses = append(bonuses, Bonus{
			Kind:        BonusProgressiveOverload,
			Multiplier:  cfg.OverloadBonus,
			Description: "New best effort",
		})
	}

	if streakMultiplier := cfg.Streak.Multiplier(currentStreak); streakMultiplier > 0 {
		bonuses = append(bonuses, Bonus{
			Kind:        BonusWorkoutStreak,
			Multiplier:  streakMultiplier,
			Description: fmt.Sprintf("%d-day workout streak", currentStreak),
		})
	}

	// Additive charm bonuses join the same pool as the built-in bonuses.
	for _, b := range charmBonuses {
		if !b.Multiplicative {
			bonuses = append(bonuses, b)
		}
	}

	// The multiplicative tail: volume scaling first, then any
	// multiplicative-last charm effects in equip order.
	if volumeMultiplier := cfg.Volume.Multiplier(ctx.MuscleSetNumber); volumeMultiplier < 1 {
		bonuses = append(bonuses, Bonus{
			Kind:           BonusVolumeScaling,
			Multiplier:     volumeMultiplier - 1,
			Description:    fmt.Sprintf("Diminishing returns after %d sets for one muscle", cfg.Volume.ThresholdSets),
			Multiplicative: true,
		})
	}
	for _, b := range charmBonuses {
		if b.Multiplicative {
			bonuses = append(bonuses, b)
		}
	}

	return Result{
		BasePoints:  int(math.Floor(base)),
		Bonuses:     bonuses,
		FinalPoints: compose(base, bonuses),
	}, nil
}

// overloaded reports whether the set strictly beats the baseline under the
// goal bucket's comparison rule. No baseline means a bootstrap overload.
func overloaded(cfg Config, ctx SetContext, baseline *Baseline, goal GoalBucket) bool {
	if baseline == nil {
		return true
	}
	score := ComparisonScore(cfg.ComparisonRules[goal], cfg.EffectiveLoad(ctx), ctx.Reps)
	return score > baseline.Best
}

// compose folds the bonus list over the base points. The additive pool sums;
// tail factors multiply after it. The result is floored and clamped at zero.
func compose(base float64, bonuses []Bonus) int {
	additive := 0.0
	tail := 1.0
	for _, b := range bonuses {
		if b.Multiplicative {
			tail *= 1 + b.Multiplier
		} else {
			additive += b.Multiplier
		}
	}
	final := math.Floor(base * (1 + additive) * tail)
	if final < 0 {
		return 0
	}
	return int(final)
}
