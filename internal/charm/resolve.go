package charm

import (
	"fmt"

	"github.com/myrjola/repquest/internal/scoring"
)

// Context is the per-set snapshot the condition predicates evaluate against.
// The caller assembles it from the set being scored and the running session.
type Context struct {
	// SetNumber is the set's 1-based ordinal within its exercise.
	SetNumber int
	// MuscleSetNumber is the set's 1-based ordinal among all sets for its
	// primary muscle this workout.
	MuscleSetNumber int
	Reps            int
	// Streak is the user's current workout streak in days.
	Streak int
	// AllSetsInRepRange is true while every set logged so far this workout
	// has fallen inside its goal bucket's rep range.
	AllSetsInRepRange bool
	Goal              scoring.GoalBucket
}

const streakMomentumMinDays = 7

func (e EffectType) triggers(ctx Context) bool {
	switch e {
	case EffectOpeningFocus:
		return ctx.SetNumber == 1
	case EffectGrinder:
		return ctx.SetNumber >= 3
	case EffectDeepSession:
		return ctx.SetNumber >= 4
	case EffectPerfectForm:
		return ctx.AllSetsInRepRange
	case EffectStreakMomentum:
		return ctx.Streak >= streakMomentumMinDays
	default:
		return false
	}
}

// ResolveBonuses evaluates the equipped charms against ctx and returns the
// bonus entries whose conditions hold, in equip order. Unknown ids are
// no-ops: an equip list referencing a charm removed from the catalog must
// not poison scoring.
func (c *Catalog) ResolveBonuses(equippedIDs []string, ctx Context) []scoring.Bonus {
	var bonuses []scoring.Bonus
	for _, id := range equippedIDs {
		def, ok := c.byID[id]
		if !ok {
			continue
		}
		if !def.EffectType.triggers(ctx) {
			continue
		}
		bonuses = append(bonuses, scoring.Bonus{
			Kind:           scoring.BonusCharm,
			Multiplier:     def.Percent,
			Description:    fmt.Sprintf("%s: %s", def.Name, def.Description),
			Multiplicative: def.EffectType == EffectStreakMomentum,
		})
	}
	return bonuses
}
