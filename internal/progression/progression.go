// Package progression maps earned points to per-muscle levels.
//
// The engine is pure: every update returns a new Progress value for the
// caller to persist, and time is always an explicit parameter.
package progression

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Curve defines the experience cost of each level. Advancing from level L to
// L+1 costs floor(BaseXP * (L+1)^Exponent), so the cost is strictly
// increasing in L for any positive BaseXP and Exponent.
type Curve struct {
	BaseXP   int
	Exponent float64
	MaxLevel int
}

// DecayRules parameterises how idle muscles lose in-level experience.
type DecayRules struct {
	// GracePeriod is how long after the last training a muscle holds its XP.
	GracePeriod time.Duration
	// WeeklyRate is the fraction of in-level XP lost per idle week past the
	// grace period.
	WeeklyRate float64
}

// DefaultCurve returns the production leveling curve.
func DefaultCurve() Curve {
	return Curve{
		BaseXP:   1000,
		Exponent: 1.5,
		MaxLevel: 50,
	}
}

// DefaultDecayRules returns the production decay settings.
func DefaultDecayRules() DecayRules {
	return DecayRules{
		GracePeriod: 7 * 24 * time.Hour,
		WeeklyRate:  0.1,
	}
}

// Validate checks curve parameters once at startup.
func (c Curve) Validate() error {
	var errs []error
	if c.BaseXP <= 0 {
		errs = append(errs, errors.New("base XP must be positive"))
	}
	if c.Exponent <= 0 {
		errs = append(errs, errors.New("curve exponent must be positive"))
	}
	if c.MaxLevel < 1 {
		errs = append(errs, errors.New("max level must be at least 1"))
	}
	return errors.Join(errs...)
}

// Validate checks decay parameters once at startup.
func (d DecayRules) Validate() error {
	var errs []error
	if d.GracePeriod <= 0 {
		errs = append(errs, errors.New("grace period must be positive"))
	}
	if d.WeeklyRate <= 0 || d.WeeklyRate >= 1 {
		errs = append(errs, errors.New("weekly decay rate must be in (0, 1)"))
	}
	return errors.Join(errs...)
}

// CostForLevel returns the XP needed to advance from level to level+1.
func (c Curve) CostForLevel(level int) int {
	return int(math.Floor(float64(c.BaseXP) * math.Pow(float64(level+1), c.Exponent)))
}

// XPForLevel returns the cumulative XP threshold at which level is reached.
// It is strictly increasing in level.
func (c Curve) XPForLevel(level int) int {
	total := 0
	for l := 0; l < level; l++ {
		total += c.CostForLevel(l)
	}
	return total
}

// Progress is the persistent leveling state of one muscle group.
//
// Invariant: 0 <= XPIntoLevel < CostForLevel(Level), except at MaxLevel where
// further experience is absorbed and XPIntoLevel stays zero.
type Progress struct {
	Muscle      string
	Level       int
	XPIntoLevel int
	// TotalXP is all experience ever earned; decay does not touch it.
	TotalXP        int
	LastTrainedAt  time.Time
	DecayAppliedAt time.Time
}

// Segment describes one step of a leveling animation: the progress bar fills
// from FromXP to ToXP within FromLevel, and LeveledUp tells the caller to
// play the level-up transition before the next segment.
type Segment struct {
	FromLevel int  `json:"from_level"`
	ToLevel   int  `json:"to_level"`
	FromXP    int  `json:"from_xp"`
	ToXP      int  `json:"to_xp"`
	LevelCost int  `json:"level_cost"`
	LeveledUp bool `json:"leveled_up"`
}

// ApplyGain adds earned points to a muscle's experience and walks the curve
// upward from the current level. The level never decreases here, and a
// muscle at MaxLevel absorbs experience without further level changes.
// A zero gain is a no-op.
func ApplyGain(curve Curve, p Progress, pointsEarned int, now time.Time) (Progress, error) {
	if pointsEarned < 0 {
		return Progress{}, fmt.Errorf("points earned must not be negative, got %d", pointsEarned)
	}
	if pointsEarned == 0 {
		return p, nil
	}

	updated := p
	updated.TotalXP += pointsEarned
	updated.LastTrainedAt = now
	updated.DecayAppliedAt = now

	if updated.Level >= curve.MaxLevel {
		updated.Level = curve.MaxLevel
		updated.XPIntoLevel = 0
		return updated, nil
	}

	xp := updated.XPIntoLevel + pointsEarned
	level := updated.Level
	for level < curve.MaxLevel && xp >= curve.CostForLevel(level) {
		xp -= curve.CostForLevel(level)
		level++
	}
	if level >= curve.MaxLevel {
		level = curve.MaxLevel
		xp = 0
	}
	updated.Level = level
	updated.XPIntoLevel = xp
	return updated, nil
}

// Project splits a gain into per-level animation segments without mutating
// anything. The final segment's end state agrees exactly with ApplyGain.
func Project(curve Curve, p Progress, pointsEarned int) []Segment {
	if pointsEarned <= 0 {
		return []Segment{{
			FromLevel: p.Level,
			ToLevel:   p.Level,
			FromXP:    p.XPIntoLevel,
			ToXP:      p.XPIntoLevel,
			LevelCost: curve.CostForLevel(p.Level),
			LeveledUp: false,
		}}
	}

	var segments []Segment
	level := p.Level
	xp := p.XPIntoLevel
	remaining := pointsEarned

	for remaining > 0 && level < curve.MaxLevel {
		cost := curve.CostForLevel(level)
		if xp+remaining < cost {
			segments = append(segments, Segment{
				FromLevel: level,
				ToLevel:   level,
				FromXP:    xp,
				ToXP:      xp + remaining,
				LevelCost: cost,
				LeveledUp: false,
			})
			xp += remaining
			remaining = 0
			break
		}
		// The bar fills to the top and the muscle levels up.
		used := cost - xp
		segments = append(segments, Segment{
			FromLevel: level,
			ToLevel:   level + 1,
			FromXP:    xp,
			ToXP:      cost,
			LevelCost: cost,
			LeveledUp: true,
		})
		remaining -= used
		level++
		xp = 0
		if level >= curve.MaxLevel {
			// Mastered: any remainder is absorbed.
			remaining = 0
		}
	}

	if len(segments) == 0 {
		// Already at MaxLevel; experience is absorbed without movement.
		segments = append(segments, Segment{
			FromLevel: level,
			ToLevel:   level,
			FromXP:    xp,
			ToXP:      xp,
			LevelCost: curve.CostForLevel(level),
			LeveledUp: false,
		})
	}
	return segments
}

const hoursPerWeek = 7 * 24

// ApplyDecay reduces a muscle's in-level experience for idle time past the
// grace period. It never reduces the level or the total XP, never goes below
// zero, and never touches a muscle at MaxLevel. The DecayAppliedAt watermark
// makes the operation idempotent: calling it twice with the same now yields
// the same state as calling it once.
func ApplyDecay(curve Curve, rules DecayRules, p Progress, now time.Time) Progress {
	if p.Level >= curve.MaxLevel {
		// Mastered muscles do not decay.
		return p
	}
	if p.LastTrainedAt.IsZero() {
		// Never trained; nothing to decay.
		return p
	}

	decayableFrom := p.LastTrainedAt.Add(rules.GracePeriod)
	if p.DecayAppliedAt.After(decayableFrom) {
		decayableFrom = p.DecayAppliedAt
	}
	if !now.After(decayableFrom) {
		return p
	}

	idleWeeks := now.Sub(decayableFrom).Hours() / hoursPerWeek
	factor := math.Pow(1-rules.WeeklyRate, idleWeeks)

	updated := p
	updated.XPIntoLevel = int(math.Floor(float64(p.XPIntoLevel) * factor))
	if updated.XPIntoLevel < 0 {
		updated.XPIntoLevel = 0
	}
	updated.DecayAppliedAt = now
	return updated
}
