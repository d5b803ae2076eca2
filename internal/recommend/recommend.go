// Package recommend ranks candidate exercises for the catalog browser.
//
// The scorer is a pure heuristic over precomputed aggregates: it favours
// undertrained muscles and familiar movements, nudges towards free weights
// and compound lifts, and softly excludes exercises already logged in the
// current session.
package recommend

import "slices"

// Equipment categories in preference order.
const (
	EquipmentFreeWeights = "free_weights"
	EquipmentBodyweight  = "bodyweight"
	EquipmentCable       = "cable"
	EquipmentMachine     = "machine"
)

// Candidate is one exercise from the pool under consideration.
type Candidate struct {
	ExerciseID int64  `json:"exercise_id"`
	Name       string `json:"name"`
	// Muscles lists the primary muscle first, then secondaries.
	Muscles   []string `json:"muscles"`
	Equipment string   `json:"equipment"`
	Compound  bool     `json:"compound"`
}

// Context carries the aggregates the scorer reads. All counts are
// precomputed by the persistence layer; the scorer performs no I/O.
type Context struct {
	// RecentMuscleSets maps muscle group to set count over the last 7 days.
	RecentMuscleSets map[string]int
	// LifetimeUsage maps exercise id to how many times the user has ever
	// logged it.
	LifetimeUsage map[int64]int
	// LoggedThisSession holds the exercise ids already logged in the current
	// workout.
	LoggedThisSession map[int64]struct{}
}

// Weights tunes the scoring signals.
type Weights struct {
	// MuscleNeedMax is the score of a completely untrained muscle group.
	MuscleNeedMax float64
	// UsageMax caps the familiarity reward.
	UsageMax float64
	// Equipment maps equipment category to its fixed score.
	Equipment map[string]float64
	// CompoundBonus is a flat tie-break for multi-muscle exercises.
	CompoundBonus float64
	// AlreadyDonePenalty soft-excludes exercises logged this session.
	AlreadyDonePenalty float64
}

// DefaultWeights returns the production scoring weights.
func DefaultWeights() Weights {
	return Weights{
		MuscleNeedMax: 50,
		UsageMax:      15,
		Equipment: map[string]float64{
			EquipmentFreeWeights: 12,
			EquipmentBodyweight:  9,
			EquipmentCable:       6,
			EquipmentMachine:     3,
		},
		CompoundBonus:      8,
		AlreadyDonePenalty: -100,
	}
}

// ScoredExercise pairs a candidate with its composite score and the named
// sub-scores that produced it.
type ScoredExercise struct {
	Candidate  Candidate `json:"candidate"`
	Score      float64   `json:"score"`
	MuscleNeed float64   `json:"muscle_need"`
	Usage      float64   `json:"usage"`
	Equipment  float64   `json:"equipment"`
	Compound   float64   `json:"compound"`
	// AlreadyDone is zero or the already-done penalty.
	AlreadyDone float64 `json:"already_done"`
}

// Score ranks the pool descending by composite score. The sort is stable:
// candidates with equal scores keep their input order.
func Score(weights Weights, pool []Candidate, ctx Context) []ScoredExercise {
	maxRecent := 0
	maxUsage := 0
	for _, c := range pool {
		for _, muscle := range c.Muscles {
			if n := ctx.RecentMuscleSets[muscle]; n > maxRecent {
				maxRecent = n
			}
		}
		if n := ctx.LifetimeUsage[c.ExerciseID]; n > maxUsage {
			maxUsage = n
		}
	}

	scored := make([]ScoredExercise, 0, len(pool))
	for _, c := range pool {
		s := ScoredExercise{Candidate: c}
		s.MuscleNeed = muscleNeedScore(weights, c, ctx, maxRecent)
		s.Usage = usageScore(weights, c, ctx, maxUsage)
		s.Equipment = weights.Equipment[c.Equipment]
		if c.Compound {
			s.Compound = weights.CompoundBonus
		}
		if _, done := ctx.LoggedThisSession[c.ExerciseID]; done {
			s.AlreadyDone = weights.AlreadyDonePenalty
		}
		s.Score = s.MuscleNeed + s.Usage + s.Equipment + s.Compound + s.AlreadyDone
		scored = append(scored, s)
	}

	slices.SortStableFunc(scored, func(a, b ScoredExercise) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return scored
}

// muscleNeedScore is inversely proportional to how much the exercise's
// muscles trained in the last week, normalised against the busiest muscle in
// the pool. An untouched muscle group scores the full MuscleNeedMax.
func muscleNeedScore(weights Weights, c Candidate, ctx Context, maxRecent int) float64 {
	if len(c.Muscles) == 0 {
		return 0
	}
	if maxRecent == 0 {
		return weights.MuscleNeedMax
	}
	total := 0
	for _, muscle := range c.Muscles {
		total += ctx.RecentMuscleSets[muscle]
	}
	average := float64(total) / float64(len(c.Muscles))
	need := 1 - average/float64(maxRecent)
	if need < 0 {
		need = 0
	}
	return weights.MuscleNeedMax * need
}

// usageScore rewards historical familiarity with the movement, normalised
// against the pool's most-used exercise and capped at UsageMax.
func usageScore(weights Weights, c Candidate, ctx Context, maxUsage int) float64 {
	if maxUsage == 0 {
		return 0
	}
	return weights.UsageMax * float64(ctx.LifetimeUsage[c.ExerciseID]) / float64(maxUsage)
}
