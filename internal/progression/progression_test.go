package progression

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testTime = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func TestCurveStrictlyIncreasing(t *testing.T) {
	curve := DefaultCurve()
	for level := 0; level < curve.MaxLevel; level++ {
		if curve.CostForLevel(level+1) <= curve.CostForLevel(level) {
			t.Fatalf("level cost not strictly increasing at level %d", level)
		}
		if curve.XPForLevel(level+1) <= curve.XPForLevel(level) {
			t.Fatalf("cumulative threshold not strictly increasing at level %d", level)
		}
	}
}

func TestApplyGainSingleLevelUp(t *testing.T) {
	curve := DefaultCurve()
	// One point away from level 4.
	p := Progress{
		Muscle:      "quads",
		Level:       3,
		XPIntoLevel: curve.CostForLevel(3) - 1,
		TotalXP:     curve.XPForLevel(3) + curve.CostForLevel(3) - 1,
	}

	got, err := ApplyGain(curve, p, 1, testTime)
	if err != nil {
		t.Fatalf("ApplyGain returned unexpected error: %v", err)
	}
	if got.Level != 4 {
		t.Errorf("Level = %d, want 4", got.Level)
	}
	if got.XPIntoLevel != 0 {
		t.Errorf("XPIntoLevel = %d, want 0", got.XPIntoLevel)
	}
	if got.TotalXP != p.TotalXP+1 {
		t.Errorf("TotalXP = %d, want %d", got.TotalXP, p.TotalXP+1)
	}
	if !got.LastTrainedAt.Equal(testTime) {
		t.Errorf("LastTrainedAt = %v, want %v", got.LastTrainedAt, testTime)
	}
}

func TestApplyGainMultiLevelUp(t *testing.T) {
	curve := DefaultCurve()
	gain := curve.CostForLevel(0) + curve.CostForLevel(1) + 10

	got, err := ApplyGain(curve, Progress{Muscle: "chest"}, gain, testTime)
	if err != nil {
		t.Fatalf("ApplyGain returned unexpected error: %v", err)
	}
	if got.Level != 2 {
		t.Errorf("Level = %d, want 2", got.Level)
	}
	if got.XPIntoLevel != 10 {
		t.Errorf("XPIntoLevel = %d, want 10", got.XPIntoLevel)
	}
}

func TestApplyGainZeroIsNoOp(t *testing.T) {
	curve := DefaultCurve()
	p := Progress{Muscle: "back", Level: 5, XPIntoLevel: 123, TotalXP: 99999, LastTrainedAt: testTime}

	got, err := ApplyGain(curve, p, 0, testTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("ApplyGain returned unexpected error: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("zero gain changed state (-want +got):\n%s", diff)
	}
}

func TestApplyGainRejectsNegative(t *testing.T) {
	if _, err := ApplyGain(DefaultCurve(), Progress{}, -1, testTime); err == nil {
		t.Error("expected error for negative gain")
	}
}

func TestApplyGainMaxLevelAbsorbs(t *testing.T) {
	curve := DefaultCurve()
	p := Progress{Muscle: "calves", Level: curve.MaxLevel, TotalXP: 5000000}

	got, err := ApplyGain(curve, p, 10000, testTime)
	if err != nil {
		t.Fatalf("ApplyGain returned unexpected error: %v", err)
	}
	if got.Level != curve.MaxLevel {
		t.Errorf("Level = %d, want %d", got.Level, curve.MaxLevel)
	}
	if got.XPIntoLevel != 0 {
		t.Errorf("XPIntoLevel = %d, want 0", got.XPIntoLevel)
	}
	if got.TotalXP != p.TotalXP+10000 {
		t.Errorf("TotalXP = %d, want %d", got.TotalXP, p.TotalXP+10000)
	}
}

// TestProjectAgreesWithApplyGain verifies that the segment breakdown lands on
// exactly the state ApplyGain produces, for gains that cross zero, one, and
// several level boundaries.
func TestProjectAgreesWithApplyGain(t *testing.T) {
	curve := DefaultCurve()
	tests := []struct {
		name  string
		start Progress
		gain  int
	}{
		{name: "within level", start: Progress{Level: 2, XPIntoLevel: 100}, gain: 50},
		{name: "exact boundary", start: Progress{Level: 3, XPIntoLevel: curve.CostForLevel(3) - 1}, gain: 1},
		{name: "two levels", start: Progress{Level: 0}, gain: curve.CostForLevel(0) + curve.CostForLevel(1) + 7},
		{name: "into max level", start: Progress{Level: curve.MaxLevel - 1, XPIntoLevel: 10}, gain: curve.CostForLevel(curve.MaxLevel-1) * 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := Project(curve, tt.start, tt.gain)
			if len(segments) == 0 {
				t.Fatal("Project returned no segments")
			}

			applied, err := ApplyGain(curve, tt.start, tt.gain, testTime)
			if err != nil {
				t.Fatalf("ApplyGain returned unexpected error: %v", err)
			}

			last := segments[len(segments)-1]
			endLevel := last.ToLevel
			endXP := last.ToXP
			if last.LeveledUp {
				endXP = 0
			}
			if endLevel != applied.Level || endXP != applied.XPIntoLevel {
				t.Errorf("projection ends at level %d xp %d, ApplyGain at level %d xp %d",
					endLevel, endXP, applied.Level, applied.XPIntoLevel)
			}

			// Segments must chain without gaps.
			for i := 1; i < len(segments); i++ {
				if segments[i].FromLevel != segments[i-1].ToLevel {
					t.Errorf("segment %d starts at level %d, previous ended at %d",
						i, segments[i].FromLevel, segments[i-1].ToLevel)
				}
				if segments[i-1].LeveledUp && segments[i].FromXP != 0 {
					t.Errorf("segment %d after a level-up starts at xp %d, want 0", i, segments[i].FromXP)
				}
			}
		})
	}
}

func TestProjectBoundaryScenario(t *testing.T) {
	curve := DefaultCurve()
	start := Progress{Level: 3, XPIntoLevel: curve.CostForLevel(3) - 1}

	segments := Project(curve, start, 1)
	want := []Segment{{
		FromLevel: 3,
		ToLevel:   4,
		FromXP:    curve.CostForLevel(3) - 1,
		ToXP:      curve.CostForLevel(3),
		LevelCost: curve.CostForLevel(3),
		LeveledUp: true,
	}}
	if diff := cmp.Diff(want, segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyDecay(t *testing.T) {
	curve := DefaultCurve()
	rules := DefaultDecayRules()
	trained := testTime

	p := Progress{
		Muscle:         "hamstrings",
		Level:          5,
		XPIntoLevel:    1000,
		TotalXP:        50000,
		LastTrainedAt:  trained,
		DecayAppliedAt: trained,
	}

	t.Run("no decay inside grace period", func(t *testing.T) {
		got := ApplyDecay(curve, rules, p, trained.Add(rules.GracePeriod-time.Hour))
		if diff := cmp.Diff(p, got); diff != "" {
			t.Errorf("state changed inside grace period (-want +got):\n%s", diff)
		}
	})

	t.Run("one idle week past grace loses the weekly rate", func(t *testing.T) {
		now := trained.Add(rules.GracePeriod + 7*24*time.Hour)
		got := ApplyDecay(curve, rules, p, now)
		if got.XPIntoLevel != 900 {
			t.Errorf("XPIntoLevel = %d, want 900", got.XPIntoLevel)
		}
		if got.Level != p.Level {
			t.Errorf("Level = %d, want %d", got.Level, p.Level)
		}
		if got.TotalXP != p.TotalXP {
			t.Errorf("TotalXP = %d, want %d", got.TotalXP, p.TotalXP)
		}
	})

	t.Run("idempotent at the same instant", func(t *testing.T) {
		now := trained.Add(rules.GracePeriod + 3*7*24*time.Hour)
		once := ApplyDecay(curve, rules, p, now)
		twice := ApplyDecay(curve, rules, once, now)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("repeated decay changed state (-once +twice):\n%s", diff)
		}
	})

	t.Run("level never drops even after a long absence", func(t *testing.T) {
		now := trained.Add(rules.GracePeriod + 52*7*24*time.Hour)
		got := ApplyDecay(curve, rules, p, now)
		if got.Level != p.Level {
			t.Errorf("Level = %d, want %d", got.Level, p.Level)
		}
		if got.XPIntoLevel < 0 {
			t.Errorf("XPIntoLevel = %d, want >= 0", got.XPIntoLevel)
		}
	})

	t.Run("max level never decays", func(t *testing.T) {
		mastered := p
		mastered.Level = curve.MaxLevel
		mastered.XPIntoLevel = 0
		now := trained.Add(rules.GracePeriod + 10*7*24*time.Hour)
		got := ApplyDecay(curve, rules, mastered, now)
		if diff := cmp.Diff(mastered, got); diff != "" {
			t.Errorf("mastered muscle decayed (-want +got):\n%s", diff)
		}
	})

	t.Run("never trained muscle is untouched", func(t *testing.T) {
		fresh := Progress{Muscle: "neck"}
		got := ApplyDecay(curve, rules, fresh, testTime.Add(1000*time.Hour))
		if diff := cmp.Diff(fresh, got); diff != "" {
			t.Errorf("untrained muscle changed (-want +got):\n%s", diff)
		}
	})
}

func TestCurveValidate(t *testing.T) {
	if err := DefaultCurve().Validate(); err != nil {
		t.Errorf("default curve should validate, got %v", err)
	}
	if err := (Curve{BaseXP: 0, Exponent: 1.5, MaxLevel: 50}).Validate(); err == nil {
		t.Error("zero base XP should not validate")
	}
	if err := DefaultDecayRules().Validate(); err != nil {
		t.Errorf("default decay rules should validate, got %v", err)
	}
	if err := (DecayRules{GracePeriod: time.Hour, WeeklyRate: 1.5}).Validate(); err == nil {
		t.Error("weekly rate above 1 should not validate")
	}
}
