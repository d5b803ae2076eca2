package charm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/repquest/internal/scoring"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog returned unexpected error: %v", err)
	}
	if len(catalog.All()) == 0 {
		t.Fatal("embedded catalog is empty")
	}
	if _, ok := catalog.Get("chalk-dust"); !ok {
		t.Error("expected chalk-dust in the embedded catalog")
	}
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown effect type",
			yaml: `
- id: bad
  name: Bad
  rarity: common
  effect_type: teleport
  percent: 0.05
  min_level: 1
  max_drop_level: 10
`,
		},
		{
			name: "unknown rarity",
			yaml: `
- id: bad
  name: Bad
  rarity: mythic
  effect_type: opening_focus
  percent: 0.05
  min_level: 1
  max_drop_level: 10
`,
		},
		{
			name: "inverted level gate",
			yaml: `
- id: bad
  name: Bad
  rarity: common
  effect_type: opening_focus
  percent: 0.05
  min_level: 20
  max_drop_level: 10
`,
		},
		{
			name: "zero percent",
			yaml: `
- id: bad
  name: Bad
  rarity: common
  effect_type: opening_focus
  percent: 0
  min_level: 1
  max_drop_level: 10
`,
		},
		{
			name: "duplicate id",
			yaml: `
- id: twin
  name: Twin
  rarity: common
  effect_type: opening_focus
  percent: 0.05
  min_level: 1
  max_drop_level: 10
- id: twin
  name: Twin Again
  rarity: common
  effect_type: grinder
  percent: 0.05
  min_level: 1
  max_drop_level: 10
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseCatalog([]byte(tt.yaml)); err == nil {
				t.Error("expected a validation error, got nil")
			}
		})
	}
}

func TestRarityRank(t *testing.T) {
	common, _ := RarityCommon.Rank()
	rare, _ := RarityRare.Rank()
	epic, _ := RarityEpic.Rank()
	if !(common < rare && rare < epic) {
		t.Errorf("rarity order broken: common=%d rare=%d epic=%d", common, rare, epic)
	}
	if _, err := Rarity("mythic").Rank(); err == nil {
		t.Error("expected error for unknown rarity")
	}
}

func TestResolveBonuses(t *testing.T) {
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog returned unexpected error: %v", err)
	}

	t.Run("first set triggers opening focus only", func(t *testing.T) {
		bonuses := catalog.ResolveBonuses(
			[]string{"chalk-dust", "grindstone"},
			Context{SetNumber: 1, MuscleSetNumber: 1, Reps: 8, Goal: scoring.GoalHypertrophy},
		)
		if len(bonuses) != 1 {
			t.Fatalf("got %d bonuses, want 1", len(bonuses))
		}
		if bonuses[0].Multiplier != 0.05 {
			t.Errorf("Multiplier = %f, want 0.05", bonuses[0].Multiplier)
		}
		if bonuses[0].Multiplicative {
			t.Error("opening focus must be additive")
		}
	})

	t.Run("deep set triggers grinder and deep session", func(t *testing.T) {
		bonuses := catalog.ResolveBonuses(
			[]string{"grindstone", "iron-will"},
			Context{SetNumber: 4, MuscleSetNumber: 4, Reps: 8, Goal: scoring.GoalHypertrophy},
		)
		want := []float64{0.08, 0.12}
		var got []float64
		for _, b := range bonuses {
			got = append(got, b.Multiplier)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("multipliers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("streak momentum is multiplicative and gated at a week", func(t *testing.T) {
		none := catalog.ResolveBonuses([]string{"ember"}, Context{SetNumber: 1, Streak: 6})
		if len(none) != 0 {
			t.Errorf("got %d bonuses for a 6-day streak, want 0", len(none))
		}
		bonuses := catalog.ResolveBonuses([]string{"ember"}, Context{SetNumber: 1, Streak: 7})
		if len(bonuses) != 1 || !bonuses[0].Multiplicative {
			t.Fatalf("expected one multiplicative bonus, got %+v", bonuses)
		}
	})

	t.Run("perfect form drops once a set misses the range", func(t *testing.T) {
		hit := catalog.ResolveBonuses([]string{"tempo-keeper"}, Context{SetNumber: 2, AllSetsInRepRange: true})
		if len(hit) != 1 {
			t.Fatalf("got %d bonuses, want 1", len(hit))
		}
		missed := catalog.ResolveBonuses([]string{"tempo-keeper"}, Context{SetNumber: 2, AllSetsInRepRange: false})
		if len(missed) != 0 {
			t.Errorf("got %d bonuses after a missed range, want 0", len(missed))
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		bonuses := catalog.ResolveBonuses(
			[]string{"no-such-charm", "chalk-dust"},
			Context{SetNumber: 1},
		)
		if len(bonuses) != 1 {
			t.Fatalf("got %d bonuses, want 1", len(bonuses))
		}
		if !strings.HasPrefix(bonuses[0].Description, "Chalk Dust") {
			t.Errorf("unexpected bonus description %q", bonuses[0].Description)
		}
	})

	t.Run("equip order is preserved", func(t *testing.T) {
		bonuses := catalog.ResolveBonuses(
			[]string{"iron-will", "grindstone"},
			Context{SetNumber: 5},
		)
		if len(bonuses) != 2 {
			t.Fatalf("got %d bonuses, want 2", len(bonuses))
		}
		if bonuses[0].Multiplier != 0.12 || bonuses[1].Multiplier != 0.08 {
			t.Errorf("bonuses out of equip order: %+v", bonuses)
		}
	})
}
