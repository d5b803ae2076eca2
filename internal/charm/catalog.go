// Package charm loads the equippable charm catalog and resolves equipped
// charms into conditional scoring bonuses.
package charm

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/myrjola/repquest/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Rarity orders charms from common to epic. The tier gates drop tables and
// display treatment, not the bonus math.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RarityEpic   Rarity = "epic"
)

// Rank returns the ordering position of the rarity, common first.
func (r Rarity) Rank() (int, error) {
	switch r {
	case RarityCommon:
		return 0, nil
	case RarityRare:
		return 1, nil
	case RarityEpic:
		return 2, nil
	default:
		return 0, fmt.Errorf("unknown rarity %q", r)
	}
}

// EffectType selects which condition predicate and bonus shape a charm uses.
// New charms reusing an existing effect type are pure catalog data; a new
// effect type needs a predicate in resolve.go and a case in knownEffectTypes.
type EffectType string

const (
	// EffectOpeningFocus triggers on the first set of an exercise.
	EffectOpeningFocus EffectType = "opening_focus"
	// EffectGrinder triggers from the third set of an exercise onward.
	EffectGrinder EffectType = "grinder"
	// EffectDeepSession triggers from the fourth set of an exercise onward.
	EffectDeepSession EffectType = "deep_session"
	// EffectPerfectForm triggers when every set so far has hit the goal
	// bucket's rep range.
	EffectPerfectForm EffectType = "perfect_form"
	// EffectStreakMomentum triggers on a week-long workout streak. It is the
	// only multiplicative effect: it joins the multiplicative tail after
	// volume scaling instead of the additive pool.
	EffectStreakMomentum EffectType = "streak_momentum"
)

func knownEffectType(e EffectType) bool {
	switch e {
	case EffectOpeningFocus, EffectGrinder, EffectDeepSession, EffectPerfectForm, EffectStreakMomentum:
		return true
	default:
		return false
	}
}

// Definition is one immutable catalog entry.
type Definition struct {
	ID          string     `yaml:"id"          json:"id"`
	Name        string     `yaml:"name"        json:"name"`
	Description string     `yaml:"description" json:"description"`
	Rarity      Rarity     `yaml:"rarity"      json:"rarity"`
	EffectType  EffectType `yaml:"effect_type" json:"effect_type"`
	// Percent is the bonus multiplier contributed when the effect triggers,
	// e.g. 0.05 for +5%.
	Percent float64 `yaml:"percent" json:"percent"`
	// MinLevel is the lowest muscle level at which the charm may be equipped.
	MinLevel int `yaml:"min_level" json:"min_level"`
	// MaxDropLevel is the highest level at which the charm still drops.
	MaxDropLevel int `yaml:"max_drop_level" json:"max_drop_level"`
}

// Catalog holds the loaded charm definitions keyed by id.
type Catalog struct {
	byID  map[string]Definition
	order []string
}

// LoadCatalog parses and validates the embedded charm catalog. Called once at
// startup; per-call resolution never re-validates.
func LoadCatalog() (*Catalog, error) {
	return parseCatalog(catalogYAML)
}

func parseCatalog(raw []byte) (*Catalog, error) {
	var defs []Definition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, errors.Wrap(err, "unmarshal charm catalog")
	}

	catalog := &Catalog{byID: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if def.ID == "" {
			return nil, errors.New("charm definition missing id")
		}
		if _, ok := catalog.byID[def.ID]; ok {
			return nil, fmt.Errorf("duplicate charm id %q", def.ID)
		}
		if _, err := def.Rarity.Rank(); err != nil {
			return nil, errors.Wrap(err, "invalid charm rarity", slog.String("id", def.ID))
		}
		if !knownEffectType(def.EffectType) {
			return nil, fmt.Errorf("charm %q has unknown effect type %q", def.ID, def.EffectType)
		}
		if def.Percent <= 0 {
			return nil, fmt.Errorf("charm %q must have a positive percent", def.ID)
		}
		if def.MinLevel < 0 || def.MaxDropLevel < def.MinLevel {
			return nil, fmt.Errorf("charm %q has an inverted level gate %d..%d", def.ID, def.MinLevel, def.MaxDropLevel)
		}
		catalog.byID[def.ID] = def
		catalog.order = append(catalog.order, def.ID)
	}
	return catalog, nil
}

// Get looks up a definition by id.
func (c *Catalog) Get(id string) (Definition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// All returns the definitions in catalog order.
func (c *Catalog) All() []Definition {
	defs := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		defs = append(defs, c.byID[id])
	}
	return defs
}
