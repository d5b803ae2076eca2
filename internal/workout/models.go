package workout

import (
	"time"

	"github.com/myrjola/repquest/internal/errors"
	"github.com/myrjola/repquest/internal/progression"
	"github.com/myrjola/repquest/internal/scoring"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrNoActiveSession is returned when a set is logged or a session
	// completed without a session in progress.
	ErrNoActiveSession = errors.NewSentinel("no active workout session")
	// ErrSessionInProgress is returned when starting a session while another
	// one is still open.
	ErrSessionInProgress = errors.NewSentinel("a workout session is already in progress")
	// ErrCharmLocked is returned when equipping a charm whose level gate the
	// user has not reached.
	ErrCharmLocked = errors.NewSentinel("charm level requirement not met")
)

// Exercise is one catalog entry.
type Exercise struct {
	ID                  int64                `json:"id"`
	Name                string               `json:"name"`
	PrimaryMuscle       string               `json:"primary_muscle"`
	SecondaryMuscles    []string             `json:"secondary_muscles"`
	Equipment           string               `json:"equipment"`
	Kind                scoring.ExerciseKind `json:"kind"`
	Compound            bool                 `json:"compound"`
	DescriptionMarkdown string               `json:"-"`
}

// Session is one workout session.
type Session struct {
	ID              int64              `json:"id"`
	Goal            scoring.GoalBucket `json:"goal"`
	StartedAt       time.Time          `json:"started_at"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
	TotalPoints     int                `json:"total_points"`
	CompletionBonus int                `json:"completion_bonus"`
}

// LoggedSet is one persisted set with its scoring outcome.
type LoggedSet struct {
	ID              int64           `json:"id"`
	ExerciseID      int64           `json:"exercise_id"`
	WeightKg        *float64        `json:"weight_kg,omitempty"`
	Reps            int             `json:"reps"`
	SetNumber       int             `json:"set_number"`
	MuscleSetNumber int             `json:"muscle_set_number"`
	BasePoints      int             `json:"base_points"`
	FinalPoints     int             `json:"final_points"`
	IsPR            bool            `json:"is_pr"`
	Bonuses         []scoring.Bonus `json:"bonuses"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SetResult is everything the client needs to render per-set feedback.
type SetResult struct {
	Set        LoggedSet             `json:"set"`
	Muscle     string                `json:"muscle"`
	Projection []progression.Segment `json:"projection"`
	Progress   MuscleSnapshot        `json:"progress"`
}

// MuscleSnapshot is the client-facing view of one muscle's leveling state.
type MuscleSnapshot struct {
	Muscle      string `json:"muscle"`
	Level       int    `json:"level"`
	XPIntoLevel int    `json:"xp_into_level"`
	// NextLevelXP is the in-level XP needed to reach the next level, zero at
	// the level cap.
	NextLevelXP int        `json:"next_level_xp"`
	TotalXP     int        `json:"total_xp"`
	LastTrained *time.Time `json:"last_trained,omitempty"`
}

// CompletionResult summarises a finished session.
type CompletionResult struct {
	Session         Session `json:"session"`
	BonusPoints     int     `json:"bonus_points"`
	TotalSets       int     `json:"total_sets"`
	ExerciseCount   int     `json:"exercise_count"`
	DurationMinutes int     `json:"duration_minutes"`
}
