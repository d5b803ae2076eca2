package workout_test

import (
	"context"
	"testing"
	"time"

	"github.com/myrjola/repquest/internal/contexthelpers"
	"github.com/myrjola/repquest/internal/errors"
	"github.com/myrjola/repquest/internal/ptr"
	"github.com/myrjola/repquest/internal/scoring"
	"github.com/myrjola/repquest/internal/sqlite"
	"github.com/myrjola/repquest/internal/testhelpers"
	"github.com/myrjola/repquest/internal/workout"
)

// newTestService spins up an in-memory database, registers a user, and
// returns a service whose clock the test controls.
func newTestService(t *testing.T) (*workout.Service, context.Context, *testClock) {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close database: %v", closeErr)
		}
	})

	service, err := workout.NewService(db, logger)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	clock := &testClock{now: time.Date(2025, time.June, 2, 17, 0, 0, 0, time.UTC)}
	service.SetClock(clock.Now)

	userID, _, err := service.Register(ctx, 80)
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	ctx = context.WithValue(ctx, contexthelpers.CurrentUserIDContextKey, userID)
	ctx = context.WithValue(ctx, contexthelpers.IsRegisteredContextKey, true)

	return service, ctx, clock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func exerciseByName(t *testing.T, service *workout.Service, ctx context.Context, name string) workout.Exercise {
	t.Helper()
	exercises, err := service.ListExercises(ctx)
	if err != nil {
		t.Fatalf("list exercises: %v", err)
	}
	for _, exercise := range exercises {
		if exercise.Name == name {
			return exercise
		}
	}
	t.Fatalf("exercise %q not found in catalog", name)
	return workout.Exercise{}
}

func TestServiceLogSetScoresAndLevels(t *testing.T) {
	service, ctx, _ := newTestService(t)
	bench := exerciseByName(t, service, ctx, "Barbell Bench Press")

	if _, err := service.StartSession(ctx, scoring.GoalHypertrophy); err != nil {
		t.Fatalf("start session: %v", err)
	}

	result, err := service.LogSet(ctx, bench.ID, ptr.Ref(100.0), 8)
	if err != nil {
		t.Fatalf("log set: %v", err)
	}

	// 100kg x 8 with the compound factor.
	if result.Set.BasePoints != 960 {
		t.Errorf("BasePoints = %d, want 960", result.Set.BasePoints)
	}
	if !result.Set.IsPR {
		t.Error("first attempt should bootstrap a PR")
	}
	if result.Set.SetNumber != 1 || result.Set.MuscleSetNumber != 1 {
		t.Errorf("ordinals = %d/%d, want 1/1", result.Set.SetNumber, result.Set.MuscleSetNumber)
	}
	if result.Muscle != "chest" {
		t.Errorf("Muscle = %q, want chest", result.Muscle)
	}
	if result.Progress.TotalXP != result.Set.FinalPoints {
		t.Errorf("TotalXP = %d, want %d", result.Progress.TotalXP, result.Set.FinalPoints)
	}
	if len(result.Projection) == 0 {
		t.Error("expected at least one projection segment")
	}

	// The same load again is not a new record.
	second, err := service.LogSet(ctx, bench.ID, ptr.Ref(100.0), 8)
	if err != nil {
		t.Fatalf("log second set: %v", err)
	}
	if second.Set.IsPR {
		t.Error("equal effective load should not be a PR")
	}
	if second.Set.SetNumber != 2 {
		t.Errorf("second set ordinal = %d, want 2", second.Set.SetNumber)
	}

	// A heavier set sets a new record.
	third, err := service.LogSet(ctx, bench.ID, ptr.Ref(105.0), 8)
	if err != nil {
		t.Fatalf("log third set: %v", err)
	}
	if !third.Set.IsPR {
		t.Error("heavier set should be a PR")
	}
}

func TestServiceStartSessionConflicts(t *testing.T) {
	service, ctx, _ := newTestService(t)

	if _, err := service.StartSession(ctx, scoring.GoalStrength); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := service.StartSession(ctx, scoring.GoalStrength); !errors.Is(err, workout.ErrSessionInProgress) {
		t.Errorf("second start returned %v, want ErrSessionInProgress", err)
	}
	if _, err := service.StartSession(ctx, scoring.GoalBucket("crossfit")); err == nil {
		t.Error("unknown goal bucket should be rejected")
	}
}

func TestServiceLogSetRequiresSession(t *testing.T) {
	service, ctx, _ := newTestService(t)
	bench := exerciseByName(t, service, ctx, "Barbell Bench Press")

	if _, err := service.LogSet(ctx, bench.ID, ptr.Ref(100.0), 8); !errors.Is(err, workout.ErrNoActiveSession) {
		t.Errorf("LogSet returned %v, want ErrNoActiveSession", err)
	}
	if _, err := service.CompleteSession(ctx); !errors.Is(err, workout.ErrNoActiveSession) {
		t.Errorf("CompleteSession returned %v, want ErrNoActiveSession", err)
	}
}

func TestServiceCompleteSessionBonus(t *testing.T) {
	service, ctx, clock := newTestService(t)
	squat := exerciseByName(t, service, ctx, "Barbell Back Squat")
	bench := exerciseByName(t, service, ctx, "Barbell Bench Press")
	row := exerciseByName(t, service, ctx, "Barbell Row")

	if _, err := service.StartSession(ctx, scoring.GoalHypertrophy); err != nil {
		t.Fatalf("start session: %v", err)
	}

	for _, exercise := range []workout.Exercise{squat, bench, row} {
		for range 4 {
			if _, err := service.LogSet(ctx, exercise.ID, ptr.Ref(60.0), 10); err != nil {
				t.Fatalf("log set for %s: %v", exercise.Name, err)
			}
		}
	}

	clock.Advance(55 * time.Minute)
	result, err := service.CompleteSession(ctx)
	if err != nil {
		t.Fatalf("complete session: %v", err)
	}
	if result.TotalSets != 12 || result.ExerciseCount != 3 {
		t.Errorf("stats = %d sets / %d exercises, want 12/3", result.TotalSets, result.ExerciseCount)
	}
	if result.BonusPoints <= 0 {
		t.Errorf("BonusPoints = %d, want > 0", result.BonusPoints)
	}
	if result.Session.CompletedAt == nil {
		t.Error("session not marked completed")
	}

	// Completing closed the session.
	if _, err = service.CompleteSession(ctx); !errors.Is(err, workout.ErrNoActiveSession) {
		t.Errorf("second completion returned %v, want ErrNoActiveSession", err)
	}
}

func TestServiceCompleteShortSessionEarnsNothing(t *testing.T) {
	service, ctx, clock := newTestService(t)
	bench := exerciseByName(t, service, ctx, "Barbell Bench Press")

	if _, err := service.StartSession(ctx, scoring.GoalHypertrophy); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := service.LogSet(ctx, bench.ID, ptr.Ref(100.0), 8); err != nil {
		t.Fatalf("log set: %v", err)
	}

	clock.Advance(5 * time.Minute)
	result, err := service.CompleteSession(ctx)
	if err != nil {
		t.Fatalf("complete session: %v", err)
	}
	if result.BonusPoints != 0 {
		t.Errorf("BonusPoints = %d, want 0 for a trivial session", result.BonusPoints)
	}
}

func TestServiceProgressDecaysOnRead(t *testing.T) {
	service, ctx, clock := newTestService(t)
	bench := exerciseByName(t, service, ctx, "Barbell Bench Press")

	if _, err := service.StartSession(ctx, scoring.GoalHypertrophy); err != nil {
		t.Fatalf("start session: %v", err)
	}
	logged, err := service.LogSet(ctx, bench.ID, ptr.Ref(100.0), 8)
	if err != nil {
		t.Fatalf("log set: %v", err)
	}

	before, err := service.Progress(ctx)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(before) != 1 || before[0].Muscle != "chest" {
		t.Fatalf("progress = %+v, want one chest entry", before)
	}
	if before[0].XPIntoLevel != logged.Progress.XPIntoLevel {
		t.Errorf("fresh read changed XP from %d to %d", logged.Progress.XPIntoLevel, before[0].XPIntoLevel)
	}

	// Three idle weeks past the grace period.
	clock.Advance(4 * 7 * 24 * time.Hour)
	after, err := service.Progress(ctx)
	if err != nil {
		t.Fatalf("progress after idle: %v", err)
	}
	if after[0].XPIntoLevel >= before[0].XPIntoLevel {
		t.Errorf("XP did not decay: before %d, after %d", before[0].XPIntoLevel, after[0].XPIntoLevel)
	}
	if after[0].Level != before[0].Level {
		t.Errorf("decay changed level from %d to %d", before[0].Level, after[0].Level)
	}
	if after[0].TotalXP != before[0].TotalXP {
		t.Errorf("decay changed total XP from %d to %d", before[0].TotalXP, after[0].TotalXP)
	}

	// A second read at the same instant is stable.
	again, err := service.Progress(ctx)
	if err != nil {
		t.Fatalf("repeated progress read: %v", err)
	}
	if again[0].XPIntoLevel != after[0].XPIntoLevel {
		t.Errorf("repeated read changed XP from %d to %d", after[0].XPIntoLevel, again[0].XPIntoLevel)
	}
}

func TestServiceRecommendations(t *testing.T) {
	service, ctx, _ := newTestService(t)
	bench := exerciseByName(t, service, ctx, "Barbell Bench Press")

	if _, err := service.StartSession(ctx, scoring.GoalHypertrophy); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := service.LogSet(ctx, bench.ID, ptr.Ref(100.0), 8); err != nil {
		t.Fatalf("log set: %v", err)
	}

	scored, err := service.Recommendations(ctx)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	exercises, err := service.ListExercises(ctx)
	if err != nil {
		t.Fatalf("list exercises: %v", err)
	}
	if len(scored) != len(exercises) {
		t.Errorf("scored %d exercises, catalog has %d", len(scored), len(exercises))
	}
	if scored[len(scored)-1].Candidate.ExerciseID != bench.ID {
		t.Errorf("already-logged exercise should rank last, got %q", scored[len(scored)-1].Candidate.Name)
	}
}

func TestServiceEquipCharms(t *testing.T) {
	service, ctx, _ := newTestService(t)

	if err := service.EquipCharms(ctx, []string{"no-such-charm"}); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("unknown charm returned %v, want ErrNotFound", err)
	}
	// A fresh user is level 0 and cannot equip anything gated at level 1+.
	if err := service.EquipCharms(ctx, []string{"chalk-dust"}); !errors.Is(err, workout.ErrCharmLocked) {
		t.Errorf("locked charm returned %v, want ErrCharmLocked", err)
	}
	if err := service.EquipCharms(ctx, []string{"a", "b", "c", "d"}); err == nil {
		t.Error("expected error for equipping over the limit")
	}

	equipped, err := service.EquippedCharms(ctx)
	if err != nil {
		t.Fatalf("equipped charms: %v", err)
	}
	if len(equipped) != 0 {
		t.Errorf("expected no equipped charms, got %d", len(equipped))
	}
	if len(service.CharmCatalog()) == 0 {
		t.Error("charm catalog is empty")
	}
}
