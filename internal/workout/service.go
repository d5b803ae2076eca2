// Package workout orchestrates the scoring and progression engine against
// the persistence layer: it loads the context each engine call needs, invokes
// the pure computation, and stores the results.
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/myrjola/repquest/internal/charm"
	"github.com/myrjola/repquest/internal/contexthelpers"
	"github.com/myrjola/repquest/internal/errors"
	"github.com/myrjola/repquest/internal/progression"
	"github.com/myrjola/repquest/internal/recommend"
	"github.com/myrjola/repquest/internal/scoring"
	"github.com/myrjola/repquest/internal/sqlite"
)

const recentWorkloadWindow = 7 * 24 * time.Hour

// MaxEquippedCharms bounds the equipped charm set.
const MaxEquippedCharms = 3

// Service handles the business logic for workout tracking and scoring.
type Service struct {
	repo       *repository
	logger     *slog.Logger
	cfg        scoring.Config
	curve      progression.Curve
	decayRules progression.DecayRules
	weights    recommend.Weights
	charms     *charm.Catalog
	// now is swapped out in tests.
	now func() time.Time
}

// NewService creates a workout service with the production engine
// configuration. Configuration inconsistencies surface here, at startup,
// never per call.
func NewService(db *sqlite.Database, logger *slog.Logger) (*Service, error) {
	cfg := scoring.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate scoring config")
	}
	curve := progression.DefaultCurve()
	if err := curve.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate leveling curve")
	}
	decayRules := progression.DefaultDecayRules()
	if err := decayRules.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate decay rules")
	}
	catalog, err := charm.LoadCatalog()
	if err != nil {
		return nil, errors.Wrap(err, "load charm catalog")
	}

	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:       factory.newRepository(),
		logger:     logger,
		cfg:        cfg,
		curve:      curve,
		decayRules: decayRules,
		weights:    recommend.DefaultWeights(),
		charms:     catalog,
		now:        time.Now,
	}, nil
}

// SetClock overrides the service clock. Tests use it to control decay and
// session durations.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Register creates a new user and returns the internal id for the session
// and the public id handed to the client.
func (s *Service) Register(ctx context.Context, bodyweightKg float64) (int64, string, error) {
	if bodyweightKg <= 0 {
		return 0, "", fmt.Errorf("bodyweight must be positive, got %f", bodyweightKg)
	}
	id, publicID, err := s.repo.users.Create(ctx, bodyweightKg)
	if err != nil {
		return 0, "", fmt.Errorf("create user: %w", err)
	}
	return id, publicID, nil
}

// SetBodyweight updates the current user's bodyweight.
func (s *Service) SetBodyweight(ctx context.Context, bodyweightKg float64) error {
	if bodyweightKg <= 0 {
		return fmt.Errorf("bodyweight must be positive, got %f", bodyweightKg)
	}
	userID := contexthelpers.CurrentUserID(ctx)
	if err := s.repo.users.SetBodyweight(ctx, userID, bodyweightKg); err != nil {
		return fmt.Errorf("set bodyweight: %w", err)
	}
	return nil
}

// StartSession opens a new workout session under the given goal bucket. The
// goal is fixed for the session's lifetime.
func (s *Service) StartSession(ctx context.Context, goal scoring.GoalBucket) (Session, error) {
	if _, ok := s.cfg.RepRanges[goal]; !ok {
		return Session{}, fmt.Errorf("unknown goal bucket %q", goal)
	}
	userID := contexthelpers.CurrentUserID(ctx)

	if _, err := s.repo.sessions.GetActive(ctx, userID); err == nil {
		return Session{}, ErrSessionInProgress
	} else if !errors.Is(err, ErrNoActiveSession) {
		return Session{}, fmt.Errorf("check active session: %w", err)
	}

	session, err := s.repo.sessions.Create(ctx, userID, goal, s.now())
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "workout session started",
		slog.Int64("sessionID", session.ID), slog.String("goal", string(goal)))
	return session, nil
}

// LogSet scores one set in the active session, persists the outcome, and
// advances the primary muscle's progression.
func (s *Service) LogSet(ctx context.Context, exerciseID int64, weightKg *float64, reps int) (SetResult, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	now := s.now()

	session, err := s.repo.sessions.GetActive(ctx, userID)
	if err != nil {
		return SetResult{}, err
	}
	exercise, err := s.repo.exercises.Get(ctx, exerciseID)
	if err != nil {
		return SetResult{}, fmt.Errorf("get exercise %d: %w", exerciseID, err)
	}
	bodyweight, err := s.repo.users.Bodyweight(ctx, userID)
	if err != nil {
		return SetResult{}, fmt.Errorf("get bodyweight: %w", err)
	}

	setCtx, err := s.buildSetContext(ctx, session, exercise, weightKg, reps, bodyweight)
	if err != nil {
		return SetResult{}, err
	}

	baseline, err := s.repo.baselines.Get(ctx, userID, exerciseID, session.Goal)
	if err != nil {
		return SetResult{}, fmt.Errorf("get baseline: %w", err)
	}
	streak, err := s.repo.sessions.CurrentStreak(ctx, userID, now)
	if err != nil {
		return SetResult{}, fmt.Errorf("current streak: %w", err)
	}
	charmBonuses, err := s.resolveCharmBonuses(ctx, userID, session, setCtx, streak)
	if err != nil {
		return SetResult{}, err
	}

	result, err := scoring.ScoreSet(s.cfg, setCtx, baseline, session.Goal, streak, charmBonuses)
	if err != nil {
		return SetResult{}, fmt.Errorf("score set: %w", err)
	}

	effectiveLoad := s.cfg.EffectiveLoad(setCtx)
	isPR, err := scoring.CheckPR(s.cfg, effectiveLoad, reps, session.Goal, baseline)
	if err != nil {
		return SetResult{}, fmt.Errorf("check PR: %w", err)
	}
	if isPR {
		best := scoring.ComparisonScore(s.cfg.ComparisonRules[session.Goal], effectiveLoad, reps)
		if err = s.repo.baselines.Upsert(ctx, userID, exerciseID, session.Goal, best); err != nil {
			return SetResult{}, fmt.Errorf("persist baseline: %w", err)
		}
	}

	projection, progress, err := s.advanceProgress(ctx, userID, exercise.PrimaryMuscle, result.FinalPoints, now)
	if err != nil {
		return SetResult{}, err
	}

	loggedSet := LoggedSet{
		ExerciseID:      exerciseID,
		WeightKg:        weightKg,
		Reps:            reps,
		SetNumber:       setCtx.SetNumber,
		MuscleSetNumber: setCtx.MuscleSetNumber,
		BasePoints:      result.BasePoints,
		FinalPoints:     result.FinalPoints,
		IsPR:            isPR,
		Bonuses:         result.Bonuses,
		CreatedAt:       now,
	}
	loggedSet.ID, err = s.repo.sessions.AddLoggedSet(ctx, session.ID, loggedSet)
	if err != nil {
		return SetResult{}, fmt.Errorf("persist logged set: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "set logged",
		slog.Int64("sessionID", session.ID),
		slog.Int64("exerciseID", exerciseID),
		slog.Int("finalPoints", result.FinalPoints),
		slog.Bool("isPR", isPR))

	return SetResult{
		Set:        loggedSet,
		Muscle:     exercise.PrimaryMuscle,
		Projection: projection,
		Progress:   s.snapshot(progress),
	}, nil
}

// buildSetContext assembles the immutable scoring input for the set,
// computing its ordinals from what the session already holds.
func (s *Service) buildSetContext(
	ctx context.Context,
	session Session,
	exercise Exercise,
	weightKg *float64,
	reps int,
	bodyweightKg float64,
) (scoring.SetContext, error) {
	exerciseSets, err := s.repo.sessions.CountSetsForExercise(ctx, session.ID, exercise.ID)
	if err != nil {
		return scoring.SetContext{}, fmt.Errorf("count exercise sets: %w", err)
	}
	muscleSets, err := s.repo.sessions.CountSetsForMuscle(ctx, session.ID, exercise.PrimaryMuscle)
	if err != nil {
		return scoring.SetContext{}, fmt.Errorf("count muscle sets: %w", err)
	}

	setCtx := scoring.SetContext{
		ExerciseID:      exercise.ID,
		Kind:            exercise.Kind,
		Compound:        exercise.Compound,
		Muscle:          exercise.PrimaryMuscle,
		WeightKg:        weightKg,
		Reps:            reps,
		SetNumber:       exerciseSets + 1,
		MuscleSetNumber: muscleSets + 1,
		BodyweightKg:    bodyweightKg,
	}
	if err = setCtx.Validate(); err != nil {
		return scoring.SetContext{}, fmt.Errorf("invalid set: %w", err)
	}
	return setCtx, nil
}

// resolveCharmBonuses evaluates the user's equipped charms against the set.
func (s *Service) resolveCharmBonuses(
	ctx context.Context,
	userID int64,
	session Session,
	setCtx scoring.SetContext,
	streak int,
) ([]scoring.Bonus, error) {
	equipped, err := s.repo.charms.ListEquipped(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list equipped charms: %w", err)
	}
	if len(equipped) == 0 {
		return nil, nil
	}

	allInRange, err := s.allSetsInRepRange(ctx, session, setCtx.Reps)
	if err != nil {
		return nil, err
	}

	return s.charms.ResolveBonuses(equipped, charm.Context{
		SetNumber:         setCtx.SetNumber,
		MuscleSetNumber:   setCtx.MuscleSetNumber,
		Reps:              setCtx.Reps,
		Streak:            streak,
		AllSetsInRepRange: allInRange,
		Goal:              session.Goal,
	}), nil
}

// allSetsInRepRange reports whether every set of the session so far,
// including the one being logged, hit the goal bucket's rep range.
func (s *Service) allSetsInRepRange(ctx context.Context, session Session, currentReps int) (bool, error) {
	repRange := s.cfg.RepRanges[session.Goal]
	if !repRange.Contains(currentReps) {
		return false, nil
	}
	sets, err := s.repo.sessions.ListLoggedSets(ctx, session.ID)
	if err != nil {
		return false, fmt.Errorf("list logged sets: %w", err)
	}
	for _, set := range sets {
		if !repRange.Contains(set.Reps) {
			return false, nil
		}
	}
	return true, nil
}

// advanceProgress applies any pending decay, projects the gain for the
// client's animation, and persists the advanced state.
func (s *Service) advanceProgress(
	ctx context.Context,
	userID int64,
	muscle string,
	pointsEarned int,
	now time.Time,
) ([]progression.Segment, progression.Progress, error) {
	progress, err := s.repo.progress.Get(ctx, userID, muscle)
	if err != nil {
		return nil, progression.Progress{}, fmt.Errorf("get muscle progress: %w", err)
	}

	progress = progression.ApplyDecay(s.curve, s.decayRules, progress, now)
	projection := progression.Project(s.curve, progress, pointsEarned)
	progress, err = progression.ApplyGain(s.curve, progress, pointsEarned, now)
	if err != nil {
		return nil, progression.Progress{}, fmt.Errorf("apply gain: %w", err)
	}

	if err = s.repo.progress.Upsert(ctx, userID, progress); err != nil {
		return nil, progression.Progress{}, fmt.Errorf("persist muscle progress: %w", err)
	}
	return projection, progress, nil
}

// CompleteSession finishes the active session and awards the completion bonus.
func (s *Service) CompleteSession(ctx context.Context) (CompletionResult, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	now := s.now()

	session, err := s.repo.sessions.GetActive(ctx, userID)
	if err != nil {
		return CompletionResult{}, err
	}
	totalSets, exerciseCount, err := s.repo.sessions.SessionStats(ctx, session.ID)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("session stats: %w", err)
	}

	durationMinutes := int(now.Sub(session.StartedAt).Minutes())
	bonus := scoring.CompletionBonus(s.cfg, scoring.SessionSummary{
		TotalSets:       totalSets,
		DurationMinutes: durationMinutes,
		ExerciseCount:   exerciseCount,
	})

	if err = s.repo.sessions.Complete(ctx, session.ID, now, bonus); err != nil {
		return CompletionResult{}, fmt.Errorf("complete session: %w", err)
	}

	session.CompletedAt = &now
	session.CompletionBonus = bonus
	session.TotalPoints += bonus

	s.logger.LogAttrs(ctx, slog.LevelInfo, "workout session completed",
		slog.Int64("sessionID", session.ID),
		slog.Int("totalSets", totalSets),
		slog.Int("bonus", bonus))

	return CompletionResult{
		Session:         session,
		BonusPoints:     bonus,
		TotalSets:       totalSets,
		ExerciseCount:   exerciseCount,
		DurationMinutes: durationMinutes,
	}, nil
}

// ActiveSession returns the session in progress.
func (s *Service) ActiveSession(ctx context.Context) (Session, []LoggedSet, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	session, err := s.repo.sessions.GetActive(ctx, userID)
	if err != nil {
		return Session{}, nil, err
	}
	sets, err := s.repo.sessions.ListLoggedSets(ctx, session.ID)
	if err != nil {
		return Session{}, nil, fmt.Errorf("list logged sets: %w", err)
	}
	return session, sets, nil
}

// Progress returns the user's per-muscle leveling state with decay applied
// up to now. Decayed states are persisted so repeated reads are stable.
func (s *Service) Progress(ctx context.Context) ([]MuscleSnapshot, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	now := s.now()

	progresses, err := s.repo.progress.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list muscle progress: %w", err)
	}

	snapshots := make([]MuscleSnapshot, 0, len(progresses))
	for _, p := range progresses {
		decayed := progression.ApplyDecay(s.curve, s.decayRules, p, now)
		if decayed != p {
			if err = s.repo.progress.Upsert(ctx, userID, decayed); err != nil {
				return nil, fmt.Errorf("persist decayed progress: %w", err)
			}
		}
		snapshots = append(snapshots, s.snapshot(decayed))
	}
	return snapshots, nil
}

func (s *Service) snapshot(p progression.Progress) MuscleSnapshot {
	snapshot := MuscleSnapshot{
		Muscle:      p.Muscle,
		Level:       p.Level,
		XPIntoLevel: p.XPIntoLevel,
		TotalXP:     p.TotalXP,
	}
	if p.Level < s.curve.MaxLevel {
		snapshot.NextLevelXP = s.curve.CostForLevel(p.Level)
	}
	if !p.LastTrainedAt.IsZero() {
		lastTrained := p.LastTrainedAt
		snapshot.LastTrained = &lastTrained
	}
	return snapshot
}

// Recommendations ranks the exercise catalog for the user's current session.
// The aggregates feeding the scorer are independent reads, so they load
// concurrently.
func (s *Service) Recommendations(ctx context.Context) ([]recommend.ScoredExercise, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	now := s.now()

	var (
		pool      []Exercise
		recent    map[string]int
		usage     map[int64]int
		loggedNow map[int64]struct{}
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if pool, err = s.repo.exercises.List(groupCtx); err != nil {
			return fmt.Errorf("list exercises: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recent, err = s.repo.sessions.RecentMuscleSets(groupCtx, userID, now.Add(-recentWorkloadWindow)); err != nil {
			return fmt.Errorf("recent muscle sets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if usage, err = s.repo.sessions.LifetimeUsage(groupCtx, userID); err != nil {
			return fmt.Errorf("lifetime usage: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		session, err := s.repo.sessions.GetActive(groupCtx, userID)
		if errors.Is(err, ErrNoActiveSession) {
			loggedNow = map[int64]struct{}{}
			return nil
		}
		if err != nil {
			return fmt.Errorf("get active session: %w", err)
		}
		if loggedNow, err = s.repo.sessions.LoggedExerciseIDs(groupCtx, session.ID); err != nil {
			return fmt.Errorf("logged exercise ids: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]recommend.Candidate, 0, len(pool))
	for _, exercise := range pool {
		muscles := append([]string{exercise.PrimaryMuscle}, exercise.SecondaryMuscles...)
		candidates = append(candidates, recommend.Candidate{
			ExerciseID: exercise.ID,
			Name:       exercise.Name,
			Muscles:    muscles,
			Equipment:  exercise.Equipment,
			Compound:   exercise.Compound,
		})
	}

	return recommend.Score(s.weights, candidates, recommend.Context{
		RecentMuscleSets:  recent,
		LifetimeUsage:     usage,
		LoggedThisSession: loggedNow,
	}), nil
}

// ListExercises returns the exercise catalog.
func (s *Service) ListExercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.exercises.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// GetExercise returns one exercise with its description.
func (s *Service) GetExercise(ctx context.Context, id int64) (Exercise, error) {
	exercise, err := s.repo.exercises.Get(ctx, id)
	if err != nil {
		return Exercise{}, fmt.Errorf("get exercise %d: %w", id, err)
	}
	return exercise, nil
}

// CharmCatalog returns the full charm catalog.
func (s *Service) CharmCatalog() []charm.Definition {
	return s.charms.All()
}

// EquippedCharms returns the user's equipped charm definitions in equip order.
func (s *Service) EquippedCharms(ctx context.Context) ([]charm.Definition, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	ids, err := s.repo.charms.ListEquipped(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list equipped charms: %w", err)
	}
	defs := make([]charm.Definition, 0, len(ids))
	for _, id := range ids {
		if def, ok := s.charms.Get(id); ok {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// EquipCharms replaces the user's equipped charm set. Unknown ids are
// rejected here, at equip time; the per-set resolver treats them as no-ops.
// The level gate compares against the user's highest muscle level.
func (s *Service) EquipCharms(ctx context.Context, charmIDs []string) error {
	if len(charmIDs) > MaxEquippedCharms {
		return fmt.Errorf("at most %d charms may be equipped, got %d", MaxEquippedCharms, len(charmIDs))
	}
	userID := contexthelpers.CurrentUserID(ctx)

	highestLevel, err := s.highestMuscleLevel(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range charmIDs {
		def, ok := s.charms.Get(id)
		if !ok {
			return fmt.Errorf("unknown charm %q: %w", id, ErrNotFound)
		}
		if highestLevel < def.MinLevel {
			return fmt.Errorf("charm %q needs level %d: %w", id, def.MinLevel, ErrCharmLocked)
		}
	}

	if err = s.repo.charms.SetEquipped(ctx, userID, charmIDs); err != nil {
		return fmt.Errorf("set equipped charms: %w", err)
	}
	return nil
}

func (s *Service) highestMuscleLevel(ctx context.Context, userID int64) (int, error) {
	progresses, err := s.repo.progress.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list muscle progress: %w", err)
	}
	highest := 0
	for _, p := range progresses {
		if p.Level > highest {
			highest = p.Level
		}
	}
	return highest, nil
}
