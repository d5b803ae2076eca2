package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/myrjola/repquest/internal/scoring"
	"github.com/myrjola/repquest/internal/sqlite"
)

// sqliteBaselineRepository handles per-exercise personal-record baselines.
type sqliteBaselineRepository struct {
	baseRepository
}

func newSQLiteBaselineRepository(db *sqlite.Database) *sqliteBaselineRepository {
	return &sqliteBaselineRepository{baseRepository: newBaseRepository(db)}
}

// Get returns the baseline for the exercise and goal bucket, or nil if the
// user has never logged the exercise under that goal.
func (r *sqliteBaselineRepository) Get(
	ctx context.Context,
	userID, exerciseID int64,
	goal scoring.GoalBucket,
) (*scoring.Baseline, error) {
	var best float64
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT best_effective_load
		FROM baselines
		WHERE user_id = ? AND exercise_id = ? AND goal = ?`,
		userID, exerciseID, string(goal)).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query baseline: %w", err)
	}
	return &scoring.Baseline{ExerciseID: exerciseID, Goal: goal, Best: best}, nil
}

// Upsert records a new best effective load after a confirmed PR.
func (r *sqliteBaselineRepository) Upsert(
	ctx context.Context,
	userID, exerciseID int64,
	goal scoring.GoalBucket,
	best float64,
) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO baselines (user_id, exercise_id, goal, best_effective_load, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, exercise_id, goal) DO UPDATE SET
			best_effective_load = excluded.best_effective_load,
			updated_at = excluded.updated_at`,
		userID, exerciseID, string(goal), best, time.Now())
	if err != nil {
		return fmt.Errorf("upsert baseline: %w", err)
	}
	return nil
}
