package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myrjola/repquest/internal/progression"
	"github.com/myrjola/repquest/internal/sqlite"
)

// sqliteProgressRepository handles per-muscle leveling state.
type sqliteProgressRepository struct {
	baseRepository
}

func newSQLiteProgressRepository(db *sqlite.Database) *sqliteProgressRepository {
	return &sqliteProgressRepository{baseRepository: newBaseRepository(db)}
}

// Get returns the muscle's progress, or a zero-valued progress for a muscle
// never trained before.
func (r *sqliteProgressRepository) Get(ctx context.Context, userID int64, muscle string) (progression.Progress, error) {
	var (
		p              progression.Progress
		lastTrained    sql.NullTime
		decayAppliedAt sql.NullTime
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT muscle, level, xp_into_level, total_xp, last_trained_at, decay_applied_at
		FROM muscle_progress
		WHERE user_id = ? AND muscle = ?`, userID, muscle).Scan(
		&p.Muscle, &p.Level, &p.XPIntoLevel, &p.TotalXP, &lastTrained, &decayAppliedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return progression.Progress{Muscle: muscle}, nil
	}
	if err != nil {
		return progression.Progress{}, fmt.Errorf("query muscle progress: %w", err)
	}
	if lastTrained.Valid {
		p.LastTrainedAt = lastTrained.Time
	}
	if decayAppliedAt.Valid {
		p.DecayAppliedAt = decayAppliedAt.Time
	}
	return p, nil
}

// List returns all trained muscles for the user.
func (r *sqliteProgressRepository) List(ctx context.Context, userID int64) (_ []progression.Progress, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT muscle, level, xp_into_level, total_xp, last_trained_at, decay_applied_at
		FROM muscle_progress
		WHERE user_id = ?
		ORDER BY muscle`, userID)
	if err != nil {
		return nil, fmt.Errorf("query muscle progress list: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var progresses []progression.Progress
	for rows.Next() {
		var (
			p              progression.Progress
			lastTrained    sql.NullTime
			decayAppliedAt sql.NullTime
		)
		if err = rows.Scan(&p.Muscle, &p.Level, &p.XPIntoLevel, &p.TotalXP, &lastTrained, &decayAppliedAt); err != nil {
			return nil, fmt.Errorf("scan muscle progress: %w", err)
		}
		if lastTrained.Valid {
			p.LastTrainedAt = lastTrained.Time
		}
		if decayAppliedAt.Valid {
			p.DecayAppliedAt = decayAppliedAt.Time
		}
		progresses = append(progresses, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return progresses, nil
}

// Upsert persists the muscle's progress after a gain or decay pass.
func (r *sqliteProgressRepository) Upsert(ctx context.Context, userID int64, p progression.Progress) error {
	var (
		lastTrained    sql.NullTime
		decayAppliedAt sql.NullTime
	)
	if !p.LastTrainedAt.IsZero() {
		lastTrained = sql.NullTime{Time: p.LastTrainedAt, Valid: true}
	}
	if !p.DecayAppliedAt.IsZero() {
		decayAppliedAt = sql.NullTime{Time: p.DecayAppliedAt, Valid: true}
	}
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO muscle_progress (user_id, muscle, level, xp_into_level, total_xp, last_trained_at, decay_applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, muscle) DO UPDATE SET
			level = excluded.level,
			xp_into_level = excluded.xp_into_level,
			total_xp = excluded.total_xp,
			last_trained_at = excluded.last_trained_at,
			decay_applied_at = excluded.decay_applied_at`,
		userID, p.Muscle, p.Level, p.XPIntoLevel, p.TotalXP, lastTrained, decayAppliedAt)
	if err != nil {
		return fmt.Errorf("upsert muscle progress: %w", err)
	}
	return nil
}
