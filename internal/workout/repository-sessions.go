package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/repquest/internal/scoring"
	"github.com/myrjola/repquest/internal/sqlite"
)

// sqliteSessionRepository handles workout sessions and their logged sets.
type sqliteSessionRepository struct {
	baseRepository
	logger       *slog.Logger
	exerciseRepo *sqliteExerciseRepository
}

func newSQLiteSessionRepository(
	db *sqlite.Database,
	logger *slog.Logger,
	exerciseRepo *sqliteExerciseRepository,
) *sqliteSessionRepository {
	return &sqliteSessionRepository{
		baseRepository: newBaseRepository(db),
		logger:         logger,
		exerciseRepo:   exerciseRepo,
	}
}

// Create starts a new workout session for the user.
func (r *sqliteSessionRepository) Create(
	ctx context.Context,
	userID int64,
	goal scoring.GoalBucket,
	startedAt time.Time,
) (Session, error) {
	res, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_sessions (user_id, goal, started_at)
		VALUES (?, ?, ?)`, userID, string(goal), startedAt)
	if err != nil {
		return Session{}, fmt.Errorf("insert workout session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Session{}, fmt.Errorf("workout session insert id: %w", err)
	}
	return Session{ID: id, Goal: goal, StartedAt: startedAt}, nil
}

// GetActive retrieves the user's session in progress, if any.
func (r *sqliteSessionRepository) GetActive(ctx context.Context, userID int64) (Session, error) {
	var (
		session Session
		goal    string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, goal, started_at, total_points, completion_bonus
		FROM workout_sessions
		WHERE user_id = ? AND completed_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1`, userID).Scan(
		&session.ID, &goal, &session.StartedAt, &session.TotalPoints, &session.CompletionBonus)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoActiveSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("query active session: %w", err)
	}
	session.Goal = scoring.GoalBucket(goal)
	return session, nil
}

// Complete marks the session finished and records its completion bonus.
func (r *sqliteSessionRepository) Complete(ctx context.Context, sessionID int64, completedAt time.Time, bonus int) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workout_sessions
		SET completed_at = ?,
		    completion_bonus = ?,
		    total_points = total_points + ?
		WHERE id = ?`, completedAt, bonus, bonus, sessionID)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

// AddLoggedSet persists a scored set and bumps the session's running total.
func (r *sqliteSessionRepository) AddLoggedSet(ctx context.Context, sessionID int64, set LoggedSet) (int64, error) {
	bonusesJSON, err := json.Marshal(set.Bonuses)
	if err != nil {
		return 0, fmt.Errorf("encode bonuses: %w", err)
	}

	res, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO logged_sets (
			session_id, exercise_id, weight_kg, reps, set_number, muscle_set_number,
			base_points, final_points, is_pr, bonuses, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, set.ExerciseID, set.WeightKg, set.Reps, set.SetNumber, set.MuscleSetNumber,
		set.BasePoints, set.FinalPoints, set.IsPR, string(bonusesJSON), set.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert logged set: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("logged set insert id: %w", err)
	}

	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workout_sessions SET total_points = total_points + ? WHERE id = ?`,
		set.FinalPoints, sessionID); err != nil {
		return 0, fmt.Errorf("update session total: %w", err)
	}
	return id, nil
}

// ListLoggedSets returns the session's sets in log order.
func (r *sqliteSessionRepository) ListLoggedSets(ctx context.Context, sessionID int64) (_ []LoggedSet, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, exercise_id, weight_kg, reps, set_number, muscle_set_number,
		       base_points, final_points, is_pr, bonuses, created_at
		FROM logged_sets
		WHERE session_id = ?
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query logged sets: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var sets []LoggedSet
	for rows.Next() {
		var (
			set         LoggedSet
			bonusesJSON string
		)
		if err = rows.Scan(
			&set.ID, &set.ExerciseID, &set.WeightKg, &set.Reps, &set.SetNumber, &set.MuscleSetNumber,
			&set.BasePoints, &set.FinalPoints, &set.IsPR, &bonusesJSON, &set.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan logged set: %w", err)
		}
		if err = json.Unmarshal([]byte(bonusesJSON), &set.Bonuses); err != nil {
			return nil, fmt.Errorf("decode bonuses for set %d: %w", set.ID, err)
		}
		sets = append(sets, set)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return sets, nil
}

// SessionStats returns the aggregate shape of a session for the completion bonus.
func (r *sqliteSessionRepository) SessionStats(ctx context.Context, sessionID int64) (totalSets int, exerciseCount int, err error) {
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT exercise_id)
		FROM logged_sets
		WHERE session_id = ?`, sessionID).Scan(&totalSets, &exerciseCount)
	if err != nil {
		return 0, 0, fmt.Errorf("query session stats: %w", err)
	}
	return totalSets, exerciseCount, nil
}

// CountSetsForExercise returns how many sets the session already holds for
// the exercise.
func (r *sqliteSessionRepository) CountSetsForExercise(ctx context.Context, sessionID, exerciseID int64) (int, error) {
	var count int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM logged_sets
		WHERE session_id = ? AND exercise_id = ?`, sessionID, exerciseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sets for exercise: %w", err)
	}
	return count, nil
}

// CountSetsForMuscle returns how many of the session's sets target the muscle
// as their exercise's primary muscle.
func (r *sqliteSessionRepository) CountSetsForMuscle(ctx context.Context, sessionID int64, muscle string) (int, error) {
	var count int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM logged_sets ls
		JOIN exercises e ON e.id = ls.exercise_id
		WHERE ls.session_id = ? AND e.primary_muscle = ?`, sessionID, muscle).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sets for muscle: %w", err)
	}
	return count, nil
}

// CurrentStreak counts consecutive days with a completed session, ending
// today or yesterday relative to now.
func (r *sqliteSessionRepository) CurrentStreak(ctx context.Context, userID int64, now time.Time) (_ int, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT DISTINCT date(completed_at)
		FROM workout_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL
		ORDER BY date(completed_at) DESC`, userID)
	if err != nil {
		return 0, fmt.Errorf("query completed session dates: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var dates []time.Time
	for rows.Next() {
		var dateStr string
		if err = rows.Scan(&dateStr); err != nil {
			return 0, fmt.Errorf("scan session date: %w", err)
		}
		date, parseErr := time.ParseInLocation(time.DateOnly, dateStr, now.Location())
		if parseErr != nil {
			return 0, fmt.Errorf("parse session date %q: %w", dateStr, parseErr)
		}
		dates = append(dates, date)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("rows error: %w", err)
	}

	return streakFromDates(dates, now), nil
}

// streakFromDates walks completion dates, newest first, counting consecutive
// days. A streak survives one day of slack so that today's not-yet-completed
// workout does not zero it.
func streakFromDates(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	latest := dates[0]
	daysSince := int(today.Sub(latest).Hours() / 24)
	if daysSince > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(dates); i++ {
		gap := int(dates[i-1].Sub(dates[i]).Hours() / 24)
		if gap != 1 {
			break
		}
		streak++
	}
	return streak
}

// RecentMuscleSets returns per-muscle set counts over the trailing window,
// counting each set for its exercise's primary muscle.
func (r *sqliteSessionRepository) RecentMuscleSets(ctx context.Context, userID int64, since time.Time) (_ map[string]int, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT e.primary_muscle, COUNT(*)
		FROM logged_sets ls
		JOIN workout_sessions ws ON ws.id = ls.session_id
		JOIN exercises e ON e.id = ls.exercise_id
		WHERE ws.user_id = ? AND ls.created_at >= ?
		GROUP BY e.primary_muscle`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("query recent muscle sets: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			muscle string
			count  int
		)
		if err = rows.Scan(&muscle, &count); err != nil {
			return nil, fmt.Errorf("scan muscle count: %w", err)
		}
		counts[muscle] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return counts, nil
}

// LifetimeUsage returns per-exercise lifetime set counts for the user.
func (r *sqliteSessionRepository) LifetimeUsage(ctx context.Context, userID int64) (_ map[int64]int, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT ls.exercise_id, COUNT(*)
		FROM logged_sets ls
		JOIN workout_sessions ws ON ws.id = ls.session_id
		WHERE ws.user_id = ?
		GROUP BY ls.exercise_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query lifetime usage: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	usage := make(map[int64]int)
	for rows.Next() {
		var (
			exerciseID int64
			count      int
		)
		if err = rows.Scan(&exerciseID, &count); err != nil {
			return nil, fmt.Errorf("scan usage count: %w", err)
		}
		usage[exerciseID] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return usage, nil
}

// LoggedExerciseIDs returns the distinct exercises already logged in the session.
func (r *sqliteSessionRepository) LoggedExerciseIDs(ctx context.Context, sessionID int64) (_ map[int64]struct{}, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT DISTINCT exercise_id FROM logged_sets WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query logged exercise ids: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan exercise id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}
