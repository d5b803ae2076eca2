package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/myrjola/repquest/internal/sqlite"
)

// sqliteExerciseRepository handles the exercise catalog.
type sqliteExerciseRepository struct {
	baseRepository
}

func newSQLiteExerciseRepository(db *sqlite.Database) *sqliteExerciseRepository {
	return &sqliteExerciseRepository{baseRepository: newBaseRepository(db)}
}

// Get retrieves a single exercise by ID.
func (r *sqliteExerciseRepository) Get(ctx context.Context, id int64) (Exercise, error) {
	var (
		exercise    Exercise
		musclesJSON string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, primary_muscle, secondary_muscles, equipment, kind, compound, description_markdown
		FROM exercises
		WHERE id = ?`, id).Scan(
		&exercise.ID,
		&exercise.Name,
		&exercise.PrimaryMuscle,
		&musclesJSON,
		&exercise.Equipment,
		&exercise.Kind,
		&exercise.Compound,
		&exercise.DescriptionMarkdown,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	if err = json.Unmarshal([]byte(musclesJSON), &exercise.SecondaryMuscles); err != nil {
		return Exercise{}, fmt.Errorf("decode secondary muscles for exercise %d: %w", id, err)
	}
	return exercise, nil
}

// List returns the whole exercise catalog ordered by id.
func (r *sqliteExerciseRepository) List(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, primary_muscle, secondary_muscles, equipment, kind, compound, description_markdown
		FROM exercises
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		var (
			exercise    Exercise
			musclesJSON string
		)
		if err = rows.Scan(
			&exercise.ID,
			&exercise.Name,
			&exercise.PrimaryMuscle,
			&musclesJSON,
			&exercise.Equipment,
			&exercise.Kind,
			&exercise.Compound,
			&exercise.DescriptionMarkdown,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		if err = json.Unmarshal([]byte(musclesJSON), &exercise.SecondaryMuscles); err != nil {
			return nil, fmt.Errorf("decode secondary muscles for exercise %d: %w", exercise.ID, err)
		}
		exercises = append(exercises, exercise)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}
