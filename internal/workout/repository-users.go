package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/myrjola/repquest/internal/sqlite"
)

// sqliteUserRepository handles user rows.
type sqliteUserRepository struct {
	baseRepository
}

func newSQLiteUserRepository(db *sqlite.Database) *sqliteUserRepository {
	return &sqliteUserRepository{baseRepository: newBaseRepository(db)}
}

// Create inserts a new user with a generated public id and returns the
// internal id together with the public id handed to the client.
func (r *sqliteUserRepository) Create(ctx context.Context, bodyweightKg float64) (int64, string, error) {
	publicID := uuid.NewString()
	res, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO users (public_id, bodyweight_kg)
		VALUES (?, ?)`, publicID, bodyweightKg)
	if err != nil {
		return 0, "", fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", fmt.Errorf("user insert id: %w", err)
	}
	return id, publicID, nil
}

// Bodyweight returns the user's bodyweight in kilograms.
func (r *sqliteUserRepository) Bodyweight(ctx context.Context, userID int64) (float64, error) {
	var bodyweight float64
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT bodyweight_kg FROM users WHERE id = ?`, userID).Scan(&bodyweight)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query bodyweight: %w", err)
	}
	return bodyweight, nil
}

// SetBodyweight updates the user's bodyweight in kilograms.
func (r *sqliteUserRepository) SetBodyweight(ctx context.Context, userID int64, bodyweightKg float64) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE users SET bodyweight_kg = ? WHERE id = ?`, bodyweightKg, userID)
	if err != nil {
		return fmt.Errorf("update bodyweight: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bodyweight rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
