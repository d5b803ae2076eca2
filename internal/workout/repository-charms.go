package workout

import (
	"context"
	"errors"
	"fmt"

	"github.com/myrjola/repquest/internal/sqlite"
)

// sqliteCharmRepository handles the user's equipped charm set.
type sqliteCharmRepository struct {
	baseRepository
}

func newSQLiteCharmRepository(db *sqlite.Database) *sqliteCharmRepository {
	return &sqliteCharmRepository{baseRepository: newBaseRepository(db)}
}

// ListEquipped returns the user's equipped charm ids in equip order.
func (r *sqliteCharmRepository) ListEquipped(ctx context.Context, userID int64) (_ []string, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT charm_id
		FROM equipped_charms
		WHERE user_id = ?
		ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query equipped charms: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan charm id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}

// SetEquipped replaces the user's equipped charm set.
func (r *sqliteCharmRepository) SetEquipped(ctx context.Context, userID int64, charmIDs []string) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rollbackErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM equipped_charms WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear equipped charms: %w", err)
	}
	for position, charmID := range charmIDs {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO equipped_charms (user_id, charm_id, position)
			VALUES (?, ?, ?)`, userID, charmID, position); err != nil {
			return fmt.Errorf("insert equipped charm %q: %w", charmID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
