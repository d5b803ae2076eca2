package sqlite

import (
	"testing"

	"github.com/myrjola/repquest/internal/testhelpers"
)

func TestNewDatabase(t *testing.T) {
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase returned unexpected error: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	var exerciseCount int
	if err := db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM exercises").Scan(&exerciseCount); err != nil {
		t.Fatalf("count exercises: %v", err)
	}
	if exerciseCount == 0 {
		t.Error("fixtures did not seed the exercise catalog")
	}

	// Schema apply and fixtures must be idempotent.
	if err := db.applySchema(ctx); err != nil {
		t.Errorf("re-applying schema: %v", err)
	}
	if _, err := db.ReadWrite.ExecContext(ctx, fixtures); err != nil {
		t.Errorf("re-applying fixtures: %v", err)
	}
	var recount int
	if err := db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM exercises").Scan(&recount); err != nil {
		t.Fatalf("recount exercises: %v", err)
	}
	if recount != exerciseCount {
		t.Errorf("fixture re-apply changed exercise count from %d to %d", exerciseCount, recount)
	}
}
