package workout

import (
	"log/slog"

	"github.com/myrjola/repquest/internal/sqlite"
)

// baseRepository carries the shared database handle.
type baseRepository struct {
	db *sqlite.Database
}

func newBaseRepository(db *sqlite.Database) baseRepository {
	return baseRepository{db: db}
}

// repository groups the per-aggregate repositories behind one struct so the
// service has a single dependency.
type repository struct {
	users     *sqliteUserRepository
	exercises *sqliteExerciseRepository
	sessions  *sqliteSessionRepository
	baselines *sqliteBaselineRepository
	progress  *sqliteProgressRepository
	charms    *sqliteCharmRepository
}

type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{db: db, logger: logger}
}

func (f *repositoryFactory) newRepository() *repository {
	exercises := newSQLiteExerciseRepository(f.db)
	return &repository{
		users:     newSQLiteUserRepository(f.db),
		exercises: exercises,
		sessions:  newSQLiteSessionRepository(f.db, f.logger, exercises),
		baselines: newSQLiteBaselineRepository(f.db),
		progress:  newSQLiteProgressRepository(f.db),
		charms:    newSQLiteCharmRepository(f.db),
	}
}
