package mesocycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mvihanto/repcycle/internal/sqlite"
)

// sqliteLibraryRepository implements libraryRepository. The library is
// seeded from fixtures and read-only at runtime.
type sqliteLibraryRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newLibraryRepository(db *sqlite.Database, logger *slog.Logger) libraryRepository {
	return &sqliteLibraryRepository{db: db, logger: logger}
}

// List retrieves all library exercises ordered by name.
func (r *sqliteLibraryRepository) List(ctx context.Context) (_ []LibraryExercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT name, muscle_group, description_markdown
		FROM exercise_library
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query exercise library: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []LibraryExercise
	for rows.Next() {
		var ex LibraryExercise
		if err = rows.Scan(&ex.Name, &ex.MuscleGroup, &ex.DescriptionMarkdown); err != nil {
			return nil, fmt.Errorf("scan library row: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}

// MuscleGroups maps exercise name to muscle group for the analytics
// computations.
func (r *sqliteLibraryRepository) MuscleGroups(ctx context.Context) (map[string]string, error) {
	exercises, err := r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	groups := make(map[string]string, len(exercises))
	for _, ex := range exercises {
		groups[ex.Name] = ex.MuscleGroup
	}
	return groups, nil
}
