package mesocycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mvihanto/repcycle/internal/contexthelpers"
	"github.com/mvihanto/repcycle/internal/sqlite"
)

// sqliteMesocycleRepository implements mesocycleRepository.
type sqliteMesocycleRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newMesocycleRepository(db *sqlite.Database, logger *slog.Logger) mesocycleRepository {
	return &sqliteMesocycleRepository{db: db, logger: logger}
}

// Create persists a new mesocycle and returns it with the generated id.
func (r *sqliteMesocycleRepository) Create(ctx context.Context, meso Mesocycle) (Mesocycle, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	err := r.db.ReadWrite.QueryRowContext(ctx, `
		INSERT INTO mesocycles (user_id, name, start_date, end_date, days_per_week, total_weeks)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		userID, meso.Name, formatDate(meso.StartDate), formatDate(meso.EndDate),
		meso.DaysPerWeek, meso.TotalWeeks).Scan(&meso.ID)
	if err != nil {
		return Mesocycle{}, fmt.Errorf("insert mesocycle: %w", err)
	}
	meso.UserID = userID

	return meso, nil
}

// Get retrieves a mesocycle by id.
func (r *sqliteMesocycleRepository) Get(ctx context.Context, id int64) (Mesocycle, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	var (
		meso         Mesocycle
		startDateStr string
		endDateStr   string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, user_id, name, start_date, end_date, days_per_week, total_weeks
		FROM mesocycles
		WHERE id = ? AND user_id = ?`, id, userID).Scan(
		&meso.ID, &meso.UserID, &meso.Name, &startDateStr, &endDateStr,
		&meso.DaysPerWeek, &meso.TotalWeeks)
	if errors.Is(err, sql.ErrNoRows) {
		return Mesocycle{}, ErrNotFound
	}
	if err != nil {
		return Mesocycle{}, fmt.Errorf("query mesocycle: %w", err)
	}

	if meso.StartDate, err = parseDate(startDateStr); err != nil {
		return Mesocycle{}, fmt.Errorf("parse start date: %w", err)
	}
	if meso.EndDate, err = parseDate(endDateStr); err != nil {
		return Mesocycle{}, fmt.Errorf("parse end date: %w", err)
	}
	return meso, nil
}

// List retrieves the user's mesocycles, most recent first.
func (r *sqliteMesocycleRepository) List(ctx context.Context) (_ []Mesocycle, err error) {
	userID := contexthelpers.CurrentUserID(ctx)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, user_id, name, start_date, end_date, days_per_week, total_weeks
		FROM mesocycles
		WHERE user_id = ?
		ORDER BY start_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query mesocycles: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var mesocycles []Mesocycle
	for rows.Next() {
		var (
			meso         Mesocycle
			startDateStr string
			endDateStr   string
		)
		if err = rows.Scan(&meso.ID, &meso.UserID, &meso.Name, &startDateStr, &endDateStr,
			&meso.DaysPerWeek, &meso.TotalWeeks); err != nil {
			return nil, fmt.Errorf("scan mesocycle row: %w", err)
		}
		if meso.StartDate, err = parseDate(startDateStr); err != nil {
			return nil, fmt.Errorf("parse start date: %w", err)
		}
		if meso.EndDate, err = parseDate(endDateStr); err != nil {
			return nil, fmt.Errorf("parse end date: %w", err)
		}
		mesocycles = append(mesocycles, meso)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return mesocycles, nil
}

// Delete removes a mesocycle; workouts and exercises cascade.
func (r *sqliteMesocycleRepository) Delete(ctx context.Context, id int64) error {
	userID := contexthelpers.CurrentUserID(ctx)

	result, err := r.db.ReadWrite.ExecContext(ctx,
		`DELETE FROM mesocycles WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete mesocycle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
