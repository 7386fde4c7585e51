package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AvailableDayRepository interface {
	// Upsert inserts the day or, when the date already exists, overwrites that row.
	Upsert(ctx context.Context, day *entity.AvailableDay) (*entity.AvailableDay, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AvailableDay, error)
	FindActiveFrom(ctx context.Context, from time.Time) ([]*entity.AvailableDay, error)
	FindAll(ctx context.Context) ([]*entity.AvailableDay, error)
	IsBookable(ctx context.Context, date time.Time) (bool, error)
	Update(ctx context.Context, day *entity.AvailableDay) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type availableDayRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAvailableDayRepository(db database.PgxIface, log *zap.Logger) AvailableDayRepository {
	return &availableDayRepository{
		db:  db,
		log: log.With(zap.String("repository", "available_day")),
	}
}

const availableDayColumns = `id, date, is_full_day, note, is_active, created_at, updated_at`

func scanAvailableDay(row pgx.Row) (*entity.AvailableDay, error) {
	var day entity.AvailableDay
	err := row.Scan(
		&day.ID,
		&day.Date,
		&day.IsFullDay,
		&day.Note,
		&day.IsActive,
		&day.CreatedAt,
		&day.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *availableDayRepository) Upsert(ctx context.Context, day *entity.AvailableDay) (*entity.AvailableDay, error) {
	query := `
		INSERT INTO available_days (id, date, is_full_day, note, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE
		SET is_full_day = EXCLUDED.is_full_day,
		    note = EXCLUDED.note,
		    is_active = EXCLUDED.is_active,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + availableDayColumns

	saved, err := scanAvailableDay(r.db.QueryRow(ctx, query,
		day.ID,
		day.Date,
		day.IsFullDay,
		day.Note,
		day.IsActive,
		day.CreatedAt,
		day.UpdatedAt,
	))
	if err != nil {
		r.log.Error("Failed to upsert available day",
			zap.Error(err),
			zap.Time("date", day.Date),
		)
		return nil, fmt.Errorf("upsert available day %s: %w", day.Date.Format(time.DateOnly), err)
	}

	return saved, nil
}

func (r *availableDayRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AvailableDay, error) {
	query := `SELECT ` + availableDayColumns + ` FROM available_days WHERE id = $1`

	day, err := scanAvailableDay(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find available day",
			zap.Error(err),
			zap.String("day_id", id.String()),
		)
		return nil, fmt.Errorf("find available day %s: %w", id.String(), err)
	}

	return day, nil
}

func (r *availableDayRepository) FindActiveFrom(ctx context.Context, from time.Time) ([]*entity.AvailableDay, error) {
	query := `SELECT ` + availableDayColumns + `
		FROM available_days
		WHERE is_active AND date >= $1
		ORDER BY date ASC`

	return r.list(ctx, query, from)
}

func (r *availableDayRepository) FindAll(ctx context.Context) ([]*entity.AvailableDay, error) {
	query := `SELECT ` + availableDayColumns + ` FROM available_days ORDER BY date ASC`

	return r.list(ctx, query)
}

func (r *availableDayRepository) list(ctx context.Context, query string, args ...any) ([]*entity.AvailableDay, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list available days", zap.Error(err))
		return nil, fmt.Errorf("list available days: %w", err)
	}
	defer rows.Close()

	days := make([]*entity.AvailableDay, 0)
	for rows.Next() {
		day, err := scanAvailableDay(rows)
		if err != nil {
			r.log.Error("Failed to scan available day row", zap.Error(err))
			return nil, fmt.Errorf("scan available day row: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate available days: %w", err)
	}

	return days, nil
}

func (r *availableDayRepository) IsBookable(ctx context.Context, date time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM available_days WHERE date = $1 AND is_active)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, date).Scan(&exists); err != nil {
		r.log.Error("Failed to check available day",
			zap.Error(err),
			zap.Time("date", date),
		)
		return false, fmt.Errorf("check available day %s: %w", date.Format(time.DateOnly), err)
	}

	return exists, nil
}

func (r *availableDayRepository) Update(ctx context.Context, day *entity.AvailableDay) error {
	query := `
		UPDATE available_days
		SET date = $2, is_full_day = $3, note = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		day.ID,
		day.Date,
		day.IsFullDay,
		day.Note,
		day.IsActive,
		day.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("available day %s: %w", day.Date.Format(time.DateOnly), ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to update available day",
			zap.Error(err),
			zap.String("day_id", day.ID.String()),
		)
		return fmt.Errorf("update available day %s: %w", day.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("available day %s: %w", day.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *availableDayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM available_days WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete available day",
			zap.Error(err),
			zap.String("day_id", id.String()),
		)
		return fmt.Errorf("delete available day %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("available day %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Available day deleted", zap.String("day_id", id.String()))
	return nil
}
