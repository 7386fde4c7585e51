package repository

import (
	"context"
	"errors"
	"fmt"

	"phone-repair/internal/data/entity"
	"phone-repair/pkg/database"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PhoneFilter struct {
	Status entity.PhoneStatus
	Brand  string
}

func (f PhoneFilter) apply(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	if f.Status != "" {
		b = b.Where(squirrel.Eq{"status": f.Status})
	}
	if f.Brand != "" {
		b = b.Where(squirrel.ILike{"brand": f.Brand})
	}
	return b
}

type PhoneRepository interface {
	Create(ctx context.Context, phone *entity.PhoneForSale) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PhoneForSale, error)
	FindAll(ctx context.Context, filter PhoneFilter, limit, offset int) ([]*entity.PhoneForSale, error)
	Count(ctx context.Context, filter PhoneFilter) (int64, error)
	Update(ctx context.Context, phone *entity.PhoneForSale) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.PhoneStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type phoneRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPhoneRepository(db database.PgxIface, log *zap.Logger) PhoneRepository {
	return &phoneRepository{
		db:  db,
		log: log.With(zap.String("repository", "phone")),
	}
}

var phoneColumns = []string{
	"id", "brand", "model", "storage", "color", "condition", "price",
	"description", "images", "status", "created_at", "updated_at",
}

func scanPhone(row pgx.Row) (*entity.PhoneForSale, error) {
	var p entity.PhoneForSale
	err := row.Scan(
		&p.ID,
		&p.Brand,
		&p.Model,
		&p.Storage,
		&p.Color,
		&p.Condition,
		&p.Price,
		&p.Description,
		&p.Images,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *phoneRepository) Create(ctx context.Context, phone *entity.PhoneForSale) error {
	query, args, err := database.Psql.Insert("phones_for_sale").
		Columns(phoneColumns...).
		Values(
			phone.ID,
			phone.Brand,
			phone.Model,
			phone.Storage,
			phone.Color,
			phone.Condition,
			phone.Price,
			phone.Description,
			phone.Images,
			phone.Status,
			phone.CreatedAt,
			phone.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert phone: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to create phone",
			zap.Error(err),
			zap.String("brand", phone.Brand),
			zap.String("model", phone.Model),
		)
		return fmt.Errorf("create phone: %w", err)
	}

	return nil
}

func (r *phoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PhoneForSale, error) {
	query := `SELECT ` + joinColumns(phoneColumns) + ` FROM phones_for_sale WHERE id = $1`

	phone, err := scanPhone(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find phone",
			zap.Error(err),
			zap.String("phone_id", id.String()),
		)
		return nil, fmt.Errorf("find phone %s: %w", id.String(), err)
	}

	return phone, nil
}

func (r *phoneRepository) FindAll(ctx context.Context, filter PhoneFilter, limit, offset int) ([]*entity.PhoneForSale, error) {
	builder := filter.apply(database.Psql.Select(phoneColumns...).From("phones_for_sale")).
		OrderBy("created_at DESC")

	query, args, err := database.Page(builder, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list phones: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list phones", zap.Error(err))
		return nil, fmt.Errorf("list phones: %w", err)
	}
	defer rows.Close()

	phones := make([]*entity.PhoneForSale, 0)
	for rows.Next() {
		phone, err := scanPhone(rows)
		if err != nil {
			r.log.Error("Failed to scan phone row", zap.Error(err))
			return nil, fmt.Errorf("scan phone row: %w", err)
		}
		phones = append(phones, phone)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phones: %w", err)
	}

	return phones, nil
}

func (r *phoneRepository) Count(ctx context.Context, filter PhoneFilter) (int64, error) {
	query, args, err := filter.apply(database.Psql.Select("COUNT(*)").From("phones_for_sale")).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count phones: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count phones", zap.Error(err))
		return 0, fmt.Errorf("count phones: %w", err)
	}

	return count, nil
}

func (r *phoneRepository) Update(ctx context.Context, phone *entity.PhoneForSale) error {
	query := `
		UPDATE phones_for_sale
		SET brand = $2, model = $3, storage = $4, color = $5, condition = $6,
		    price = $7, description = $8, images = $9, status = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		phone.ID,
		phone.Brand,
		phone.Model,
		phone.Storage,
		phone.Color,
		phone.Condition,
		phone.Price,
		phone.Description,
		phone.Images,
		phone.Status,
		phone.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update phone",
			zap.Error(err),
			zap.String("phone_id", phone.ID.String()),
		)
		return fmt.Errorf("update phone %s: %w", phone.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("phone %s: %w", phone.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *phoneRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.PhoneStatus) error {
	query := `UPDATE phones_for_sale SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update phone status",
			zap.Error(err),
			zap.String("phone_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update phone %s status: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("phone %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *phoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM phones_for_sale WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete phone",
			zap.Error(err),
			zap.String("phone_id", id.String()),
		)
		return fmt.Errorf("delete phone %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("phone %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Phone deleted", zap.String("phone_id", id.String()))
	return nil
}
