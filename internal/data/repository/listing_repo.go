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

type ListingFilter struct {
	Statuses []entity.ListingStatus
	Brand    string
	UserID   *uuid.UUID
}

func (f ListingFilter) apply(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	if len(f.Statuses) > 0 {
		b = b.Where(squirrel.Eq{"status": f.Statuses})
	}
	if f.Brand != "" {
		b = b.Where(squirrel.ILike{"brand": f.Brand})
	}
	if f.UserID != nil {
		b = b.Where(squirrel.Eq{"user_id": *f.UserID})
	}
	return b
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.PhoneListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PhoneListing, error)
	FindAll(ctx context.Context, filter ListingFilter, limit, offset int) ([]*entity.PhoneListing, error)
	Count(ctx context.Context, filter ListingFilter) (int64, error)
	Moderate(ctx context.Context, id uuid.UUID, status entity.ListingStatus, adminNote *string) (*entity.PhoneListing, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type listingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewListingRepository(db database.PgxIface, log *zap.Logger) ListingRepository {
	return &listingRepository{
		db:  db,
		log: log.With(zap.String("repository", "listing")),
	}
}

var listingColumns = []string{
	"id", "user_id", "brand", "model", "storage", "condition", "price",
	"description", "images", "contact_name", "contact_email", "contact_phone",
	"status", "admin_note", "created_at", "updated_at",
}

func scanListing(row pgx.Row) (*entity.PhoneListing, error) {
	var l entity.PhoneListing
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.Brand,
		&l.Model,
		&l.Storage,
		&l.Condition,
		&l.Price,
		&l.Description,
		&l.Images,
		&l.ContactName,
		&l.ContactEmail,
		&l.ContactPhone,
		&l.Status,
		&l.AdminNote,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.PhoneListing) error {
	query, args, err := database.Psql.Insert("phone_listings").
		Columns(listingColumns...).
		Values(
			listing.ID,
			listing.UserID,
			listing.Brand,
			listing.Model,
			listing.Storage,
			listing.Condition,
			listing.Price,
			listing.Description,
			listing.Images,
			listing.ContactName,
			listing.ContactEmail,
			listing.ContactPhone,
			listing.Status,
			listing.AdminNote,
			listing.CreatedAt,
			listing.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert listing: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to create listing",
			zap.Error(err),
			zap.String("brand", listing.Brand),
			zap.String("model", listing.Model),
		)
		return fmt.Errorf("create listing: %w", err)
	}

	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PhoneListing, error) {
	query, args, err := database.Psql.Select(listingColumns...).
		From("phone_listings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find listing: %w", err)
	}

	listing, err := scanListing(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find listing",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return nil, fmt.Errorf("find listing %s: %w", id.String(), err)
	}

	return listing, nil
}

func (r *listingRepository) FindAll(ctx context.Context, filter ListingFilter, limit, offset int) ([]*entity.PhoneListing, error) {
	builder := filter.apply(database.Psql.Select(listingColumns...).From("phone_listings")).
		OrderBy("created_at DESC")

	query, args, err := database.Page(builder, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list listings: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list listings", zap.Error(err))
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	listings := make([]*entity.PhoneListing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			r.log.Error("Failed to scan listing row", zap.Error(err))
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return listings, nil
}

func (r *listingRepository) Count(ctx context.Context, filter ListingFilter) (int64, error) {
	query, args, err := filter.apply(database.Psql.Select("COUNT(*)").From("phone_listings")).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count listings: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count listings", zap.Error(err))
		return 0, fmt.Errorf("count listings: %w", err)
	}

	return count, nil
}

func (r *listingRepository) Moderate(ctx context.Context, id uuid.UUID, status entity.ListingStatus, adminNote *string) (*entity.PhoneListing, error) {
	query, args, err := database.Psql.Update("phone_listings").
		Set("status", status).
		Set("admin_note", squirrel.Expr("COALESCE(?, admin_note)", adminNote)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(listingColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build moderate listing: %w", err)
	}

	listing, err := scanListing(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("listing %s: %w", id.String(), ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to moderate listing",
			zap.Error(err),
			zap.String("listing_id", id.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("moderate listing %s: %w", id.String(), err)
	}

	return listing, nil
}

func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM phone_listings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete listing",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return fmt.Errorf("delete listing %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Listing deleted", zap.String("listing_id", id.String()))
	return nil
}
