package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// slotCatalogID keys the single catalog row.
const slotCatalogID = 1

type SlotCatalogRepository interface {
	// Get returns nil when no catalog has been saved yet.
	Get(ctx context.Context) (*entity.SlotCatalog, error)
	Replace(ctx context.Context, hours []string, at time.Time) error
}

type slotCatalogRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSlotCatalogRepository(db database.PgxIface, log *zap.Logger) SlotCatalogRepository {
	return &slotCatalogRepository{
		db:  db,
		log: log.With(zap.String("repository", "slot_catalog")),
	}
}

func (r *slotCatalogRepository) Get(ctx context.Context) (*entity.SlotCatalog, error) {
	query := `SELECT hours, updated_at FROM slot_catalog WHERE id = $1`

	var catalog entity.SlotCatalog
	err := r.db.QueryRow(ctx, query, slotCatalogID).Scan(&catalog.Hours, &catalog.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to load slot catalog", zap.Error(err))
		return nil, fmt.Errorf("load slot catalog: %w", err)
	}

	return &catalog, nil
}

// Replace overwrites the catalog and appends the new version to slot_catalog_history.
func (r *slotCatalogRepository) Replace(ctx context.Context, hours []string, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin slot catalog tx: %w", err)
	}

	upsert := `
		INSERT INTO slot_catalog (id, hours, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET hours = EXCLUDED.hours, updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.Exec(ctx, upsert, slotCatalogID, hours, at); err != nil {
		_ = tx.Rollback(ctx)
		r.log.Error("Failed to upsert slot catalog", zap.Error(err), zap.Strings("hours", hours))
		return fmt.Errorf("upsert slot catalog: %w", err)
	}

	history := `INSERT INTO slot_catalog_history (hours, created_at) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, history, hours, at); err != nil {
		_ = tx.Rollback(ctx)
		r.log.Error("Failed to record slot catalog history", zap.Error(err))
		return fmt.Errorf("record slot catalog history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit slot catalog", zap.Error(err))
		return fmt.Errorf("commit slot catalog: %w", err)
	}

	r.log.Info("Slot catalog replaced", zap.Strings("hours", hours))
	return nil
}
