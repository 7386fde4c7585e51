package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/pkg/database"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BookingFilter narrows booking lists. Zero fields are ignored.
type BookingFilter struct {
	Status entity.BookingStatus
	Type   entity.BookingType
	Date   *time.Time
	UserID *uuid.UUID
}

func (f BookingFilter) apply(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	if f.Status != "" {
		b = b.Where(squirrel.Eq{"status": f.Status})
	}
	if f.Type != "" {
		b = b.Where(squirrel.Eq{"type": f.Type})
	}
	if f.Date != nil {
		b = b.Where(squirrel.Eq{"date": *f.Date})
	}
	if f.UserID != nil {
		b = b.Where(squirrel.Eq{"user_id": *f.UserID})
	}
	return b
}

type BookingRepository interface {
	// Create stores the booking. Each phone in sellPhones moves from AVAILABLE
	// to SOLD in the same transaction; ErrUnavailable means nothing was stored.
	Create(ctx context.Context, booking *entity.Booking, sellPhones ...uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.Booking, error)
	Count(ctx context.Context, filter BookingFilter) (int64, error)
	CountActiveAtSlot(ctx context.Context, date time.Time, timeSlot string) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, notes *string) (*entity.Booking, error)

	// MarkPaid confirms the booking matching paymentRef (or bookingID) unless its
	// payment is already completed. A nil booking means nothing changed.
	MarkPaid(ctx context.Context, paymentRef string, bookingID *uuid.UUID) (*entity.Booking, error)
	MarkPaymentFailed(ctx context.Context, paymentRef string, bookingID *uuid.UUID) (*entity.Booking, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

var bookingColumns = []string{
	"id", "reference", "user_id", "date", "time_slot",
	"customer_name", "customer_email", "customer_phone", "customer_address",
	"notes", "device_details", "items", "status", "type",
	"brand", "model", "issues", "total_amount",
	"payment_method", "payment_status", "payment_ref",
	"created_at", "updated_at",
}

const bookingReturning = `id, reference, user_id, date, time_slot,
		customer_name, customer_email, customer_phone, customer_address,
		notes, device_details, items, status, type,
		brand, model, issues, total_amount,
		payment_method, payment_status, payment_ref,
		created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.UserID,
		&b.Date,
		&b.TimeSlot,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.CustomerAddress,
		&b.Notes,
		&b.DeviceDetails,
		&b.Items,
		&b.Status,
		&b.Type,
		&b.Brand,
		&b.Model,
		&b.Issues,
		&b.TotalAmount,
		&b.PaymentMethod,
		&b.PaymentStatus,
		&b.PaymentRef,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking, sellPhones ...uuid.UUID) error {
	query, args, err := database.Psql.Insert("bookings").
		Columns(bookingColumns...).
		Values(
			booking.ID,
			booking.Reference,
			booking.UserID,
			booking.Date,
			booking.TimeSlot,
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			booking.CustomerAddress,
			booking.Notes,
			booking.DeviceDetails,
			booking.Items,
			booking.Status,
			booking.Type,
			booking.Brand,
			booking.Model,
			booking.Issues,
			booking.TotalAmount,
			booking.PaymentMethod,
			booking.PaymentStatus,
			booking.PaymentRef,
			booking.CreatedAt,
			booking.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking: %w", err)
	}

	if len(sellPhones) == 0 {
		if _, err := r.db.Exec(ctx, query, args...); err != nil {
			r.log.Error("Failed to create booking",
				zap.Error(err),
				zap.String("reference", booking.Reference),
				zap.String("type", string(booking.Type)),
			)
			return fmt.Errorf("create booking %s: %w", booking.Reference, err)
		}
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin booking tx: %w", err)
	}

	sell := `UPDATE phones_for_sale SET status = 'SOLD', updated_at = NOW() WHERE id = $1 AND status = 'AVAILABLE'`
	for _, phoneID := range sellPhones {
		result, err := tx.Exec(ctx, sell, phoneID)
		if err != nil {
			_ = tx.Rollback(ctx)
			r.log.Error("Failed to mark phone sold",
				zap.Error(err),
				zap.String("phone_id", phoneID.String()),
			)
			return fmt.Errorf("mark phone %s sold: %w", phoneID.String(), err)
		}
		if result.RowsAffected() != 1 {
			_ = tx.Rollback(ctx)
			r.log.Warn("Phone no longer available",
				zap.String("phone_id", phoneID.String()),
				zap.String("reference", booking.Reference),
			)
			return fmt.Errorf("phone %s: %w", phoneID.String(), ErrUnavailable)
		}
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		_ = tx.Rollback(ctx)
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
			zap.String("type", string(booking.Type)),
		)
		return fmt.Errorf("create booking %s: %w", booking.Reference, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit booking", zap.Error(err), zap.String("reference", booking.Reference))
		return fmt.Errorf("commit booking %s: %w", booking.Reference, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingReturning + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	builder := filter.apply(database.Psql.Select(bookingColumns...).From("bookings")).
		OrderBy("created_at DESC")

	query, args, err := database.Page(builder, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*entity.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) Count(ctx context.Context, filter BookingFilter) (int64, error) {
	query, args, err := filter.apply(database.Psql.Select("COUNT(*)").From("bookings")).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) CountActiveAtSlot(ctx context.Context, date time.Time, timeSlot string) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE date = $1 AND time_slot = $2 AND status <> 'CANCELLED'`

	var count int64
	if err := r.db.QueryRow(ctx, query, date, timeSlot).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings at slot",
			zap.Error(err),
			zap.Time("date", date),
			zap.String("time_slot", timeSlot),
		)
		return 0, fmt.Errorf("count bookings at %s %s: %w", date.Format(time.DateOnly), timeSlot, err)
	}

	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, notes *string) (*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $2, notes = COALESCE($3, notes), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingReturning

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id, status, notes))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("update booking %s status to %s: %w", id.String(), status, err)
	}

	return booking, nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, paymentRef string, bookingID *uuid.UUID) (*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'completed', status = 'CONFIRMED', updated_at = NOW()
		WHERE (payment_ref = $1 OR id = $2)
		  AND payment_status IS DISTINCT FROM 'completed'
		RETURNING ` + bookingReturning

	return r.updatePayment(ctx, query, "completed", paymentRef, bookingID)
}

func (r *bookingRepository) MarkPaymentFailed(ctx context.Context, paymentRef string, bookingID *uuid.UUID) (*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'failed', updated_at = NOW()
		WHERE (payment_ref = $1 OR id = $2)
		  AND payment_status = 'pending'
		RETURNING ` + bookingReturning

	return r.updatePayment(ctx, query, "failed", paymentRef, bookingID)
}

func (r *bookingRepository) updatePayment(ctx context.Context, query, outcome, paymentRef string, bookingID *uuid.UUID) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, paymentRef, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to record payment outcome",
			zap.Error(err),
			zap.String("payment_ref", paymentRef),
			zap.String("outcome", outcome),
		)
		return nil, fmt.Errorf("mark payment %s %s: %w", paymentRef, outcome, err)
	}

	r.log.Info("Booking payment updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_ref", paymentRef),
		zap.String("outcome", outcome),
	)
	return booking, nil
}
