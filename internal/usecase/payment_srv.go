package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/data/repository"
	"phone-repair/pkg/cache"
	"phone-repair/pkg/metrics"
	"phone-repair/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Webhook outcomes, also used as metric labels.
const (
	WebhookApplied   = "applied"
	WebhookNoop      = "noop"
	WebhookDuplicate = "duplicate"
	WebhookIgnored   = "ignored"
	WebhookFailed    = "failed"
)

type PaymentService interface {
	// HandleWebhook verifies and applies a payment provider event. Only an
	// unverifiable delivery returns an error; processing failures are logged.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error)
}

type paymentService struct {
	bookings repository.BookingRepository
	gateway  payment.Gateway
	dedup    *cache.Deduper
	notify   *notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewPaymentService(bookings repository.BookingRepository, notify *notifier, deps Deps, log *zap.Logger) PaymentService {
	return &paymentService{
		bookings: bookings,
		gateway:  deps.Gateway,
		dedup:    deps.Deduper,
		notify:   notify,
		metrics:  deps.Metrics,
		log:      log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error) {
	if s.gateway == nil {
		return "", payment.ErrNotConfigured
	}

	// 1. Verify before trusting anything in the payload
	event, err := s.gateway.ParseWebhook(payload, signature)
	if errors.Is(err, payment.ErrInvalidSignature) {
		s.log.Warn("Rejected webhook with bad signature", zap.Error(err))
		s.metrics.WebhookEvent("unknown", "rejected")
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		return "", fmt.Errorf("parse webhook: %w", err)
	}

	// 2. Drop replays of the same event
	first, err := s.dedup.FirstSeen(ctx, event.ID)
	if err != nil {
		s.log.Warn("Webhook dedup unavailable, processing anyway", zap.Error(err), zap.String("event_id", event.ID))
	}
	if !first {
		s.log.Info("Duplicate webhook delivery", zap.String("event_id", event.ID), zap.String("type", event.Type))
		s.metrics.WebhookEvent(event.Type, WebhookDuplicate)
		return WebhookDuplicate, nil
	}

	// 3. Apply
	outcome := s.apply(ctx, event)
	if outcome == WebhookFailed {
		if err := s.dedup.Forget(ctx, event.ID); err != nil {
			s.log.Warn("Failed to release webhook dedup key", zap.Error(err), zap.String("event_id", event.ID))
		}
	}

	s.metrics.WebhookEvent(event.Type, outcome)
	return outcome, nil
}

func (s *paymentService) apply(ctx context.Context, event *payment.Event) string {
	var bookingID *uuid.UUID
	if id, err := uuid.Parse(event.BookingID); err == nil {
		bookingID = &id
	}

	var (
		booking *entity.Booking
		err     error
	)

	switch event.Type {
	case payment.EventCheckoutCompleted:
		if !event.Paid {
			// Delayed methods settle later through async_payment_succeeded.
			return WebhookIgnored
		}
		booking, err = s.bookings.MarkPaid(ctx, event.SessionID, bookingID)
	case payment.EventAsyncPaymentSucceeded:
		booking, err = s.bookings.MarkPaid(ctx, event.SessionID, bookingID)
	case payment.EventAsyncPaymentFailed, payment.EventCheckoutExpired:
		booking, err = s.bookings.MarkPaymentFailed(ctx, event.SessionID, bookingID)
	default:
		return WebhookIgnored
	}

	if err != nil {
		s.log.Error("Failed to apply webhook",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.String("session_id", event.SessionID),
		)
		return WebhookFailed
	}

	if booking == nil {
		s.log.Info("Webhook changed nothing",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.SessionID),
		)
		return WebhookNoop
	}

	if booking.PaymentStatus != nil && *booking.PaymentStatus == entity.PaymentStatusCompleted {
		s.notify.PaymentReceived(booking)
	}

	s.log.Info("Webhook applied",
		zap.String("event_id", event.ID),
		zap.String("booking_id", booking.ID.String()),
		zap.String("type", event.Type),
		zap.Time("at", time.Now()),
	)
	return WebhookApplied
}
