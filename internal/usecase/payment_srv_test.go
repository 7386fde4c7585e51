package usecase

import (
	"context"
	"testing"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/pkg/cache"
	"phone-repair/pkg/payment"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingOnlineBooking(t *testing.T, f *fixture, ref string) *entity.Booking {
	t.Helper()
	pending := entity.PaymentStatusPending
	total := 234.0
	b := &entity.Booking{
		BaseNoDelete:  entity.BaseNoDelete{ID: uuid.New(), CreatedAt: fixedNow},
		Reference:     "PR-TEST",
		Date:          day("2030-03-11"),
		TimeSlot:      "11:00",
		CustomerName:  "A",
		CustomerEmail: "a@x.com",
		CustomerPhone: "123",
		Status:        entity.BookingStatusPending,
		Type:          entity.BookingTypeRepair,
		Issues:        []string{},
		TotalAmount:   &total,
		PaymentMethod: entity.PaymentMethodOnline,
		PaymentStatus: &pending,
		PaymentRef:    &ref,
	}
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}

func withRedisDedup(t *testing.T, f *fixture) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.deps.Deduper = cache.NewDeduper(client, "stripe:event:", 7*24*time.Hour)
	return mr
}

func TestWebhookPaymentSucceededAppliesOnce(t *testing.T) {
	f := newFixture(t)
	mr := withRedisDedup(t, f)
	b := pendingOnlineBooking(t, f, "cs_1")
	f.gateway.events["paid"] = &payment.Event{
		ID: "evt_1", Type: payment.EventCheckoutCompleted, SessionID: "cs_1", Paid: true,
	}
	svc := f.service()

	outcome, err := svc.Payment.HandleWebhook(context.Background(), []byte("paid"), "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookApplied, outcome)

	stored, _ := f.bookings.FindByID(context.Background(), b.ID)
	assert.Equal(t, entity.PaymentStatusCompleted, *stored.PaymentStatus)
	assert.Equal(t, entity.BookingStatusConfirmed, stored.Status)
	assert.True(t, mr.Exists("stripe:event:evt_1"))

	msg := f.mail.next(t)
	assert.Contains(t, msg.Subject, "Payment received")

	outcome, err = svc.Payment.HandleWebhook(context.Background(), []byte("paid"), "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookDuplicate, outcome)
}

func TestWebhookReplayWithoutRedisChangesNothing(t *testing.T) {
	f := newFixture(t)
	b := pendingOnlineBooking(t, f, "cs_2")
	f.gateway.events["async"] = &payment.Event{
		ID: "evt_2", Type: payment.EventAsyncPaymentSucceeded, SessionID: "cs_2",
	}
	svc := f.service()

	outcome, err := svc.Payment.HandleWebhook(context.Background(), []byte("async"), "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookApplied, outcome)

	outcome, err = svc.Payment.HandleWebhook(context.Background(), []byte("async"), "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookNoop, outcome)

	stored, _ := f.bookings.FindByID(context.Background(), b.ID)
	assert.Equal(t, entity.BookingStatusConfirmed, stored.Status)
}

func TestWebhookFallsBackToBookingID(t *testing.T) {
	f := newFixture(t)
	b := pendingOnlineBooking(t, f, "cs_other")
	f.gateway.events["paid"] = &payment.Event{
		ID: "evt_3", Type: payment.EventCheckoutCompleted, SessionID: "cs_unknown", BookingID: b.ID.String(), Paid: true,
	}
	svc := f.service()

	outcome, err := svc.Payment.HandleWebhook(context.Background(), []byte("paid"), "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookApplied, outcome)
}

func TestWebhookFailureAndExpiry(t *testing.T) {
	for _, eventType := range []string{payment.EventAsyncPaymentFailed, payment.EventCheckoutExpired} {
		t.Run(eventType, func(t *testing.T) {
			f := newFixture(t)
			b := pendingOnlineBooking(t, f, "cs_4")
			f.gateway.events["evt"] = &payment.Event{ID: "evt_4", Type: eventType, SessionID: "cs_4"}
			svc := f.service()

			outcome, err := svc.Payment.HandleWebhook(context.Background(), []byte("evt"), "sig")
			require.NoError(t, err)
			assert.Equal(t, WebhookApplied, outcome)

			stored, _ := f.bookings.FindByID(context.Background(), b.ID)
			assert.Equal(t, entity.PaymentStatusFailed, *stored.PaymentStatus)
			assert.Equal(t, entity.BookingStatusPending, stored.Status)
		})
	}
}

func TestWebhookIgnoresUnpaidAndUnknownEvents(t *testing.T) {
	f := newFixture(t)
	b := pendingOnlineBooking(t, f, "cs_5")
	f.gateway.events["unpaid"] = &payment.Event{ID: "evt_5", Type: payment.EventCheckoutCompleted, SessionID: "cs_5"}
	f.gateway.events["other"] = &payment.Event{ID: "evt_6", Type: "invoice.paid"}
	svc := f.service()

	for _, payload := range []string{"unpaid", "other"} {
		outcome, err := svc.Payment.HandleWebhook(context.Background(), []byte(payload), "sig")
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, outcome)
	}

	stored, _ := f.bookings.FindByID(context.Background(), b.ID)
	assert.Equal(t, entity.PaymentStatusPending, *stored.PaymentStatus)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Payment.HandleWebhook(context.Background(), []byte("{}"), "bad")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWebhookProcessingFailureAllowsRedelivery(t *testing.T) {
	f := newFixture(t)
	mr := withRedisDedup(t, f)
	b := pendingOnlineBooking(t, f, "cs_7")
	f.gateway.events["paid"] = &payment.Event{ID: "evt_7", Type: payment.EventCheckoutCompleted, SessionID: "cs_7", Paid: true}
	f.bookings.payErr = errStore
	svc := f.service()

	outcome, err := svc.Payment.HandleWebhook(context.Background(), []byte("paid"), "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookFailed, outcome)
	assert.False(t, mr.Exists("stripe:event:evt_7"))

	f.bookings.payErr = nil
	outcome, err = svc.Payment.HandleWebhook(context.Background(), []byte("paid"), "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookApplied, outcome)

	stored, _ := f.bookings.FindByID(context.Background(), b.ID)
	assert.Equal(t, entity.PaymentStatusCompleted, *stored.PaymentStatus)
}
