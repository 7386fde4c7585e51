package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"phone-repair/pkg/utils"
)

const testSecret = "whsec_test"

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func checkoutPayload(eventID, eventType, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": %q,
  "object": "event",
  "api_version": "2020-08-27",
  "type": %q,
  "data": {"object": {
    "id": "cs_test_1",
    "object": "checkout.session",
    "payment_status": %q,
    "client_reference_id": "b-ref",
    "metadata": {"booking_id": "b-1"}
  }}
}`, eventID, eventType, paymentStatus))
}

func TestParseEventCheckoutCompleted(t *testing.T) {
	payload := checkoutPayload("evt_1", EventCheckoutCompleted, "paid")

	evt, err := ParseEvent(payload, sign(payload, testSecret, time.Now()), testSecret)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, EventCheckoutCompleted, evt.Type)
	assert.Equal(t, "cs_test_1", evt.SessionID)
	assert.Equal(t, "b-1", evt.BookingID)
	assert.True(t, evt.Paid)
}

func TestParseEventUnpaidSession(t *testing.T) {
	payload := checkoutPayload("evt_2", EventCheckoutCompleted, "unpaid")

	evt, err := ParseEvent(payload, sign(payload, testSecret, time.Now()), testSecret)
	require.NoError(t, err)
	assert.False(t, evt.Paid)
}

func TestParseEventBadSignature(t *testing.T) {
	payload := checkoutPayload("evt_3", EventCheckoutCompleted, "paid")

	_, err := ParseEvent(payload, sign(payload, "whsec_other", time.Now()), testSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSignature))

	_, err = ParseEvent(payload, "", testSecret)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestParseEventStaleTimestamp(t *testing.T) {
	payload := checkoutPayload("evt_4", EventCheckoutCompleted, "paid")

	_, err := ParseEvent(payload, sign(payload, testSecret, time.Now().Add(-time.Hour)), testSecret)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestParseEventIgnoredType(t *testing.T) {
	payload := []byte(`{"id":"evt_5","object":"event","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)

	evt, err := ParseEvent(payload, sign(payload, testSecret, time.Now()), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "customer.created", evt.Type)
	assert.Empty(t, evt.SessionID)
}

func TestParseEventWithoutSecret(t *testing.T) {
	_, err := ParseEvent([]byte(`{}`), "t=1,v1=00", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateCheckoutNotConfigured(t *testing.T) {
	g := NewStripe(utils.StripeConfig{}, zap.NewNop())

	_, err := g.CreateCheckout(context.Background(), CheckoutRequest{
		BookingID: "b-1",
		Items:     []LineItem{{Name: "Repair", Amount: 10}},
	})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(23400), ToMinorUnits(234))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}
