package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"phone-repair/pkg/utils"
)

var (
	ErrNotConfigured    = errors.New("payment gateway not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Event types the booking flow reacts to.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventCheckoutExpired       = "checkout.session.expired"
)

type LineItem struct {
	Name   string
	Amount float64
}

type CheckoutRequest struct {
	BookingID     string
	Reference     string
	CustomerEmail string
	Items         []LineItem
}

type Session struct {
	ID  string
	URL string
}

// Event is a verified webhook delivery reduced to what bookings need.
type Event struct {
	ID        string
	Type      string
	SessionID string
	BookingID string
	Paid      bool
}

// Gateway creates hosted checkouts and verifies webhook deliveries.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type stripeGateway struct {
	api    *client.API
	config utils.StripeConfig
	log    *zap.Logger
}

func NewStripe(config utils.StripeConfig, log *zap.Logger) Gateway {
	g := &stripeGateway{
		config: config,
		log:    log.With(zap.String("component", "stripe")),
	}
	if config.SecretKey != "" {
		g.api = client.New(config.SecretKey, nil)
	}
	return g
}

func (g *stripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Session, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	if len(req.Items) == 0 {
		return nil, errors.New("checkout needs at least one item")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.config.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(ToMinorUnits(item.Amount)),
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.config.SuccessURL),
		CancelURL:         stripe.String(g.config.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID),
		LineItems:         lineItems,
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("reference", req.Reference)

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.log.Error("Failed to create checkout session",
			zap.Error(err),
			zap.String("booking_id", req.BookingID),
		)
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	return ParseEvent(payload, signature, g.config.WebhookSecret)
}

// ParseEvent verifies the Stripe-Signature header against secret and decodes
// checkout session events. Other event types come back with only ID and Type set.
func ParseEvent(payload []byte, signature, secret string) (*Event, error) {
	if secret == "" {
		return nil, ErrNotConfigured
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}

	switch out.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded, EventAsyncPaymentFailed, EventCheckoutExpired:
	default:
		return out, nil
	}

	if evt.Data == nil {
		return nil, errors.New("event has no data")
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	out.SessionID = session.ID
	out.BookingID = session.Metadata["booking_id"]
	if out.BookingID == "" {
		out.BookingID = session.ClientReferenceID
	}
	out.Paid = session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid

	return out, nil
}

// ToMinorUnits converts a decimal amount to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
