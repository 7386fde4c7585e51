package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/pkg/mailer"
	"phone-repair/pkg/metrics"

	"go.uber.org/zap"
)

const mailTimeout = 30 * time.Second

// notifier sends customer emails in the background. Failures are logged only.
type notifier struct {
	mailer  mailer.Mailer
	metrics *metrics.Metrics
	log     *zap.Logger
}

func newNotifier(m mailer.Mailer, mt *metrics.Metrics, log *zap.Logger) *notifier {
	return &notifier{
		mailer:  m,
		metrics: mt,
		log:     log.With(zap.String("component", "notifier")),
	}
}

func (n *notifier) send(kind string, msg mailer.Message) {
	if n == nil || n.mailer == nil || msg.To == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		err := n.mailer.Send(ctx, msg)
		n.metrics.EmailSent(kind, err)
		if err != nil {
			n.log.Error("Failed to send email",
				zap.Error(err),
				zap.String("kind", kind),
				zap.String("to", msg.To),
			)
		}
	}()
}

func (n *notifier) BookingReceived(b *entity.Booking, checkoutURL string) {
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\n", b.CustomerName)
	fmt.Fprintf(&body, "We received your booking %s for %s at %s.\n", b.Reference, b.Date.Format(time.DateOnly), b.TimeSlot)
	if b.DeviceDetails != nil {
		fmt.Fprintf(&body, "Device: %s %s\n", b.DeviceDetails.Brand, b.DeviceDetails.Model)
		fmt.Fprintf(&body, "Issues: %s\n", strings.Join(b.DeviceDetails.Issues, ", "))
	}
	for _, item := range b.Items {
		fmt.Fprintf(&body, "- %s: %.2f\n", item.Title, item.Price)
	}
	if b.TotalAmount != nil {
		fmt.Fprintf(&body, "Total: %.2f\n", *b.TotalAmount)
	}
	fmt.Fprintf(&body, "Status: %s\n", b.Status)
	if checkoutURL != "" {
		fmt.Fprintf(&body, "\nComplete your payment here: %s\n", checkoutURL)
	}

	n.send("booking_received", mailer.Message{
		To:      b.CustomerEmail,
		Subject: "Booking " + b.Reference + " received",
		Body:    body.String(),
	})
}

func (n *notifier) BookingStatusChanged(b *entity.Booking) {
	body := fmt.Sprintf("Hello %s,\n\nYour booking %s on %s at %s is now %s.\n",
		b.CustomerName, b.Reference, b.Date.Format(time.DateOnly), b.TimeSlot, b.Status)
	if b.Notes != nil && *b.Notes != "" {
		body += "\nNotes: " + *b.Notes + "\n"
	}

	n.send("booking_status", mailer.Message{
		To:      b.CustomerEmail,
		Subject: "Booking " + b.Reference + " " + strings.ToLower(string(b.Status)),
		Body:    body,
	})
}

func (n *notifier) PaymentReceived(b *entity.Booking) {
	n.send("payment_received", mailer.Message{
		To:      b.CustomerEmail,
		Subject: "Payment received for booking " + b.Reference,
		Body: fmt.Sprintf("Hello %s,\n\nWe received your payment. Booking %s on %s at %s is confirmed.\n",
			b.CustomerName, b.Reference, b.Date.Format(time.DateOnly), b.TimeSlot),
	})
}

func (n *notifier) ListingModerated(to string, l *entity.PhoneListing) {
	body := fmt.Sprintf("Your listing for %s %s (%s) was %s.\n",
		l.Brand, l.Model, l.Storage, strings.ToLower(string(l.Status)))
	if l.AdminNote != nil && *l.AdminNote != "" {
		body += "\nNote from the shop: " + *l.AdminNote + "\n"
	}

	n.send("listing_moderated", mailer.Message{
		To:      to,
		Subject: "Your phone listing was " + strings.ToLower(string(l.Status)),
		Body:    body,
	})
}

func (n *notifier) OTP(to, code string, expiresAt time.Time) {
	n.send("otp", mailer.Message{
		To:      to,
		Subject: "Your verification code",
		Body:    fmt.Sprintf("Your code is %s. It expires at %s.\n", code, expiresAt.Format("15:04")),
	})
}
