package usecase

import (
	"time"

	"phone-repair/internal/data/repository"
	"phone-repair/pkg/cache"
	"phone-repair/pkg/mailer"
	"phone-repair/pkg/metrics"
	"phone-repair/pkg/payment"
	"phone-repair/pkg/utils"

	"go.uber.org/zap"
)

// Deps are the infrastructure collaborators shared by the services.
// Cache, Deduper and Metrics may be nil.
type Deps struct {
	Cache   *cache.JSONStore
	Deduper *cache.Deduper
	Gateway payment.Gateway
	Mailer  mailer.Mailer
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (d Deps) clock() func() time.Time {
	if d.Now == nil {
		return time.Now
	}
	return d.Now
}

type Service struct {
	Auth         AuthService
	User         UserService
	Availability AvailabilityService
	Pricing      PricingService
	Booking      BookingService
	Payment      PaymentService
	Listing      ListingService
	Phone        PhoneService
}

func NewService(repo *repository.Repository, deps Deps, config *utils.Config, log *zap.Logger) *Service {
	notify := newNotifier(deps.Mailer, deps.Metrics, log)
	availability := NewAvailabilityService(repo, deps, config.Location(), log)

	return &Service{
		Auth:         NewAuthService(repo, notify, deps, config, log),
		User:         NewUserService(repo.User, log),
		Availability: availability,
		Pricing:      NewPricingService(),
		Booking:      NewBookingService(repo, availability, notify, deps, log),
		Payment:      NewPaymentService(repo.Booking, notify, deps, log),
		Listing:      NewListingService(repo, notify, deps, log),
		Phone:        NewPhoneService(repo.Phone, deps, log),
	}
}
