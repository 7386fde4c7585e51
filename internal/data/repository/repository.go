package repository

import (
	"strings"

	"phone-repair/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	OTP          OTPRepository
	AvailableDay AvailableDayRepository
	SlotCatalog  SlotCatalogRepository
	Booking      BookingRepository
	Listing      ListingRepository
	Phone        PhoneRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		OTP:          NewOTPRepository(db, log),
		AvailableDay: NewAvailableDayRepository(db, log),
		SlotCatalog:  NewSlotCatalogRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Listing:      NewListingRepository(db, log),
		Phone:        NewPhoneRepository(db, log),
	}
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
