package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repairRequest(date, slot string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		BookingData: request.BookingData{
			Date:     date,
			TimeSlot: slot,
			ContactInfo: request.ContactInfo{
				Name:  "A",
				Email: "a@x.com",
				Phone: "123",
			},
		},
		ItemDetails: []request.ItemDetail{{Title: "ignored", Price: 1}},
		Type:        string(entity.BookingTypeRepair),
		Device: &request.DeviceRequest{
			Brand:  "iPhone",
			Model:  "13",
			Issues: []string{IssueScreen, IssueBattery},
		},
	}
}

func stockPhone(price float64, status entity.PhoneStatus) *entity.PhoneForSale {
	return &entity.PhoneForSale{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		Brand:        "Samsung",
		Model:        "Galaxy S22",
		Storage:      "128GB",
		Condition:    entity.ConditionGood,
		Price:        price,
		Images:       []string{},
		Status:       status,
	}
}

func TestCreateRepairBookingPricesServerSide(t *testing.T) {
	f := newFixture(t)
	f.days = newFakeDays(openDay("2030-03-11"))
	f.repo.AvailableDay = f.days
	svc := f.service()

	resp, err := svc.Booking.CreateBooking(context.Background(), nil, repairRequest("2030-03-11", "11:00"))
	require.NoError(t, err)

	b := resp.Booking
	assert.True(t, resp.Success)
	assert.Empty(t, resp.CheckoutURL)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, "iPhone", *b.Brand)
	assert.Equal(t, "13", *b.Model)
	assert.Equal(t, []string{IssueScreen, IssueBattery}, b.Issues)
	require.NotNil(t, b.TotalAmount)
	assert.Equal(t, 234.0, *b.TotalAmount)
	assert.Equal(t, entity.PaymentMethodInStore, b.PaymentMethod)
	assert.Nil(t, b.PaymentStatus)
	assert.Equal(t, "2030-03-11", b.Date)

	require.Len(t, b.Items, 2)
	assert.Equal(t, "iPhone 13 - "+IssueScreen, b.Items[0].Title)
	assert.Equal(t, 179.0, b.Items[0].Price)
	assert.Equal(t, 55.0, b.Items[1].Price)

	stored := f.bookings.all()
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].UserID)

	msg := f.mail.next(t)
	assert.Equal(t, "a@x.com", msg.To)
	assert.Contains(t, msg.Body, b.Reference)
}

func TestCreateRepairBookingTrimsIssues(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()

	req := repairRequest("2030-03-11", "11:00")
	req.Device.Issues = []string{" " + IssueScreen, IssueScreen + "\n", ""}

	resp, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, []string{IssueScreen}, b.Issues)
	require.Len(t, b.Items, 1)
	assert.Equal(t, 179.0, b.Items[0].Price)
	assert.Equal(t, 179.0, *b.TotalAmount)
}

func TestCreateRepairBookingFromItemDetailsOnly(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()

	req := repairRequest("2030-03-11", "11:00")
	req.Device = nil
	req.ItemDetails = []request.ItemDetail{{Title: " Screen replacement ", Price: 999}}

	resp, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Nil(t, b.Brand)
	assert.Empty(t, b.Issues)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "Screen replacement", b.Items[0].Title)
	assert.Equal(t, 0.0, b.Items[0].Price)
	assert.Equal(t, 0.0, *b.TotalAmount)
	assert.Len(t, f.bookings.all(), 1)
}

func TestCreateRepairBookingFromItemDetailsCannotPayOnline(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()

	req := repairRequest("2030-03-11", "11:00")
	req.Device = nil
	req.PaymentMethod = string(entity.PaymentMethodOnline)

	_, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.gateway.requests)
	assert.Empty(t, f.bookings.all())
}

func TestCreateBookingRecordsSignedInUser(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()
	userID := uuid.New()

	resp, err := svc.Booking.CreateBooking(context.Background(), &userID, repairRequest("2030-03-11", "09:00"))
	require.NoError(t, err)
	require.NotNil(t, resp.Booking.UserID)
	assert.Equal(t, userID.String(), *resp.Booking.UserID)
}

func TestCreateProductBookingConfirmsAndSellsStock(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	phone := stockPhone(420, entity.PhoneStatusAvailable)
	f.phones = newFakePhones(phone)
	f.repo.Phone = f.phones
	svc := f.service()

	productID := phone.ID.String()
	req := repairRequest("2030-03-11", "12:00")
	req.Type = string(entity.BookingTypeProduct)
	req.Device = nil
	req.ItemDetails = []request.ItemDetail{
		{Title: "Galaxy S22", Price: 1, ProductID: &productID},
		{Title: "Case", Price: 15},
	}

	resp, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusConfirmed, resp.Booking.Status)
	assert.Equal(t, 435.0, *resp.Booking.TotalAmount)
	assert.Equal(t, 420.0, resp.Booking.Items[0].Price)
	assert.Equal(t, phone.ID, *resp.Booking.Items[0].ProductID)

	stored, err := f.phones.FindByID(context.Background(), phone.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PhoneStatusSold, stored.Status)
}

func TestCreateProductBookingRejectsSoldPhone(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	phone := stockPhone(300, entity.PhoneStatusSold)
	f.repo.Phone = newFakePhones(phone)
	svc := f.service()

	productID := phone.ID.String()
	req := repairRequest("2030-03-11", "12:00")
	req.Type = string(entity.BookingTypeProduct)
	req.ItemDetails = []request.ItemDetail{{Title: "Galaxy S22", Price: 300, ProductID: &productID}}

	_, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.bookings.all())
}

func TestCreateProductBookingSellsPhoneOnce(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	phone := stockPhone(300, entity.PhoneStatusAvailable)
	f.phones = newFakePhones(phone)
	f.repo.Phone = f.phones
	svc := f.service()

	productID := phone.ID.String()
	const buyers = 8
	errs := make(chan error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := repairRequest("2030-03-11", "12:00")
			req.Type = string(entity.BookingTypeProduct)
			req.Device = nil
			req.ItemDetails = []request.ItemDetail{{Title: "Galaxy S22", Price: 300, ProductID: &productID}}
			_, err := svc.Booking.CreateBooking(context.Background(), nil, req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.bookings.all(), 1)
}

func TestCreateProductBookingConflictStoresNothing(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	phone := stockPhone(300, entity.PhoneStatusAvailable)
	f.phones = newFakePhones(phone)
	f.repo.Phone = f.phones
	svc := f.service()

	// Another checkout sells the phone after it was priced.
	f.bookings.stock = newFakePhones(stockPhone(300, entity.PhoneStatusAvailable))

	productID := phone.ID.String()
	req := repairRequest("2030-03-11", "12:00")
	req.Type = string(entity.BookingTypeProduct)
	req.ItemDetails = []request.ItemDetail{{Title: "Galaxy S22", Price: 300, ProductID: &productID}}

	_, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.bookings.all())
	assert.Empty(t, f.mail.sent)
}

func TestCreateProductBookingRejectsRepeatedPhone(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	phone := stockPhone(300, entity.PhoneStatusAvailable)
	f.phones = newFakePhones(phone)
	f.repo.Phone = f.phones
	svc := f.service()

	productID := phone.ID.String()
	req := repairRequest("2030-03-11", "12:00")
	req.Type = string(entity.BookingTypeProduct)
	req.ItemDetails = []request.ItemDetail{
		{Title: "Galaxy S22", Price: 300, ProductID: &productID},
		{Title: "Galaxy S22", Price: 300, ProductID: &productID},
	}

	_, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "itemDetails[1].productId")

	stored, err := f.phones.FindByID(context.Background(), phone.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PhoneStatusAvailable, stored.Status)
}

func TestCreateBookingRejectsUnbookableRequests(t *testing.T) {
	closed := openDay("2030-03-12")
	closed.IsActive = false

	tests := []struct {
		name   string
		mutate func(*request.CreateBookingRequest)
		field  string
	}{
		{"day not open", func(r *request.CreateBookingRequest) { r.BookingData.Date = "2030-03-13" }, "bookingData.date"},
		{"day inactive", func(r *request.CreateBookingRequest) { r.BookingData.Date = "2030-03-12" }, "bookingData.date"},
		{"day in the past", func(r *request.CreateBookingRequest) { r.BookingData.Date = "2030-03-09" }, "bookingData.date"},
		{"slot not offered", func(r *request.CreateBookingRequest) { r.BookingData.TimeSlot = "18:00" }, "bookingData.timeSlot"},
		{"bad email", func(r *request.CreateBookingRequest) { r.BookingData.ContactInfo.Email = "nope" }, "bookingData.contactInfo.email"},
		{"repair without device or items", func(r *request.CreateBookingRequest) { r.Device, r.ItemDetails = nil, nil }, "device"},
		{"repair with blank issues", func(r *request.CreateBookingRequest) { r.Device.Issues = []string{" ", "\t"} }, "device.issues"},
		{"unknown type", func(r *request.CreateBookingRequest) { r.Type = "RENTAL" }, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"), openDay("2030-03-09"), closed)
			svc := f.service()

			req := repairRequest("2030-03-11", "11:00")
			tt.mutate(req)

			_, err := svc.Booking.CreateBooking(context.Background(), nil, req)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
			assert.Empty(t, f.bookings.all())
		})
	}
}

func TestCreateBookingAcceptsDoubleBooking(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()

	for i := 0; i < 2; i++ {
		_, err := svc.Booking.CreateBooking(context.Background(), nil, repairRequest("2030-03-11", "11:00"))
		require.NoError(t, err)
	}
	assert.Len(t, f.bookings.all(), 2)
}

func TestCreateOnlineBookingStartsCheckout(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()

	req := repairRequest("2030-03-11", "11:00")
	req.PaymentMethod = string(entity.PaymentMethodOnline)

	resp, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.example/"+resp.Booking.Reference, resp.CheckoutURL)
	require.NotNil(t, resp.Booking.PaymentStatus)
	assert.Equal(t, entity.PaymentStatusPending, *resp.Booking.PaymentStatus)

	require.Len(t, f.gateway.requests, 1)
	checkout := f.gateway.requests[0]
	assert.Equal(t, resp.Booking.ID, checkout.BookingID)
	assert.Len(t, checkout.Items, 2)

	stored := f.bookings.all()
	require.Len(t, stored, 1)
	assert.Equal(t, "cs_test_"+resp.Booking.Reference, *stored[0].PaymentRef)
}

func TestCreateOnlineBookingStoresNothingWhenCheckoutFails(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	f.gateway.err = errors.New("stripe down")
	svc := f.service()

	req := repairRequest("2030-03-11", "11:00")
	req.PaymentMethod = string(entity.PaymentMethodOnline)

	_, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.bookings.all())
}

func TestCreateOnlineBookingNeedsAPrice(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()

	req := repairRequest("2030-03-11", "11:00")
	req.Device.Brand = BrandOther
	req.PaymentMethod = string(entity.PaymentMethodOnline)

	_, err := svc.Booking.CreateBooking(context.Background(), nil, req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.gateway.requests)
}

func TestUpdateBookingStatus(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()

	created, err := svc.Booking.CreateBooking(context.Background(), nil, repairRequest("2030-03-11", "11:00"))
	require.NoError(t, err)
	f.mail.next(t)

	notes := "screen ordered"
	updated, err := svc.Booking.UpdateBookingStatus(context.Background(), created.Booking.ID, &request.UpdateBookingStatusRequest{
		Status: string(entity.BookingStatusCompleted),
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCompleted, updated.Status)
	assert.Equal(t, &notes, updated.Notes)

	msg := f.mail.next(t)
	assert.Contains(t, msg.Body, string(entity.BookingStatusCompleted))

	_, err = svc.Booking.UpdateBookingStatus(context.Background(), created.Booking.ID, &request.UpdateBookingStatusRequest{Status: "SHIPPED"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Booking.UpdateBookingStatus(context.Background(), uuid.NewString(), &request.UpdateBookingStatusRequest{Status: "CANCELLED"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBookingsFilters(t *testing.T) {
	f := newFixture(t)
	f.repo.AvailableDay = newFakeDays(openDay("2030-03-11"))
	svc := f.service()
	userID := uuid.New()

	_, err := svc.Booking.CreateBooking(context.Background(), &userID, repairRequest("2030-03-11", "11:00"))
	require.NoError(t, err)
	_, err = svc.Booking.CreateBooking(context.Background(), nil, repairRequest("2030-03-11", "12:00"))
	require.NoError(t, err)

	all, err := svc.Booking.ListBookings(context.Background(), &request.BookingListRequest{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	mine, err := svc.Booking.ListUserBookings(context.Background(), userID, &request.PaginatedRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, "11:00", mine.Data[0].TimeSlot)

	_, err = svc.Booking.ListBookings(context.Background(), &request.BookingListRequest{Status: "LOST"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Booking.GetBooking(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)
}
