package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/data/repository"
	"phone-repair/internal/dto/request"
	"phone-repair/internal/dto/response"
	"phone-repair/pkg/metrics"
	"phone-repair/pkg/payment"
	"phone-repair/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID *uuid.UUID, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error)
	GetBooking(ctx context.Context, id string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	ListUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	UpdateBookingStatus(ctx context.Context, id string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	bookings     repository.BookingRepository
	phones       repository.PhoneRepository
	availability AvailabilityService
	gateway      payment.Gateway
	notify       *notifier
	metrics      *metrics.Metrics
	now          func() time.Time
	log          *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	availability AvailabilityService,
	notify *notifier,
	deps Deps,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		bookings:     repo.Booking,
		phones:       repo.Phone,
		availability: availability,
		gateway:      deps.Gateway,
		notify:       notify,
		metrics:      deps.Metrics,
		now:          deps.clock(),
		log:          log.With(zap.String("service", "booking")),
	}
}

// pricedBooking is the server side view of what is being booked.
type pricedBooking struct {
	items  []entity.BookingItem
	total  float64
	device *entity.DeviceDetails
	phones []uuid.UUID
}

func (s *bookingService) CreateBooking(ctx context.Context, userID *uuid.UUID, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error) {
	// 1. Validate payload
	if err := validate(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}

	date, err := utils.ParseDay(req.BookingData.Date)
	if err != nil {
		return nil, invalid("validation failed", map[string]string{"bookingData.date": "Must be a date in YYYY-MM-DD format"})
	}

	// 2. Day must be open and slot offered
	if err := s.availability.CheckBookable(ctx, date, req.BookingData.TimeSlot); err != nil {
		return nil, err
	}

	// 3. Price what is booked
	bookingType := entity.BookingType(req.Type)
	var priced *pricedBooking
	switch bookingType {
	case entity.BookingTypeRepair:
		priced, err = s.priceRepair(req)
	case entity.BookingTypeProduct:
		priced, err = s.priceProducts(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	paymentMethod := entity.PaymentMethodInStore
	if req.PaymentMethod != "" {
		paymentMethod = entity.PaymentMethod(req.PaymentMethod)
	}
	if paymentMethod == entity.PaymentMethodOnline && priced.total <= 0 {
		return nil, invalid("online payment needs a priced booking", map[string]string{
			"paymentMethod": "Choose instore for repairs quoted on inspection",
		})
	}

	// 4. Flag double booking
	taken, err := s.bookings.CountActiveAtSlot(ctx, date, req.BookingData.TimeSlot)
	if err != nil {
		s.log.Warn("Failed to check slot usage", zap.Error(err))
	} else if taken > 0 {
		s.log.Warn("Slot already booked, accepting anyway",
			zap.String("date", req.BookingData.Date),
			zap.String("time_slot", req.BookingData.TimeSlot),
			zap.Int64("existing", taken),
		)
	}

	// 5. Build entity
	now := s.now()
	contact := req.BookingData.ContactInfo
	total := priced.total
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:       utils.GenerateBookingRef(now),
		UserID:          userID,
		Date:            date,
		TimeSlot:        req.BookingData.TimeSlot,
		CustomerName:    strings.TrimSpace(contact.Name),
		CustomerEmail:   strings.TrimSpace(contact.Email),
		CustomerPhone:   strings.TrimSpace(contact.Phone),
		CustomerAddress: contact.Address,
		Notes:           req.Notes,
		DeviceDetails:   priced.device,
		Items:           priced.items,
		Status:          bookingType.InitialStatus(),
		Type:            bookingType,
		Issues:          []string{},
		TotalAmount:     &total,
		PaymentMethod:   paymentMethod,
	}
	if priced.device != nil {
		booking.Brand = &priced.device.Brand
		booking.Model = &priced.device.Model
		booking.Issues = priced.device.Issues
	}

	// 6. Hosted checkout before anything is stored
	var checkoutURL string
	if paymentMethod == entity.PaymentMethodOnline {
		session, err := s.createCheckout(ctx, booking, priced)
		if err != nil {
			return nil, err
		}
		pending := entity.PaymentStatusPending
		booking.PaymentStatus = &pending
		booking.PaymentRef = &session.ID
		checkoutURL = session.URL
	}

	// 7. Save, selling stock in the same transaction
	if err := s.bookings.Create(ctx, booking, priced.phones...); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			s.log.Warn("Phone sold before booking was stored",
				zap.Error(err),
				zap.String("reference", booking.Reference),
			)
			return nil, fmt.Errorf("phone is already sold: %w", ErrConflict)
		}
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.metrics.BookingCreated(string(booking.Type), string(booking.PaymentMethod))
	s.notify.BookingReceived(booking, checkoutURL)

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("type", string(booking.Type)),
		zap.String("status", string(booking.Status)),
		zap.Float64("total", total),
	)

	return &response.CreateBookingResponse{
		Success:     true,
		Booking:     response.BookingToResponse(booking),
		CheckoutURL: checkoutURL,
	}, nil
}

func (s *bookingService) priceRepair(req *request.CreateBookingRequest) (*pricedBooking, error) {
	if req.Device == nil {
		return s.priceUninspectedRepair(req)
	}

	brand := strings.TrimSpace(req.Device.Brand)
	model := strings.TrimSpace(req.Device.Model)
	issues := CleanIssues(req.Device.Issues)
	if len(issues) == 0 {
		return nil, invalid("validation failed", map[string]string{"device.issues": "At least one issue is required"})
	}
	lines, total := QuoteRepair(brand, model, issues)

	items := make([]entity.BookingItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, entity.BookingItem{
			Title: fmt.Sprintf("%s %s - %s", brand, model, line.Issue),
			Price: line.Price,
		})
	}

	return &pricedBooking{
		items: items,
		total: total,
		device: &entity.DeviceDetails{
			Brand:  brand,
			Model:  model,
			Issues: issues,
		},
	}, nil
}

// priceUninspectedRepair accepts a repair described only by itemDetails.
// Client prices are ignored; every line is quoted on inspection at 0.
func (s *bookingService) priceUninspectedRepair(req *request.CreateBookingRequest) (*pricedBooking, error) {
	if len(req.ItemDetails) == 0 {
		return nil, invalid("validation failed", map[string]string{"device": "This field is required for repairs"})
	}

	priced := &pricedBooking{items: make([]entity.BookingItem, 0, len(req.ItemDetails))}
	for _, item := range req.ItemDetails {
		priced.items = append(priced.items, entity.BookingItem{Title: strings.TrimSpace(item.Title)})
	}

	s.log.Info("Repair booked without device details, quoting on inspection",
		zap.Int("items", len(priced.items)),
	)
	return priced, nil
}

func (s *bookingService) priceProducts(ctx context.Context, req *request.CreateBookingRequest) (*pricedBooking, error) {
	if len(req.ItemDetails) == 0 {
		return nil, invalid("validation failed", map[string]string{"itemDetails": "At least one item is required"})
	}

	priced := &pricedBooking{items: make([]entity.BookingItem, 0, len(req.ItemDetails))}
	for i, item := range req.ItemDetails {
		line := entity.BookingItem{Title: item.Title, Price: item.Price}

		if item.ProductID != nil {
			phoneID, err := uuid.Parse(*item.ProductID)
			if err != nil {
				return nil, invalidf("invalid product ID %q", *item.ProductID)
			}
			if slices.Contains(priced.phones, phoneID) {
				return nil, invalid("validation failed", map[string]string{
					fmt.Sprintf("itemDetails[%d].productId", i): "Product is listed twice",
				})
			}

			phone, err := s.phones.FindByID(ctx, phoneID)
			if err != nil {
				return nil, fmt.Errorf("load product: %w", err)
			}
			if phone == nil {
				return nil, invalid("validation failed", map[string]string{
					fmt.Sprintf("itemDetails[%d].productId", i): "Product does not exist",
				})
			}
			if phone.Status != entity.PhoneStatusAvailable {
				return nil, fmt.Errorf("phone %s %s is already sold: %w", phone.Brand, phone.Model, ErrConflict)
			}

			line.Price = phone.Price
			line.ProductID = &phone.ID
			priced.phones = append(priced.phones, phone.ID)
		}

		priced.items = append(priced.items, line)
		priced.total += line.Price
	}

	return priced, nil
}

func (s *bookingService) createCheckout(ctx context.Context, booking *entity.Booking, priced *pricedBooking) (*payment.Session, error) {
	if s.gateway == nil {
		return nil, fmt.Errorf("create checkout: %w", payment.ErrNotConfigured)
	}

	lines := make([]payment.LineItem, 0, len(priced.items))
	for _, item := range priced.items {
		if item.Price <= 0 {
			continue
		}
		lines = append(lines, payment.LineItem{Name: item.Title, Amount: item.Price})
	}

	session, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		BookingID:     booking.ID.String(),
		Reference:     booking.Reference,
		CustomerEmail: booking.CustomerEmail,
		Items:         lines,
	})
	if err != nil {
		s.log.Error("Checkout creation failed, booking not stored",
			zap.Error(err),
			zap.String("reference", booking.Reference),
		)
		return nil, fmt.Errorf("create checkout: %w", err)
	}

	return session, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*response.BookingResponse, error) {
	bookingID, err := parseID(id, "booking")
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListBookings(ctx context.Context, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := repository.BookingFilter{
		Status: entity.BookingStatus(req.Status),
		Type:   entity.BookingType(req.Type),
	}
	if req.Date != "" {
		date, err := utils.ParseDay(req.Date)
		if err != nil {
			return nil, invalidf("invalid date filter")
		}
		filter.Date = &date
	}

	return s.list(ctx, filter, req.PaginatedRequest)
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Normalize()
	return s.list(ctx, repository.BookingFilter{UserID: &userID}, *req)
}

func (s *bookingService) list(ctx context.Context, filter repository.BookingFilter, page request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.bookings.FindAll(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.bookings.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(bookings, response.BookingToResponse),
		page.Page, page.Limit(), total,
	), nil
}

// UpdateBookingStatus sets any of the four statuses; transitions are not restricted.
func (s *bookingService) UpdateBookingStatus(ctx context.Context, id string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	bookingID, err := parseID(id, "booking")
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.UpdateStatus(ctx, bookingID, entity.BookingStatus(req.Status), req.Notes)
	if err != nil {
		return nil, mapRepoError(err, "update booking status")
	}

	s.notify.BookingStatusChanged(booking)
	s.log.Info("Booking status updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("status", string(booking.Status)),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}
