package response

import (
	"time"

	"phone-repair/internal/data/entity"
)

type BookingResponse struct {
	ID              string                `json:"id"`
	Reference       string                `json:"reference"`
	UserID          *string               `json:"userId,omitempty"`
	Date            string                `json:"date"`
	TimeSlot        string                `json:"timeSlot"`
	CustomerName    string                `json:"customerName"`
	CustomerEmail   string                `json:"customerEmail"`
	CustomerPhone   string                `json:"customerPhone"`
	CustomerAddress *string               `json:"customerAddress,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	DeviceDetails   *entity.DeviceDetails `json:"deviceDetails,omitempty"`
	Items           []entity.BookingItem  `json:"items"`
	Status          entity.BookingStatus  `json:"status"`
	Type            entity.BookingType    `json:"type"`
	Brand           *string               `json:"brand,omitempty"`
	Model           *string               `json:"model,omitempty"`
	Issues          []string              `json:"issues"`
	TotalAmount     *float64              `json:"totalAmount"`
	PaymentMethod   entity.PaymentMethod  `json:"paymentMethod"`
	PaymentStatus   *entity.PaymentStatus `json:"paymentStatus"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type CreateBookingResponse struct {
	Success     bool            `json:"success"`
	Booking     BookingResponse `json:"booking"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
}

type QuoteLine struct {
	Issue string  `json:"issue"`
	Price float64 `json:"price"`
}

type QuoteResponse struct {
	Brand string      `json:"brand"`
	Model string      `json:"model"`
	Lines []QuoteLine `json:"lines"`
	Total float64     `json:"total"`
}

type PriceTableResponse struct {
	Brands map[string]map[string]map[string]float64 `json:"brands"`
	Issues []string                                 `json:"issues"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID.String(),
		Reference:       b.Reference,
		Date:            b.Date.Format(time.DateOnly),
		TimeSlot:        b.TimeSlot,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		CustomerAddress: b.CustomerAddress,
		Notes:           b.Notes,
		DeviceDetails:   b.DeviceDetails,
		Items:           b.Items,
		Status:          b.Status,
		Type:            b.Type,
		Brand:           b.Brand,
		Model:           b.Model,
		Issues:          b.Issues,
		TotalAmount:     b.TotalAmount,
		PaymentMethod:   b.PaymentMethod,
		PaymentStatus:   b.PaymentStatus,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.UserID != nil {
		id := b.UserID.String()
		resp.UserID = &id
	}
	if resp.Items == nil {
		resp.Items = []entity.BookingItem{}
	}
	if resp.Issues == nil {
		resp.Issues = []string{}
	}

	return resp
}
