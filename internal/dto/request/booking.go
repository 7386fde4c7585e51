package request

type ContactInfo struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   string  `json:"phone" validate:"required,min=3,max=30"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
}

type BookingData struct {
	Date        string      `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot    string      `json:"timeSlot" validate:"required,timeslot"`
	ContactInfo ContactInfo `json:"contactInfo"`
}

type ItemDetail struct {
	Title     string  `json:"title" validate:"required,max=200"`
	Price     float64 `json:"price" validate:"gte=0"`
	ProductID *string `json:"productId,omitempty" validate:"omitempty,uuid"`
}

type DeviceRequest struct {
	Brand  string   `json:"brand" validate:"required,max=50"`
	Model  string   `json:"model" validate:"required,max=100"`
	Issues []string `json:"issues" validate:"required,min=1,unique,dive,required"`
}

type CreateBookingRequest struct {
	BookingData   BookingData    `json:"bookingData"`
	ItemDetails   []ItemDetail   `json:"itemDetails" validate:"omitempty,dive"`
	Type          string         `json:"type" validate:"required,oneof=REPAIR PRODUCT"`
	Device        *DeviceRequest `json:"device,omitempty"`
	PaymentMethod string         `json:"paymentMethod,omitempty" validate:"omitempty,oneof=online instore"`
	Notes         *string        `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateBookingStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type BookingListRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	Type   string `json:"type" validate:"omitempty,oneof=REPAIR PRODUCT"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type QuoteRequest struct {
	Brand  string   `json:"brand" validate:"required"`
	Model  string   `json:"model" validate:"required"`
	Issues []string `json:"issues" validate:"required,min=1,dive,required"`
}
