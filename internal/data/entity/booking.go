package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

type BookingType string

const (
	BookingTypeRepair  BookingType = "REPAIR"
	BookingTypeProduct BookingType = "PRODUCT"
)

// InitialStatus is the status a booking of this type is created with.
func (t BookingType) InitialStatus() BookingStatus {
	if t == BookingTypeProduct {
		return BookingStatusConfirmed
	}
	return BookingStatusPending
}

// BookingItem is one line of a booking as stored in the items jsonb column.
type BookingItem struct {
	Title     string     `json:"title"`
	Price     float64    `json:"price"`
	ProductID *uuid.UUID `json:"productId,omitempty"`
}

// DeviceDetails describes the phone brought in for repair.
type DeviceDetails struct {
	Brand  string   `json:"brand"`
	Model  string   `json:"model"`
	Issues []string `json:"issues"`
}

type Booking struct {
	BaseNoDelete
	Reference       string         `db:"reference"`
	UserID          *uuid.UUID     `db:"user_id"`
	Date            time.Time      `db:"date"`
	TimeSlot        string         `db:"time_slot"`
	CustomerName    string         `db:"customer_name"`
	CustomerEmail   string         `db:"customer_email"`
	CustomerPhone   string         `db:"customer_phone"`
	CustomerAddress *string        `db:"customer_address"`
	Notes           *string        `db:"notes"`
	DeviceDetails   *DeviceDetails `db:"device_details"`
	Items           []BookingItem  `db:"items"`
	Status          BookingStatus  `db:"status"`
	Type            BookingType    `db:"type"`
	Brand           *string        `db:"brand"`
	Model           *string        `db:"model"`
	Issues          []string       `db:"issues"`
	TotalAmount     *float64       `db:"total_amount"`
	PaymentMethod   PaymentMethod  `db:"payment_method"`
	PaymentStatus   *PaymentStatus `db:"payment_status"`
	PaymentRef      *string        `db:"payment_ref"`
}
