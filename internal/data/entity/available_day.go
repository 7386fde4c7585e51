package entity

import "time"

// AvailableDay is a calendar date the shop accepts bookings on.
type AvailableDay struct {
	BaseNoDelete
	Date      time.Time `db:"date"`
	IsFullDay bool      `db:"is_full_day"`
	Note      *string   `db:"note"`
	IsActive  bool      `db:"is_active"`
}

// SlotCatalog is the ordered list of HH:MM slots offered on every available day.
type SlotCatalog struct {
	Hours     []string  `db:"hours"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DefaultSlotHours is served while no catalog has been saved.
var DefaultSlotHours = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00",
}
