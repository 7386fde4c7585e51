package response

import (
	"time"

	"phone-repair/internal/data/entity"
)

type AvailableDayResponse struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	FullDay  bool    `json:"fullDay"`
	Note     *string `json:"note"`
	IsActive bool    `json:"isActive"`
}

type DayAvailability struct {
	AvailableDayResponse
	Slots []string `json:"slots"`
}

type AvailabilityResponse struct {
	Days     []DayAvailability `json:"days"`
	Degraded bool              `json:"degraded"`
}

type AvailableDaysResponse struct {
	Days     []AvailableDayResponse `json:"days"`
	Degraded bool                   `json:"degraded"`
}

type AvailableHoursResponse struct {
	Hours []string `json:"hours"`
}

func AvailableDayToResponse(day *entity.AvailableDay) AvailableDayResponse {
	return AvailableDayResponse{
		ID:       day.ID.String(),
		Date:     day.Date.Format(time.DateOnly),
		FullDay:  day.IsFullDay,
		Note:     day.Note,
		IsActive: day.IsActive,
	}
}
