package request

// AvailableDayRequest is the body of POST and PUT /api/admin/available-days.
// Omitted fullDay and isActive default to true.
type AvailableDayRequest struct {
	Date     string  `json:"date" validate:"required"`
	FullDay  *bool   `json:"fullDay"`
	Note     *string `json:"note" validate:"omitempty,max=500"`
	IsActive *bool   `json:"isActive"`
}

type AvailableHoursRequest struct {
	Hours []string `json:"hours" validate:"required,min=1,max=48,unique,dive,timeslot"`
}
