package request

type PhoneRequest struct {
	Brand       string   `json:"brand" validate:"required,max=50"`
	Model       string   `json:"model" validate:"required,max=100"`
	Storage     string   `json:"storage" validate:"required,max=20"`
	Color       *string  `json:"color,omitempty" validate:"omitempty,max=30"`
	Condition   string   `json:"condition" validate:"required,oneof=NEW LIKE_NEW GOOD FAIR"`
	Price       float64  `json:"price" validate:"gt=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Images      []string `json:"images" validate:"max=10,dive,url"`
}

type PhoneStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=AVAILABLE SOLD"`
}

type PhoneListRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=AVAILABLE SOLD"`
	Brand  string `json:"brand" validate:"omitempty,max=50"`
}
