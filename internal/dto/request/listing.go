package request

type CreateListingRequest struct {
	Brand        string   `json:"brand" validate:"required,max=50"`
	Model        string   `json:"model" validate:"required,max=100"`
	Storage      string   `json:"storage" validate:"required,max=20"`
	Condition    string   `json:"condition" validate:"required,oneof=NEW LIKE_NEW GOOD FAIR"`
	Price        float64  `json:"price" validate:"gt=0"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Images       []string `json:"images" validate:"max=10,dive,url"`
	ContactName  *string  `json:"contactName,omitempty" validate:"omitempty,max=100"`
	ContactEmail *string  `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone *string  `json:"contactPhone,omitempty" validate:"omitempty,min=3,max=30"`
}

type ModerateListingRequest struct {
	Status    string  `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED SOLD"`
	AdminNote *string `json:"adminNote,omitempty" validate:"omitempty,max=1000"`
}

type ListingListRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED SOLD"`
	Brand  string `json:"brand" validate:"omitempty,max=50"`
}
