package response

import (
	"time"

	"phone-repair/internal/data/entity"
)

type ListingResponse struct {
	ID           string                `json:"id"`
	UserID       *string               `json:"userId,omitempty"`
	Brand        string                `json:"brand"`
	Model        string                `json:"model"`
	Storage      string                `json:"storage"`
	Condition    entity.PhoneCondition `json:"condition"`
	Price        float64               `json:"price"`
	Description  *string               `json:"description,omitempty"`
	Images       []string              `json:"images"`
	ContactName  *string               `json:"contactName,omitempty"`
	ContactEmail *string               `json:"contactEmail,omitempty"`
	ContactPhone *string               `json:"contactPhone,omitempty"`
	Status       entity.ListingStatus  `json:"status"`
	AdminNote    *string               `json:"adminNote,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

func ListingToResponse(l *entity.PhoneListing) ListingResponse {
	resp := ListingResponse{
		ID:           l.ID.String(),
		Brand:        l.Brand,
		Model:        l.Model,
		Storage:      l.Storage,
		Condition:    l.Condition,
		Price:        l.Price,
		Description:  l.Description,
		Images:       l.Images,
		ContactName:  l.ContactName,
		ContactEmail: l.ContactEmail,
		ContactPhone: l.ContactPhone,
		Status:       l.Status,
		AdminNote:    l.AdminNote,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}

	if l.UserID != nil {
		id := l.UserID.String()
		resp.UserID = &id
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}

	return resp
}

// PublicListingToResponse hides the moderation note from anonymous visitors.
func PublicListingToResponse(l *entity.PhoneListing) ListingResponse {
	resp := ListingToResponse(l)
	resp.AdminNote = nil
	resp.UserID = nil
	return resp
}
