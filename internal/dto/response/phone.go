package response

import (
	"time"

	"phone-repair/internal/data/entity"
)

type PhoneResponse struct {
	ID          string                `json:"id"`
	Brand       string                `json:"brand"`
	Model       string                `json:"model"`
	Storage     string                `json:"storage"`
	Color       *string               `json:"color,omitempty"`
	Condition   entity.PhoneCondition `json:"condition"`
	Price       float64               `json:"price"`
	Description *string               `json:"description,omitempty"`
	Images      []string              `json:"images"`
	Status      entity.PhoneStatus    `json:"status"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

func PhoneToResponse(p *entity.PhoneForSale) PhoneResponse {
	resp := PhoneResponse{
		ID:          p.ID.String(),
		Brand:       p.Brand,
		Model:       p.Model,
		Storage:     p.Storage,
		Color:       p.Color,
		Condition:   p.Condition,
		Price:       p.Price,
		Description: p.Description,
		Images:      p.Images,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	return resp
}
