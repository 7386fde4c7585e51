package entity

import "github.com/google/uuid"

type PhoneCondition string

const (
	ConditionNew     PhoneCondition = "NEW"
	ConditionLikeNew PhoneCondition = "LIKE_NEW"
	ConditionGood    PhoneCondition = "GOOD"
	ConditionFair    PhoneCondition = "FAIR"
)

type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "PENDING"
	ListingStatusApproved ListingStatus = "APPROVED"
	ListingStatusRejected ListingStatus = "REJECTED"
	ListingStatusSold     ListingStatus = "SOLD"
)

// Public reports whether anonymous visitors may see a listing in this status.
func (s ListingStatus) Public() bool {
	return s == ListingStatusApproved || s == ListingStatusSold
}

// PhoneListing is a used phone advertised by a customer, pending moderation.
type PhoneListing struct {
	BaseNoDelete
	UserID       *uuid.UUID     `db:"user_id"`
	Brand        string         `db:"brand"`
	Model        string         `db:"model"`
	Storage      string         `db:"storage"`
	Condition    PhoneCondition `db:"condition"`
	Price        float64        `db:"price"`
	Description  *string        `db:"description"`
	Images       []string       `db:"images"`
	ContactName  *string        `db:"contact_name"`
	ContactEmail *string        `db:"contact_email"`
	ContactPhone *string        `db:"contact_phone"`
	Status       ListingStatus  `db:"status"`
	AdminNote    *string        `db:"admin_note"`
}
