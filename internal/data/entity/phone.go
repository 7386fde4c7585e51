package entity

type PhoneStatus string

const (
	PhoneStatusAvailable PhoneStatus = "AVAILABLE"
	PhoneStatusSold      PhoneStatus = "SOLD"
)

// PhoneForSale is refurbished stock sold by the shop.
type PhoneForSale struct {
	BaseNoDelete
	Brand       string         `db:"brand"`
	Model       string         `db:"model"`
	Storage     string         `db:"storage"`
	Color       *string        `db:"color"`
	Condition   PhoneCondition `db:"condition"`
	Price       float64        `db:"price"`
	Description *string        `db:"description"`
	Images      []string       `db:"images"`
	Status      PhoneStatus    `db:"status"`
}
