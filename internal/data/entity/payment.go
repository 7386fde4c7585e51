package entity

type PaymentMethod string

const (
	PaymentMethodOnline  PaymentMethod = "online"
	PaymentMethodInStore PaymentMethod = "instore"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)
