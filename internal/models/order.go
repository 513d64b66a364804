package models

import "time"

// Order statuses accepted by status updates.
var OrderStatuses = map[string]bool{
	"pending":    true,
	"processing": true,
	"shipped":    true,
	"delivered":  true,
	"cancelled":  true,
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	ArtisanID string  `json:"artisan_id"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price"` // Price at the time of order
}

// Order represents a buyer's purchase of one or more listings.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerName   string      `json:"buyer_name"`
	BuyerEmail  string      `json:"buyer_email" gorm:"index"`
	Items       []OrderItem `json:"items" gorm:"serializer:json"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status" gorm:"type:varchar(20)"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
