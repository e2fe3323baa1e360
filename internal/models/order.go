package models

import "time"

// Order lifecycle statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderItem represents a single line within an order. PriceAtPurchase is
// the effective unit price at the time the order was placed, never the
// live product price.
type OrderItem struct {
	ID              string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID       string  `json:"product_id" gorm:"type:varchar(36)"`
	ProductTitle    string  `json:"product_title" gorm:"type:varchar(150)"`
	StoreID         string  `json:"store_id" gorm:"type:varchar(36)"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// Order represents a placed customer order. UserID is nil for guest
// checkouts.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          *string     `json:"user_id" gorm:"index;type:varchar(36)"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     float64     `json:"total_amount"`
	Status          string      `json:"status" gorm:"type:varchar(20)"`
	PaymentMethod   string      `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentRef      string      `json:"payment_ref" gorm:"type:varchar(100)"`
	ShippingAddress string      `json:"shipping_address" gorm:"type:varchar(500)"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
