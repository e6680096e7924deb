package orders

import "time"

const StatusPending = "Pending"

// Order represents an order row plus its line items.
type Order struct {
	ID           int64       `json:"id"`
	CustomerName string      `json:"customer_name"`
	OrderDate    time.Time   `json:"order_date"`
	TotalPrice   float64     `json:"total_price"`
	Status       string      `json:"status"`
	Items        []OrderItem `json:"items"`
}

// OrderItem is one line item: quantity and the product's price frozen at
// order time. Identified by (order_id, product_id).
type OrderItem struct {
	ProductID       int64   `json:"product_id"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

type NewOrder struct {
	CustomerName string         `json:"customer_name" validate:"required"`
	Items        []NewOrderItem `json:"items" validate:"required,dive"`
}

type NewOrderItem struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required"`
}
