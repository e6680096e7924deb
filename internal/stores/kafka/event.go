package kafka

import "time"

const (
	TopicOrderCreated       = `catalog-service.order-created`
	TopicOrderStatusUpdated = `catalog-service.order-status-updated`
)

// OrderCreatedEvent is published after an order and its line items are
// persisted.
type OrderCreatedEvent struct {
	OrderId      int64     `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	TotalPrice   float64   `json:"total_price"`
	CreatedAt    time.Time `json:"created_at"`
}

type OrderStatusUpdatedEvent struct {
	OrderId   int64     `json:"order_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
