package model

import "time"

// OrderPlacedEvent is published after an order has been committed.
type OrderPlacedEvent struct {
	EventID    string      `json:"eventId"`
	OrderID    int64       `json:"orderId"`
	UserID     int64       `json:"userId"`
	Total      int64       `json:"total"`
	Discount   int64       `json:"discount"`
	CouponCode string      `json:"couponCode,omitempty"`
	Lines      []OrderLine `json:"lines"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// EventTypeOrderPlaced names OrderPlacedEvent on the wire.
const EventTypeOrderPlaced = "order.placed"
