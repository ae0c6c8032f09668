package model

import "time"

// DispatchRecord is the persisted status of a single order, keyed by order id.
type DispatchRecord struct {
	Status       string    `json:"status"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

type DispatchResult struct {
	OrderID      string    `json:"orderId"`
	Status       string    `json:"status"`
	DispatchedAt time.Time `json:"dispatchedAt"`
	Attempts     int       `json:"attempts"`
}
