package model

import (
	"time"
)

const (
	StatusPending    = "Pending"
	StatusDispatched = "Dispatched"
)

type CompletedOrder struct {
	OrderID          string         `json:"orderId"`
	Timestamp        *time.Time     `json:"timestamp"`
	TimestampDisplay *string        `json:"timestampDisplay"`
	CustomerName     string         `json:"customerName"`
	CustomerSurname  string         `json:"customerSurname"`
	CustomerFullName string         `json:"customerFullName"`
	CustomerPhone    string         `json:"customerPhone"`
	CustomerAddress  string         `json:"customerAddress"`
	PaymentType      string         `json:"paymentType"`
	TotalPrice       *float64       `json:"totalPrice"`
	Status           string         `json:"status"` // Pending, Dispatched
	DispatchedAt     *time.Time     `json:"dispatchedAt"`
	Source           *string        `json:"source"`
	Raw              map[string]any `json:"raw"`
}

type AbandonedOrder struct {
	OrderID          string         `json:"orderId"`
	Timestamp        *time.Time     `json:"timestamp"`
	TimestampDisplay *string        `json:"timestampDisplay"`
	OrderStatus      string         `json:"orderStatus"`
	Source           *string        `json:"source"`
	Raw              map[string]any `json:"raw"`
}

// Meta describes where a listing came from.
type Meta struct {
	UsesMockData        bool      `json:"usesMockData"`
	SourceColumnPresent bool      `json:"sourceColumnPresent"`
	FetchedAt           time.Time `json:"fetchedAt"`
	Channel             string    `json:"channel"`
	RequestedChannel    string    `json:"requestedChannel"`
	ChannelFallback     bool      `json:"channelFallback"`
}

type CompletedMeta struct {
	Meta
	DispatchedIDs []string `json:"dispatchedIds"`
}

type CompletedOrders struct {
	Data []CompletedOrder `json:"data"`
	Meta CompletedMeta    `json:"meta"`
}

type AbandonedOrders struct {
	Data []AbandonedOrder `json:"data"`
	Meta Meta             `json:"meta"`
}
