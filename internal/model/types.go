// Package model defines domain types shared across the service.
package model

import (
	"strings"
	"time"
)

// Origin identifies what triggered an order placement.
type Origin string

const (
	OriginManual Origin = "manual"
	OriginAuto   Origin = "auto"
	OriginRemote Origin = "remote"
)

// Label returns the upper-cased wire label used in order-request payloads.
func (o Origin) Label() string { return strings.ToUpper(string(o)) }

// Order is an in-flight replenishment request for a single product. It exists
// only between placement and fulfillment and is never persisted.
type Order struct {
	ID           string        `json:"id"`
	Product      string        `json:"product"`
	Origin       Origin        `json:"origin"`
	PlacedAt     time.Time     `json:"placed_at"`
	RefillAmount float64       `json:"refill_amount"`
	FulfillAfter time.Duration `json:"-"`
}

// Fulfillment describes a completed refill applied to the ledger.
type Fulfillment struct {
	Product   string  `json:"product"`
	Origin    Origin  `json:"origin"`
	Amount    float64 `json:"amount"`
	NewWeight float64 `json:"new_weight"`
}

// TelemetryRecord is one stock-weight observation for one product.
type TelemetryRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Product   string    `json:"product"`
	Weight    float64   `json:"weight"`
}
