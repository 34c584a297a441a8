// Package store holds the in-memory stock ledger.
package store

import (
	"errors"
	"fmt"
)

// ErrUnknownProduct is returned when a caller names a product outside the
// fixed set the ledger was seeded with.
var ErrUnknownProduct = errors.New("unknown product")

// Entry is one ledger row: a product and its current weight in kg.
type Entry struct {
	Product string  `json:"product"`
	Weight  float64 `json:"weight"`
}

// Ledger maps each product to its current stock weight. The product set is
// fixed at construction; weights never go below zero.
//
// Ledger is not internally synchronized. The coordinator owns it and
// serializes all access through its event loop.
type Ledger struct {
	order   []string
	weights map[string]float64
}

// New seeds a ledger from the given entries, preserving their order for
// Snapshot iteration. Duplicate products keep the first seed.
func New(seed []Entry) *Ledger {
	l := &Ledger{weights: make(map[string]float64, len(seed))}
	for _, e := range seed {
		if _, ok := l.weights[e.Product]; ok {
			continue
		}
		w := e.Weight
		if w < 0 {
			w = 0
		}
		l.order = append(l.order, e.Product)
		l.weights[e.Product] = w
	}
	return l
}

// Get returns the current weight of a product.
func (l *Ledger) Get(product string) (float64, error) {
	w, ok := l.weights[product]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}
	return w, nil
}

// Adjust adds delta (which may be negative) to a product's weight, clamping
// the result at zero, and returns the new weight.
func (l *Ledger) Adjust(product string, delta float64) (float64, error) {
	w, ok := l.weights[product]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}
	w += delta
	if w < 0 {
		w = 0
	}
	l.weights[product] = w
	return w, nil
}

// Snapshot returns all entries in seed order. The slice is freshly allocated;
// callers may keep it.
func (l *Ledger) Snapshot() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, p := range l.order {
		out = append(out, Entry{Product: p, Weight: l.weights[p]})
	}
	return out
}

// Products returns the product names in seed order.
func (l *Ledger) Products() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Has reports whether the product belongs to the fixed set.
func (l *Ledger) Has(product string) bool {
	_, ok := l.weights[product]
	return ok
}
