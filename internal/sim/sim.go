// Package sim advances the stock ledger with simulated consumption.
package sim

import (
	"math/rand/v2"
	"time"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/store"
)

// Consumer decrements every product by a uniform random draw per tick.
type Consumer struct {
	min, max float64
	rng      *rand.Rand
}

// New builds a Consumer drawing from [min, max] kg. A nil rng gets a
// time-seeded source; tests inject a fixed seed for determinism.
func New(min, max float64, rng *rand.Rand) *Consumer {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>32))
	}
	return &Consumer{min: min, max: max, rng: rng}
}

// Tick applies one consumption step to every product in the ledger. The
// ledger clamps each weight at zero.
func (c *Consumer) Tick(l *store.Ledger) {
	for _, p := range l.Products() {
		d := c.min + c.rng.Float64()*(c.max-c.min)
		_, _ = l.Adjust(p, -d)
	}
}
