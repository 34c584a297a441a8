// Package orders tracks in-flight replenishment orders per product.
package orders

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/model"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/store"
)

// State is a product's position in the order lifecycle.
type State string

const (
	Idle   State = "idle"
	Placed State = "placed"
)

// Config holds the draw ranges for new orders.
type Config struct {
	RefillMin, RefillMax float64
	DelayMin, DelayMax   time.Duration
}

// Book owns the active order set. A product cycles Idle -> Placed -> Idle;
// there is at most one outstanding order per product.
//
// Like the ledger, the Book is not internally synchronized: the coordinator
// serializes every call through its event loop.
type Book struct {
	cfg    Config
	ledger *store.Ledger
	rng    *rand.Rand
	placed map[string]model.Order
}

// New builds a Book over the given ledger. A nil rng gets a time-seeded
// source.
func New(cfg Config, ledger *store.Ledger, rng *rand.Rand) *Book {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>32))
	}
	return &Book{cfg: cfg, ledger: ledger, rng: rng, placed: make(map[string]model.Order)}
}

// Place opens an order for the product. It returns ok=false without touching
// state when an order is already in flight; duplicate placement is a defined
// no-op, not an error. An unknown product is a programmer error and returns
// store.ErrUnknownProduct.
//
// The refill amount and fulfillment delay are drawn at placement and carried
// on the returned order; the caller publishes the order and schedules its
// fulfillment after order.FulfillAfter.
func (b *Book) Place(product string, origin model.Origin, now time.Time) (model.Order, bool, error) {
	if !b.ledger.Has(product) {
		_, err := b.ledger.Get(product)
		return model.Order{}, false, err
	}
	if _, inFlight := b.placed[product]; inFlight {
		return model.Order{}, false, nil
	}
	o := model.Order{
		ID:           uuid.NewString(),
		Product:      product,
		Origin:       origin,
		PlacedAt:     now,
		RefillAmount: b.cfg.RefillMin + b.rng.Float64()*(b.cfg.RefillMax-b.cfg.RefillMin),
		FulfillAfter: b.drawDelay(),
	}
	b.placed[product] = o
	return o, true, nil
}

func (b *Book) drawDelay() time.Duration {
	if b.cfg.DelayMax <= b.cfg.DelayMin {
		return b.cfg.DelayMin
	}
	return b.cfg.DelayMin + time.Duration(b.rng.Int64N(int64(b.cfg.DelayMax-b.cfg.DelayMin)))
}

// Fulfill closes the product's order: it applies the refill amount to the
// ledger and returns the product to Idle. When the product is not Placed the
// call is a defensive no-op and returns ok=false, leaving ledger and active
// set untouched; a stale scheduled callback must never throw.
func (b *Book) Fulfill(product string) (model.Fulfillment, bool) {
	o, inFlight := b.placed[product]
	if !inFlight {
		return model.Fulfillment{}, false
	}
	w, err := b.ledger.Adjust(product, o.RefillAmount)
	if err != nil {
		// Placement validated the product, so this cannot happen for a
		// fixed product set; treat it as a stale callback.
		return model.Fulfillment{}, false
	}
	delete(b.placed, product)
	return model.Fulfillment{Product: product, Origin: o.Origin, Amount: o.RefillAmount, NewWeight: w}, true
}

// State reports Idle or Placed for the product.
func (b *Book) State(product string) State {
	if _, inFlight := b.placed[product]; inFlight {
		return Placed
	}
	return Idle
}

// Active returns the order currently in flight for a product, if any.
func (b *Book) Active(product string) (model.Order, bool) {
	o, ok := b.placed[product]
	return o, ok
}

// ActiveCount returns how many products have an order in flight.
func (b *Book) ActiveCount() int { return len(b.placed) }
