// Package coordinator drives the inventory state machine: the periodic
// simulate-publish-reorder tick, inbound bus messages, and delayed order
// fulfillments all funnel through one event loop that exclusively owns the
// stock ledger and the order book.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/alert"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/bus"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/codec"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/config"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/model"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/obs"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/orders"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/sim"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/sink"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/store"
)

var (
	// ErrNotConnected reports that the bus session is down; ticking and
	// ordering are suspended rather than retried.
	ErrNotConnected = errors.New("bus not connected")
	// ErrStopped reports that the coordinator no longer accepts events.
	ErrStopped = errors.New("coordinator stopped")
)

// alertFeedCap bounds the in-memory feed of recent alert lines.
const alertFeedCap = 50

// Coordinator wires the simulator, ledger, order book, codec, bus, and log
// sink together. External callers only enqueue events or read atomics; every
// mutation happens on the loop goroutine.
type Coordinator struct {
	cfg    config.Config
	ledger *store.Ledger
	sim    *sim.Consumer
	book   *orders.Book
	conn   bus.Conn
	rec    sink.Recorder

	q      *intake
	cancel context.CancelFunc
	done   chan struct{}

	// known is the immutable product set, safe for concurrent validation.
	known map[string]struct{}

	// connected is written by the loop only; mirrors the loop's view for
	// cheap reads from API handlers.
	connected atomic.Bool

	// loop-owned state below; never touched off the loop goroutine.
	autoMode   bool
	focus      string
	focusWgt   float64
	focusAlert alert.Status
	alerts     []string
	timers     map[string]*time.Timer

	now func() time.Time

	metrics counters
}

type counters struct {
	ticks              atomic.Uint64
	telemetryPublished atomic.Uint64
	telemetryLogged    atomic.Uint64
	ordersPlaced       atomic.Uint64
	ordersFulfilled    atomic.Uint64
	droppedRetained    atomic.Uint64
	droppedMalformed   atomic.Uint64
}

// Metrics is a point-in-time view of the coordinator's counters.
type Metrics struct {
	Ticks              uint64 `json:"ticks"`
	TelemetryPublished uint64 `json:"telemetry_published"`
	TelemetryLogged    uint64 `json:"telemetry_logged"`
	OrdersPlaced       uint64 `json:"orders_placed"`
	OrdersFulfilled    uint64 `json:"orders_fulfilled"`
	DroppedRetained    uint64 `json:"dropped_retained"`
	DroppedMalformed   uint64 `json:"dropped_malformed"`
	IntakeDepth        int    `json:"intake_depth"`
}

// ProductStatus is one product's row in a state snapshot.
type ProductStatus struct {
	Product    string       `json:"product"`
	Weight     float64      `json:"weight"`
	Alert      alert.Status `json:"alert"`
	OrderState orders.State `json:"order_state"`
}

// Snapshot is the full externally visible state, answered by the loop.
type Snapshot struct {
	Connected    bool            `json:"connected"`
	AutoReorder  bool            `json:"auto_reorder"`
	Focus        string          `json:"focus"`
	FocusWeight  float64         `json:"focus_weight"`
	FocusAlert   alert.Status    `json:"focus_alert"`
	Products     []ProductStatus `json:"products"`
	ActiveOrders int             `json:"active_orders"`
	Alerts       []string        `json:"alerts"`
}

// New assembles a Coordinator. The focus starts on the first seeded product.
func New(cfg config.Config, ledger *store.Ledger, consumer *sim.Consumer, book *orders.Book, conn bus.Conn, rec sink.Recorder) *Coordinator {
	known := make(map[string]struct{})
	for _, p := range ledger.Products() {
		known[p] = struct{}{}
	}
	c := &Coordinator{
		cfg:        cfg,
		ledger:     ledger,
		sim:        consumer,
		book:       book,
		conn:       conn,
		rec:        rec,
		q:          newIntake(),
		done:       make(chan struct{}),
		known:      known,
		autoMode:   cfg.AutoReorder,
		focusAlert: alert.Monitoring,
		timers:     make(map[string]*time.Timer),
		now:        time.Now,
	}
	if ps := ledger.Products(); len(ps) > 0 {
		c.focus = ps[0]
	}
	return c
}

// Start launches the event loop and its tick source.
func (c *Coordinator) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	go c.run(ctx)
}

// Stop closes the intake and waits for the loop to exit. Pending fulfillment
// timers are cancelled; any timer that already fired finds the intake closed
// and its event is dropped.
func (c *Coordinator) Stop() {
	c.q.close()
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)
	defer func() {
		for p, t := range c.timers {
			t.Stop()
			delete(c.timers, p)
		}
	}()
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()
	for {
		for _, ev := range c.q.drain() {
			c.step(ev)
			c.q.processed.Add(1)
		}
		select {
		case <-ctx.Done():
			return
		case <-c.q.notify:
		case <-ticker.C:
			c.step(event{kind: evTick})
		}
	}
}

// step processes exactly one event on the loop goroutine.
func (c *Coordinator) step(ev event) {
	switch ev.kind {
	case evTick:
		c.handleTick()
	case evInbound:
		c.handleInbound(ev.msg)
	case evFulfillment:
		c.handleFulfillment(ev.product, ev.orderID)
	case evConnected:
		c.connected.Store(true)
		c.pushAlert("SUCCESS: Cloud connection established.")
		obs.Logger.Info("bus_connected")
	case evDisconnected:
		c.connected.Store(false)
		c.pushAlert("INFO: System is now Offline.")
		obs.Logger.Info("bus_disconnected")
	case evSetAuto:
		c.autoMode = ev.enabled
		obs.Logger.Info("auto_reorder_set", "enabled", ev.enabled)
	case evSetFocus:
		if _, ok := c.known[ev.product]; ok {
			c.focus = ev.product
			c.refreshFocus()
		}
	case evPlaceOrder:
		c.placeOrder(ev.product, ev.origin)
	case evQuery:
		ev.reply <- c.buildSnapshot()
	}
}

// handleTick runs one simulate-publish-reorder cycle. Ticks are inert while
// disconnected; reconnecting resumes from the next interval with no catch-up.
func (c *Coordinator) handleTick() {
	if !c.connected.Load() {
		return
	}
	c.metrics.ticks.Add(1)
	c.sim.Tick(c.ledger)
	for _, e := range c.ledger.Snapshot() {
		rec := model.TelemetryRecord{Timestamp: c.now(), Product: e.Product, Weight: e.Weight}
		if err := c.conn.Publish(c.cfg.StatusTopic, codec.EncodeTelemetry(rec)); err != nil {
			obs.Logger.Warn("telemetry_publish_failed", "product", e.Product, "error", err)
		} else {
			c.metrics.telemetryPublished.Add(1)
		}
		if c.autoMode && e.Weight < c.cfg.ReorderThreshold && c.book.State(e.Product) == orders.Idle {
			c.pushAlert(fmt.Sprintf("CRITICAL: %s low stock! Ordering...", e.Product))
			c.placeOrder(e.Product, model.OriginAuto)
		}
	}
	c.refreshFocus()
}

// handleInbound routes one bus delivery. Retained deliveries are stale state
// replayed by the broker and are dropped before any other check.
func (c *Coordinator) handleInbound(msg bus.Message) {
	if msg.Retained {
		c.metrics.droppedRetained.Add(1)
		return
	}
	if !c.connected.Load() {
		return
	}
	payload := codec.Sanitize(msg.Payload)
	switch msg.Topic {
	case c.cfg.StatusTopic:
		rec, err := codec.DecodeTelemetry(payload)
		if err != nil {
			c.metrics.droppedMalformed.Add(1)
			obs.Logger.Warn("telemetry_malformed", "error", err)
			return
		}
		rec.Timestamp = c.now()
		if err := c.rec.Record(rec); err != nil {
			obs.Logger.Error("telemetry_log_failed", "product", rec.Product, "error", err)
			return
		}
		c.metrics.telemetryLogged.Add(1)
	case c.cfg.OrderTopic:
		if !codec.IsOrderRequest(payload) {
			c.metrics.droppedMalformed.Add(1)
			return
		}
		product, ok := codec.MatchProduct(payload, c.ledger.Products())
		if !ok {
			// Lenient contract: an unnamed refill targets the focus.
			product = c.focus
		}
		if c.placeOrder(product, model.OriginRemote) {
			c.pushAlert("REMOTE ACTION: External refill request processed.")
		}
	}
}

// placeOrder opens an order and publishes its request line. Returns false
// when nothing was placed: duplicate orders are no-ops, and ordering is
// suspended while disconnected.
func (c *Coordinator) placeOrder(product string, origin model.Origin) bool {
	if !c.connected.Load() {
		obs.Logger.Warn("order_skipped_not_connected", "product", product, "origin", origin)
		return false
	}
	o, ok, err := c.book.Place(product, origin, c.now())
	if err != nil {
		obs.Logger.Error("order_place_failed", "product", product, "error", err)
		return false
	}
	if !ok {
		obs.Logger.Info("order_already_in_flight", "product", product, "origin", origin)
		return false
	}
	if err := c.conn.Publish(c.cfg.OrderTopic, codec.EncodeOrderRequest(o)); err != nil {
		obs.Logger.Warn("order_publish_failed", "product", product, "error", err)
	}
	c.metrics.ordersPlaced.Add(1)
	c.scheduleFulfillment(o)
	obs.Logger.Info("order_placed",
		"order_id", o.ID,
		"product", o.Product,
		"origin", o.Origin,
		"refill_kg", o.RefillAmount,
		"fulfill_after", o.FulfillAfter.String(),
	)
	return true
}

func (c *Coordinator) scheduleFulfillment(o model.Order) {
	c.timers[o.Product] = time.AfterFunc(o.FulfillAfter, func() {
		c.q.push(event{kind: evFulfillment, product: o.Product, orderID: o.ID})
	})
}

// handleFulfillment applies a due refill. A callback whose order is gone or
// superseded is a defensive no-op.
func (c *Coordinator) handleFulfillment(product, orderID string) {
	delete(c.timers, product)
	if o, ok := c.book.Active(product); !ok || o.ID != orderID {
		obs.Logger.Info("fulfillment_stale", "product", product, "order_id", orderID)
		return
	}
	f, ok := c.book.Fulfill(product)
	if !ok {
		return
	}
	c.metrics.ordersFulfilled.Add(1)
	c.pushAlert(fmt.Sprintf("SUCCESS: %s restocked via %s (+%.1fkg)", f.Product, f.Origin.Label(), f.Amount))
	obs.Logger.Info("order_fulfilled",
		"product", f.Product,
		"origin", f.Origin,
		"amount_kg", f.Amount,
		"new_weight_kg", f.NewWeight,
	)
	c.refreshFocus()
}

func (c *Coordinator) refreshFocus() {
	w, err := c.ledger.Get(c.focus)
	if err != nil {
		return
	}
	c.focusWgt = w
	c.focusAlert = alert.Classify(w, c.autoMode, c.thresholds())
}

func (c *Coordinator) thresholds() alert.Thresholds {
	return alert.Thresholds{LowStock: c.cfg.LowStockThreshold, Reorder: c.cfg.ReorderThreshold}
}

func (c *Coordinator) pushAlert(line string) {
	stamped := fmt.Sprintf("[%s] %s", c.now().Format("15:04:05"), line)
	c.alerts = append(c.alerts, stamped)
	if len(c.alerts) > alertFeedCap {
		c.alerts = c.alerts[len(c.alerts)-alertFeedCap:]
	}
}

func (c *Coordinator) buildSnapshot() Snapshot {
	th := c.thresholds()
	snap := Snapshot{
		Connected:    c.connected.Load(),
		AutoReorder:  c.autoMode,
		Focus:        c.focus,
		FocusWeight:  c.focusWgt,
		FocusAlert:   c.focusAlert,
		ActiveOrders: c.book.ActiveCount(),
		Alerts:       append([]string(nil), c.alerts...),
	}
	for _, e := range c.ledger.Snapshot() {
		snap.Products = append(snap.Products, ProductStatus{
			Product:    e.Product,
			Weight:     e.Weight,
			Alert:      alert.Classify(e.Weight, c.autoMode, th),
			OrderState: c.book.State(e.Product),
		})
	}
	return snap
}

// Connect dials the bus and subscribes both topics, then flips the loop to
// Connected. Transport I/O happens on the caller's goroutine, never on the
// loop.
func (c *Coordinator) Connect() error {
	if c.connected.Load() && c.conn.IsConnected() {
		return nil
	}
	if err := c.conn.Connect(); err != nil {
		return err
	}
	for _, topic := range []string{c.cfg.StatusTopic, c.cfg.OrderTopic} {
		if err := c.conn.Subscribe(topic, c.onMessage); err != nil {
			c.conn.Disconnect()
			return err
		}
	}
	if !c.q.push(event{kind: evConnected}) {
		c.conn.Disconnect()
		return ErrStopped
	}
	return nil
}

// Disconnect suspends ticking first, then tears the session down.
func (c *Coordinator) Disconnect() {
	c.q.push(event{kind: evDisconnected})
	c.conn.Disconnect()
}

// onMessage runs on the transport callback goroutine and only enqueues.
func (c *Coordinator) onMessage(msg bus.Message) {
	c.q.push(event{kind: evInbound, msg: msg})
}

// Connected reports the loop's view of the bus session.
func (c *Coordinator) Connected() bool { return c.connected.Load() }

// Products returns the fixed product set in seed order.
func (c *Coordinator) Products() []string { return c.ledger.Products() }

// Knows reports whether the product belongs to the fixed set. Safe from any
// goroutine; the set never changes after construction.
func (c *Coordinator) Knows(product string) bool {
	_, ok := c.known[product]
	return ok
}

// SetAutoMode toggles the auto-reorder policy.
func (c *Coordinator) SetAutoMode(enabled bool) error {
	if !c.q.push(event{kind: evSetAuto, enabled: enabled}) {
		return ErrStopped
	}
	return nil
}

// SetFocus moves the monitoring focus to the given product.
func (c *Coordinator) SetFocus(product string) error {
	if !c.Knows(product) {
		return fmt.Errorf("%w: %s", store.ErrUnknownProduct, product)
	}
	if !c.q.push(event{kind: evSetFocus, product: product}) {
		return ErrStopped
	}
	return nil
}

// PlaceOrder requests a replenishment for the product. The placement itself
// happens on the loop; duplicates resolve there as no-ops.
func (c *Coordinator) PlaceOrder(product string, origin model.Origin) error {
	if !c.Knows(product) {
		return fmt.Errorf("%w: %s", store.ErrUnknownProduct, product)
	}
	if !c.connected.Load() {
		return ErrNotConnected
	}
	if !c.q.push(event{kind: evPlaceOrder, product: product, origin: origin}) {
		return ErrStopped
	}
	return nil
}

// Snapshot asks the loop for the current state and waits for the answer.
func (c *Coordinator) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if !c.q.push(event{kind: evQuery, reply: reply}) {
		return Snapshot{}, ErrStopped
	}
	select {
	case s := <-reply:
		return s, nil
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Metrics returns the current counter values.
func (c *Coordinator) Metrics() Metrics {
	return Metrics{
		Ticks:              c.metrics.ticks.Load(),
		TelemetryPublished: c.metrics.telemetryPublished.Load(),
		TelemetryLogged:    c.metrics.telemetryLogged.Load(),
		OrdersPlaced:       c.metrics.ordersPlaced.Load(),
		OrdersFulfilled:    c.metrics.ordersFulfilled.Load(),
		DroppedRetained:    c.metrics.droppedRetained.Load(),
		DroppedMalformed:   c.metrics.droppedMalformed.Load(),
		IntakeDepth:        c.q.depth(),
	}
}
