package coordinator

import (
	"sync"
	"sync/atomic"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/bus"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/model"
)

type eventKind int

const (
	evTick eventKind = iota
	evInbound
	evFulfillment
	evConnected
	evDisconnected
	evSetAuto
	evSetFocus
	evPlaceOrder
	evQuery
)

// event is one unit of work for the coordinator loop. All state mutation
// flows through events so a single goroutine owns the ledger and the book.
type event struct {
	kind    eventKind
	msg     bus.Message
	product string
	origin  model.Origin
	orderID string
	enabled bool
	reply   chan Snapshot
}

// intake is an unbounded event queue with non-blocking push. Producers
// (ticker, bus callbacks, fulfillment timers, API handlers) never wait on
// the loop; the loop drains the backlog between waits.
type intake struct {
	mu      sync.Mutex
	backlog []event
	notify  chan struct{}
	closed  atomic.Bool

	accepted  atomic.Uint64
	processed atomic.Uint64
}

func newIntake() *intake {
	return &intake{notify: make(chan struct{}, 1)}
}

// push appends an event and nudges the loop. It refuses events once the
// intake is closed, which is how late fulfillment timers are kept away from
// torn-down state.
func (q *intake) push(ev event) bool {
	if q.closed.Load() {
		return false
	}
	q.accepted.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// drain takes the whole backlog in arrival order.
func (q *intake) drain() []event {
	q.mu.Lock()
	evs := q.backlog
	q.backlog = nil
	q.mu.Unlock()
	return evs
}

func (q *intake) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

func (q *intake) close() { q.closed.Store(true) }
