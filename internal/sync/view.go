// Package sync maintains the locally materialized state driven by the
// external feed. The feed is push-style: every delivery replaces the
// full collections, and the view diffs against its previous snapshot
// to detect transitions worth alerting on.
package sync

import (
	"sync"

	"delivery-dispatch/internal/domain"
)

// Collections is one full feed delivery.
type Collections struct {
	Orders         []domain.Order         `json:"orders"`
	Workers        []domain.Worker        `json:"workers"`
	Expenses       []domain.Expense       `json:"expenses"`
	ChangeRequests []domain.ChangeRequest `json:"changeRequests"`
}

// Transition is a detected order status change between two feed
// deliveries.
type Transition struct {
	OrderID  string
	WorkerID string
	From     domain.OrderStatus
	To       domain.OrderStatus
}

// Changes summarizes what one feed delivery altered. Incoming holds
// orders that became pending-and-assigned in this delivery, the
// trigger for the incoming-order alert workflow.
type Changes struct {
	Version     uint64
	Transitions []Transition
	Incoming    []domain.Order
}

// Snapshot is a read-only copy of the current state.
type Snapshot struct {
	Version        uint64                 `json:"version"`
	Orders         []domain.Order         `json:"orders"`
	Workers        []domain.Worker        `json:"workers"`
	Expenses       []domain.Expense       `json:"expenses"`
	ChangeRequests []domain.ChangeRequest `json:"changeRequests"`
}

// View owns the materialized collections. All mutation goes through
// Apply or the single-entity mirror methods; readers only ever get
// copies, which keeps the diffing correct.
type View struct {
	mu       sync.RWMutex
	version  uint64
	orders   map[string]domain.Order
	workers  map[string]domain.Worker
	expenses map[string]domain.Expense
	requests map[string]domain.ChangeRequest
}

// NewView returns an empty view at version zero.
func NewView() *View {
	return &View{
		orders:   make(map[string]domain.Order),
		workers:  make(map[string]domain.Worker),
		expenses: make(map[string]domain.Expense),
		requests: make(map[string]domain.ChangeRequest),
	}
}

// Apply replaces every collection with the feed delivery, bumps the
// version and reports the detected changes.
func (v *View) Apply(c Collections) Changes {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev := v.orders
	next := make(map[string]domain.Order, len(c.Orders))
	for _, o := range c.Orders {
		next[o.ID] = o
	}

	ch := Changes{}
	for id, o := range next {
		old, existed := prev[id]
		switch {
		case !existed:
			if o.Status == domain.OrderPending && o.Assigned() {
				ch.Incoming = append(ch.Incoming, o)
			}
		case old.Status != o.Status:
			ch.Transitions = append(ch.Transitions, Transition{
				OrderID:  id,
				WorkerID: o.WorkerID,
				From:     old.Status,
				To:       o.Status,
			})
		case o.Status == domain.OrderPending && o.Assigned() && !old.Assigned():
			// reassignment of a pooled order also counts as incoming
			ch.Incoming = append(ch.Incoming, o)
		}
	}

	v.orders = next
	v.workers = make(map[string]domain.Worker, len(c.Workers))
	for _, w := range c.Workers {
		v.workers[w.ID] = w
	}
	v.expenses = make(map[string]domain.Expense, len(c.Expenses))
	for _, e := range c.Expenses {
		v.expenses[e.ID] = e
	}
	v.requests = make(map[string]domain.ChangeRequest, len(c.ChangeRequests))
	for _, cr := range c.ChangeRequests {
		v.requests[cr.ID] = cr
	}

	v.version++
	ch.Version = v.version
	return ch
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := Snapshot{
		Version:        v.version,
		Orders:         make([]domain.Order, 0, len(v.orders)),
		Workers:        make([]domain.Worker, 0, len(v.workers)),
		Expenses:       make([]domain.Expense, 0, len(v.expenses)),
		ChangeRequests: make([]domain.ChangeRequest, 0, len(v.requests)),
	}
	for _, o := range v.orders {
		s.Orders = append(s.Orders, o)
	}
	for _, w := range v.workers {
		s.Workers = append(s.Workers, w)
	}
	for _, e := range v.expenses {
		s.Expenses = append(s.Expenses, e)
	}
	for _, cr := range v.requests {
		s.ChangeRequests = append(s.ChangeRequests, cr)
	}
	return s
}

// Version returns the current feed version.
func (v *View) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// GetOrder returns a copy of one order, if present.
func (v *View) GetOrder(id string) (domain.Order, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	o, ok := v.orders[id]
	return o, ok
}

// The mirror methods below apply a single confirmed mutation without
// waiting for the next feed delivery. They bump the version so
// reactive readers re-render.

func (v *View) PutOrder(o domain.Order) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.orders[o.ID] = o
	v.version++
}

func (v *View) DropOrder(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.orders, id)
	v.version++
}

func (v *View) PutWorker(w domain.Worker) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.workers[w.ID] = w
	v.version++
}

func (v *View) DropWorker(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.workers, id)
	v.version++
}

func (v *View) PutExpense(e domain.Expense) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expenses[e.ID] = e
	v.version++
}

func (v *View) DropExpense(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.expenses, id)
	v.version++
}

func (v *View) PutChangeRequest(cr domain.ChangeRequest) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.requests[cr.ID] = cr
	v.version++
}

func (v *View) DropChangeRequest(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.requests, id)
	v.version++
}
