package store

import (
	"context"
	"fmt"
	"sync"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

// Memory is an in-process Store. It backs the unit and router tests
// and is the change source for the local view there; the deployed
// containers use the pgx-backed Store. All methods are safe for
// concurrent use.
//
// Transactions are emulated by running the closure against cloned
// collections and swapping them in only on success, so a failed
// closure leaves nothing mutated.
type Memory struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	workers   map[string]domain.Worker
	expenses  map[string]domain.Expense
	requests  map[string]domain.ChangeRequest
	sequences map[string]int64

	subs   map[int]func(Snapshot)
	nextID int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		orders:    make(map[string]domain.Order),
		workers:   make(map[string]domain.Worker),
		expenses:  make(map[string]domain.Expense),
		requests:  make(map[string]domain.ChangeRequest),
		sequences: make(map[string]int64),
		subs:      make(map[int]func(Snapshot)),
	}
}

// Subscribe registers a callback receiving the full current state
// synchronously now and after every subsequent mutation. The returned
// function unsubscribes.
func (m *Memory) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	snap := m.snapshotLocked()
	m.mu.Unlock()

	fn(snap)
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// notifyLocked snapshots state and fires subscribers outside the lock.
func (m *Memory) notifyLocked() {
	snap := m.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	go func() {
		for _, fn := range subs {
			fn(snap)
		}
	}()
}

func (m *Memory) snapshotLocked() Snapshot {
	s := Snapshot{
		Orders:         make([]domain.Order, 0, len(m.orders)),
		Workers:        make([]domain.Worker, 0, len(m.workers)),
		Expenses:       make([]domain.Expense, 0, len(m.expenses)),
		ChangeRequests: make([]domain.ChangeRequest, 0, len(m.requests)),
		Sequences:      make(map[string]int64, len(m.sequences)),
	}
	for _, o := range m.orders {
		s.Orders = append(s.Orders, o)
	}
	for _, w := range m.workers {
		s.Workers = append(s.Workers, w)
	}
	for _, e := range m.expenses {
		s.Expenses = append(s.Expenses, e)
	}
	for _, cr := range m.requests {
		s.ChangeRequests = append(s.ChangeRequests, cr)
	}
	for k, v := range m.sequences {
		s.Sequences[k] = v
	}
	return s
}

// memTx is the transactional view over cloned collections.
type memTx struct {
	orders   map[string]domain.Order
	workers  map[string]domain.Worker
	requests map[string]domain.ChangeRequest
}

func cloneMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// WithTx runs fn against cloned collections and commits them on success.
func (m *Memory) WithTx(ctx context.Context, fn func(tx TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		orders:   cloneMap(m.orders),
		workers:  cloneMap(m.workers),
		requests: cloneMap(m.requests),
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.orders = tx.orders
	m.workers = tx.workers
	m.requests = tx.requests
	m.notifyLocked()
	return nil
}

func (t *memTx) GetOrderForUpdate(_ context.Context, id string) (*domain.Order, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (t *memTx) PutOrder(_ context.Context, o *domain.Order) error {
	t.orders[o.ID] = *o
	return nil
}

func (t *memTx) GetWorker(_ context.Context, id string) (*domain.Worker, error) {
	w, ok := t.workers[id]
	if !ok {
		return nil, nil
	}
	cp := w
	return &cp, nil
}

func (t *memTx) CreditWorkerDelivery(_ context.Context, workerID string, price int64) error {
	w, ok := t.workers[workerID]
	if !ok {
		return fmt.Errorf("credit worker %s: %w", workerID, apperr.ErrNotFound)
	}
	w.OrdersCompleted++
	w.TotalEarnings += price
	t.workers[workerID] = w
	return nil
}

func (t *memTx) GetChangeRequestForUpdate(_ context.Context, id string) (*domain.ChangeRequest, error) {
	cr, ok := t.requests[id]
	if !ok {
		return nil, nil
	}
	cp := cr
	return &cp, nil
}

func (t *memTx) DeleteChangeRequest(_ context.Context, id string) error {
	delete(t.requests, id)
	return nil
}

// --- orders ---

func (m *Memory) ListOrders(context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (m *Memory) SaveOrder(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = *o
	m.notifyLocked()
	return nil
}

func (m *Memory) UpdateOrder(_ context.Context, id string, patch domain.AdminPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	patch.Apply(&o)
	m.orders[id] = o
	m.notifyLocked()
	return true, nil
}

func (m *Memory) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	m.notifyLocked()
	return nil
}

// --- workers ---

func (m *Memory) ListWorkers(context.Context) ([]domain.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		out = append(out, w)
	}
	return out, nil
}

func (m *Memory) GetWorker(_ context.Context, id string) (*domain.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, nil
	}
	cp := w
	return &cp, nil
}

func (m *Memory) SaveWorker(_ context.Context, w *domain.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.workers {
		if id != w.ID && other.Phone == w.Phone {
			return fmt.Errorf("save worker: phone %s: %w", w.Phone, apperr.ErrConflict)
		}
	}
	m.workers[w.ID] = *w
	m.notifyLocked()
	return nil
}

func (m *Memory) UpdateWorker(_ context.Context, u domain.PartialWorkerUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[u.ID]
	if !ok {
		return false, nil
	}
	if u.Phone != nil {
		for id, other := range m.workers {
			if id != u.ID && other.Phone == *u.Phone {
				return false, fmt.Errorf("update worker: phone %s: %w", *u.Phone, apperr.ErrConflict)
			}
		}
		w.Phone = *u.Phone
	}
	if u.Name != nil {
		w.Name = *u.Name
	}
	if u.Status != nil {
		w.Status = *u.Status
	}
	if u.OpeningBalance != nil {
		w.OpeningBalance = *u.OpeningBalance
	}
	if u.Location != nil {
		loc := *u.Location
		w.Location = &loc
	}
	if u.Tone != nil {
		w.Tone = *u.Tone
	}
	m.workers[u.ID] = w
	m.notifyLocked()
	return true, nil
}

func (m *Memory) DeleteWorker(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workers, id)
	m.notifyLocked()
	return nil
}

// --- expenses ---

func (m *Memory) ListExpenses(context.Context) ([]domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) SaveExpense(_ context.Context, e *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.ID] = *e
	m.notifyLocked()
	return nil
}

func (m *Memory) DeleteExpense(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expenses, id)
	m.notifyLocked()
	return nil
}

// --- change requests ---

func (m *Memory) ListChangeRequests(context.Context) ([]domain.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChangeRequest, 0, len(m.requests))
	for _, cr := range m.requests {
		out = append(out, cr)
	}
	return out, nil
}

func (m *Memory) SaveChangeRequest(_ context.Context, cr *domain.ChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[cr.ID] = *cr
	m.notifyLocked()
	return nil
}

func (m *Memory) DeleteChangeRequest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, id)
	m.notifyLocked()
	return nil
}

// --- sequences and bulk ops ---

// NextDailySequence increments the day counter under the store lock,
// which makes concurrent allocations collision-free.
func (m *Memory) NextDailySequence(_ context.Context, day string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[day]++
	return m.sequences[day], nil
}

// BackupAll returns a full copy of every collection.
func (m *Memory) BackupAll(context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snapshotLocked()
	return &s, nil
}

// RestoreAll replaces every collection with the snapshot contents.
func (m *Memory) RestoreAll(_ context.Context, s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("restore: %w", apperr.ErrInvalid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = make(map[string]domain.Order, len(s.Orders))
	for _, o := range s.Orders {
		m.orders[o.ID] = o
	}
	m.workers = make(map[string]domain.Worker, len(s.Workers))
	for _, w := range s.Workers {
		m.workers[w.ID] = w
	}
	m.expenses = make(map[string]domain.Expense, len(s.Expenses))
	for _, e := range s.Expenses {
		m.expenses[e.ID] = e
	}
	m.requests = make(map[string]domain.ChangeRequest, len(s.ChangeRequests))
	for _, cr := range s.ChangeRequests {
		m.requests[cr.ID] = cr
	}
	m.sequences = make(map[string]int64, len(s.Sequences))
	for k, v := range s.Sequences {
		m.sequences[k] = v
	}
	m.notifyLocked()
	return nil
}

// FullReset drops every collection, counters included.
func (m *Memory) FullReset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = make(map[string]domain.Order)
	m.workers = make(map[string]domain.Worker)
	m.expenses = make(map[string]domain.Expense)
	m.requests = make(map[string]domain.ChangeRequest)
	m.sequences = make(map[string]int64)
	m.notifyLocked()
	return nil
}

var _ Store = (*Memory)(nil)
