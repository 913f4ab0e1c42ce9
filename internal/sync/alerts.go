package sync

import (
	"sync"

	"delivery-dispatch/internal/domain"
)

// AlertGate serializes incoming-order alerts for one courier client.
// At most one alert is active at a time; a second pending order
// arriving meanwhile stays in the task list but does not re-trigger
// the alert. Resolving or clearing the active order always stops the
// alert audio, whatever started it.
type AlertGate struct {
	mu       sync.Mutex
	workerID string
	active   string

	onAlert func(domain.Order)
	silence func()
}

// NewAlertGate wires the gate to the presentation callbacks. onAlert
// fires when an alert becomes active; silence stops any ongoing audio.
func NewAlertGate(workerID string, onAlert func(domain.Order), silence func()) *AlertGate {
	return &AlertGate{workerID: workerID, onAlert: onAlert, silence: silence}
}

// Observe processes one feed delivery's changes. It raises an alert
// for the first incoming order addressed to this courier when no alert
// is active, and clears the active alert when its order left pending.
func (g *AlertGate) Observe(ch Changes) {
	g.mu.Lock()

	var fire *domain.Order
	for i := range ch.Incoming {
		o := ch.Incoming[i]
		if o.WorkerID != g.workerID {
			continue
		}
		if g.active == "" {
			g.active = o.ID
			fire = &o
		}
		break
	}

	cleared := false
	for _, t := range ch.Transitions {
		if t.OrderID == g.active && t.From == domain.OrderPending {
			g.active = ""
			cleared = true
			break
		}
	}
	g.mu.Unlock()

	if fire != nil && g.onAlert != nil {
		g.onAlert(*fire)
	}
	if cleared && g.silence != nil {
		g.silence()
	}
}

// Clear dismisses the alert for the given order. The audio is silenced
// unconditionally: a clear must stop sound regardless of which alert
// source started it.
func (g *AlertGate) Clear(orderID string) {
	g.mu.Lock()
	if g.active == orderID {
		g.active = ""
	}
	g.mu.Unlock()

	if g.silence != nil {
		g.silence()
	}
}

// Active returns the id of the currently alerted order, if any.
func (g *AlertGate) Active() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}
