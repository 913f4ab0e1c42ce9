package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/domain"
)

type gateRecorder struct {
	alerts   []string
	silences int
}

func newRecordedGate(workerID string) (*AlertGate, *gateRecorder) {
	rec := &gateRecorder{}
	g := NewAlertGate(workerID,
		func(o domain.Order) { rec.alerts = append(rec.alerts, o.ID) },
		func() { rec.silences++ },
	)
	return g, rec
}

func incoming(orders ...domain.Order) Changes {
	return Changes{Incoming: orders}
}

func TestAlertGate_FiresForOwnIncomingOrder(t *testing.T) {
	t.Parallel()

	g, rec := newRecordedGate("w1")
	g.Observe(incoming(pendingOrder("26022026-1", "w1")))

	require.Equal(t, []string{"26022026-1"}, rec.alerts)
	assert.Equal(t, "26022026-1", g.Active())
}

func TestAlertGate_IgnoresOtherCouriers(t *testing.T) {
	t.Parallel()

	g, rec := newRecordedGate("w1")
	g.Observe(incoming(pendingOrder("26022026-1", "w2")))

	assert.Empty(t, rec.alerts)
	assert.Empty(t, g.Active())
}

func TestAlertGate_SecondOrderDoesNotRetrigger(t *testing.T) {
	t.Parallel()

	g, rec := newRecordedGate("w1")
	g.Observe(incoming(pendingOrder("26022026-1", "w1")))
	g.Observe(incoming(pendingOrder("26022026-2", "w1")))

	// the second order stays in the task list without a new alert
	assert.Equal(t, []string{"26022026-1"}, rec.alerts)
	assert.Equal(t, "26022026-1", g.Active())
	assert.Zero(t, rec.silences)
}

func TestAlertGate_TransitionClearsActiveAlert(t *testing.T) {
	t.Parallel()

	g, rec := newRecordedGate("w1")
	g.Observe(incoming(pendingOrder("26022026-1", "w1")))

	g.Observe(Changes{Transitions: []Transition{{
		OrderID: "26022026-1",
		From:    domain.OrderPending,
		To:      domain.OrderAccepted,
	}}})

	assert.Empty(t, g.Active())
	assert.Equal(t, 1, rec.silences)
}

func TestAlertGate_UnrelatedTransitionKeepsAlert(t *testing.T) {
	t.Parallel()

	g, rec := newRecordedGate("w1")
	g.Observe(incoming(pendingOrder("26022026-1", "w1")))

	g.Observe(Changes{Transitions: []Transition{{
		OrderID: "26022026-9",
		From:    domain.OrderPending,
		To:      domain.OrderCancelled,
	}}})

	assert.Equal(t, "26022026-1", g.Active())
	assert.Zero(t, rec.silences)
}

func TestAlertGate_ClearSilencesUnconditionally(t *testing.T) {
	t.Parallel()

	g, rec := newRecordedGate("w1")

	// nothing active, clear must still stop any audio
	g.Clear("26022026-9")
	assert.Equal(t, 1, rec.silences)

	g.Observe(incoming(pendingOrder("26022026-1", "w1")))
	g.Clear("26022026-1")
	assert.Empty(t, g.Active())
	assert.Equal(t, 2, rec.silences)
}

func TestAlertGate_NextIncomingAfterClearFiresAgain(t *testing.T) {
	t.Parallel()

	g, rec := newRecordedGate("w1")
	g.Observe(incoming(pendingOrder("26022026-1", "w1")))
	g.Clear("26022026-1")

	g.Observe(incoming(pendingOrder("26022026-2", "w1")))
	assert.Equal(t, []string{"26022026-1", "26022026-2"}, rec.alerts)
	assert.Equal(t, "26022026-2", g.Active())
}
