package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func int64ptr(n int64) *int64 { return &n }

func TestOrderPatch_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, OrderPatch{}.Empty())
	assert.False(t, OrderPatch{Price: int64ptr(100)}.Empty())
	assert.False(t, OrderPatch{Description: strptr("")}.Empty())

	assert.True(t, AdminPatch{}.Empty())
	assert.False(t, AdminPatch{WorkerID: strptr("w1")}.Empty())
}

func TestAdminPatch_Apply(t *testing.T) {
	t.Parallel()

	o := Order{
		ID:          "26022026-1",
		Origin:      "warehouse",
		Destination: "center",
		Price:       2000,
		SenderPhone: "+79160000001",
		WorkerID:    "w1",
		WorkerName:  "Ann",
		Status:      OrderAccepted,
	}

	p := AdminPatch{
		OrderPatch: OrderPatch{
			Price:       int64ptr(2500),
			Description: strptr("fragile"),
		},
		WorkerID: strptr("w2"),
	}
	p.Apply(&o)

	assert.Equal(t, int64(2500), o.Price)
	assert.Equal(t, "fragile", o.Description)
	assert.Equal(t, "w2", o.WorkerID)

	// untouched fields survive
	assert.Equal(t, "warehouse", o.Origin)
	assert.Equal(t, "center", o.Destination)
	assert.Equal(t, OrderAccepted, o.Status)
}

func TestAdminPatch_Apply_ExplicitEmptyString(t *testing.T) {
	t.Parallel()

	o := Order{Description: "old note", RecipientPhone: "+79160000002"}

	// a pointer to "" is a real change, unlike a nil pointer
	p := AdminPatch{OrderPatch: OrderPatch{Description: strptr("")}}
	p.Apply(&o)

	assert.Empty(t, o.Description)
	assert.Equal(t, "+79160000002", o.RecipientPhone)
}

func TestOrder_Assigned(t *testing.T) {
	t.Parallel()

	o := Order{}
	assert.False(t, o.Assigned())
	o.WorkerID = "w1"
	assert.True(t, o.Assigned())
}

func TestPartialWorkerUpdate_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, PartialWorkerUpdate{ID: "w1"}.Empty())

	st := WorkerSuspended
	assert.False(t, PartialWorkerUpdate{Status: &st}.Empty())
}
