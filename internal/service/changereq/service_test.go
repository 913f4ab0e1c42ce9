package changereq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/store"
	dsync "delivery-dispatch/internal/sync"
)

func strptr(s string) *string { return &s }

func int64ptr(n int64) *int64 { return &n }

type fixture struct {
	svc   *Service
	store *store.Memory
	view  *dsync.View
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveWorker(ctx, &domain.Worker{
		ID: "w1", Name: "Ann", Phone: "+79160000001", Status: domain.WorkerActive,
	}))
	require.NoError(t, m.SaveOrder(ctx, &domain.Order{
		ID: "26022026-1", Origin: "warehouse", Destination: "center", Price: 2000,
		SenderPhone: "+79160000009", WorkerID: "w1", WorkerName: "Ann",
		Status: domain.OrderAccepted, CreatedAt: time.Now().UTC(),
	}))

	view := dsync.NewView()
	svc := NewService(m, view, time.Second, logx.Nop())
	svc.newID = func() string { return "cr1" }
	return &fixture{svc: svc, store: m, view: view}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cr, err := f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		Price: int64ptr(2500),
	})
	require.NoError(t, err)

	assert.Equal(t, "cr1", cr.ID)
	assert.Equal(t, "26022026-1", cr.OrderID)
	assert.Equal(t, "w1", cr.WorkerID)
	assert.Equal(t, "Ann", cr.WorkerName)
	assert.False(t, cr.SubmittedAt.IsZero())

	// the order itself is untouched until approval
	o, err := f.store.GetOrder(context.Background(), "26022026-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), o.Price)

	pending, err := f.store.ListChangeRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestSubmit_EmptyPatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSubmit_InvalidPatchValues(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		Price: int64ptr(-10),
	})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		SenderPhone: strptr("not-a-phone"),
	})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSubmit_NotAssignedCourier(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "26022026-1", "w2", domain.OrderPatch{
		Price: int64ptr(2500),
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSubmit_MissingOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "nope", "w1", domain.OrderPatch{
		Price: int64ptr(2500),
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSubmit_TerminalOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.store.SaveOrder(context.Background(), &domain.Order{
		ID: "26022026-2", WorkerID: "w1", Status: domain.OrderDelivered,
	}))

	_, err := f.svc.Submit(context.Background(), "26022026-2", "w1", domain.OrderPatch{
		Price: int64ptr(2500),
	})
	require.ErrorIs(t, err, apperr.ErrTerminalState)
}

func TestApprove_MergesPatchAndResolves(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		Price:       int64ptr(2500),
		Description: strptr("ring twice"),
	})
	require.NoError(t, err)

	o, notice, err := f.svc.Approve(context.Background(), "cr1")
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, int64(2500), o.Price)
	assert.Equal(t, "ring twice", o.Description)
	assert.Equal(t, domain.OrderAccepted, o.Status)

	require.NotNil(t, notice)
	assert.Equal(t, "w1", notice.RecipientID)
	assert.Equal(t, domain.SeveritySuccess, notice.Severity)

	pending, err := f.store.ListChangeRequests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	stored, err := f.store.GetOrder(context.Background(), "26022026-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), stored.Price)
}

func TestApprove_VerbatimEvenIfOrderChangedSinceSubmission(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		Price: int64ptr(2500),
	})
	require.NoError(t, err)

	// admin edits the order between submission and approval
	ok, err := f.store.UpdateOrder(context.Background(), "26022026-1", domain.AdminPatch{
		OrderPatch: domain.OrderPatch{Price: int64ptr(3000), Destination: strptr("airport")},
	})
	require.NoError(t, err)
	require.True(t, ok)

	o, _, err := f.svc.Approve(context.Background(), "cr1")
	require.NoError(t, err)

	// last write wins on price, the untouched destination survives
	assert.Equal(t, int64(2500), o.Price)
	assert.Equal(t, "airport", o.Destination)
}

func TestApprove_OrderGoneStillResolves(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		Price: int64ptr(2500),
	})
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteOrder(context.Background(), "26022026-1"))

	o, notice, err := f.svc.Approve(context.Background(), "cr1")
	require.NoError(t, err)
	assert.Nil(t, o)
	require.NotNil(t, notice)

	pending, err := f.store.ListChangeRequests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApprove_MissingRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, _, err := f.svc.Approve(context.Background(), "ghost")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReject_LeavesOrderUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		Price: int64ptr(2500),
	})
	require.NoError(t, err)

	notice, err := f.svc.Reject(context.Background(), "cr1")
	require.NoError(t, err)
	require.NotNil(t, notice)
	assert.Equal(t, domain.SeverityWarning, notice.Severity)

	o, err := f.store.GetOrder(context.Background(), "26022026-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), o.Price)

	pending, err := f.store.ListChangeRequests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReject_MissingRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Reject(context.Background(), "ghost")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolutionKeepsOtherRequestsPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ids := []string{"cr1", "cr2"}
	n := 0
	f.svc.newID = func() string { id := ids[n]; n++; return id }

	_, err := f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		Price: int64ptr(2500),
	})
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), "26022026-1", "w1", domain.OrderPatch{
		Description: strptr("leave at door"),
	})
	require.NoError(t, err)

	_, _, err = f.svc.Approve(context.Background(), "cr1")
	require.NoError(t, err)

	pending, err := f.store.ListChangeRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "cr2", pending[0].ID)
}
