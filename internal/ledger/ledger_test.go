package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/domain"
)

func deliveredOrder(id string, workerID string, price int64, at time.Time) domain.Order {
	return domain.Order{
		ID:          id,
		WorkerID:    workerID,
		Price:       price,
		Status:      domain.OrderDelivered,
		DeliveredAt: &at,
	}
}

func TestCompute_WorkedExample(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	in := Input{
		OpeningBalance: 1000,
		Delivered: []domain.Order{
			deliveredOrder("26022026-1", "w1", 1200, day),
			deliveredOrder("26022026-2", "w1", 1800, day),
		},
		Expenses: []domain.Expense{
			{ID: "e1", WorkerID: "w1", Title: "fuel", Amount: 500, At: day},
		},
	}

	got := Compute(in)

	assert.Equal(t, int64(3000), got.TotalDelivery)
	assert.Equal(t, int64(1000), got.OfficeShare)
	assert.Equal(t, int64(2000), got.CourierGrossShare)
	assert.Equal(t, int64(500), got.TotalExpenses)
	assert.Equal(t, int64(4000), got.TotalLiquidity)
	assert.Equal(t, int64(3500), got.NetCashOnHand)
	assert.Equal(t, int64(1500), got.CourierNetProfit)
	assert.Equal(t, int64(2500), got.CourierEquity)
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	got := Compute(Input{OpeningBalance: 700})

	assert.Equal(t, int64(0), got.TotalDelivery)
	assert.Equal(t, int64(0), got.OfficeShare)
	assert.Equal(t, int64(700), got.TotalLiquidity)
	assert.Equal(t, int64(700), got.CourierEquity)
}

func TestRoundThird(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int64
		want  int64
	}{
		{0, 0},
		{1, 0},      // 1/3 rounds down
		{2, 1},      // 2/3 rounds up
		{3, 1},
		{4, 1},
		{5, 2},
		{100, 33},   // 33.33 rounds down
		{200, 67},   // 66.67 rounds up
		{3000, 1000},
		{-50, 0},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, roundThird(tc.total), "total=%d", tc.total)
	}
}

func TestCompute_CourierAbsorbsRemainder(t *testing.T) {
	t.Parallel()

	day := time.Now()
	got := Compute(Input{
		Delivered: []domain.Order{deliveredOrder("x", "w1", 100, day)},
	})

	// 100 = 33 office + 67 courier, never 34/66.
	assert.Equal(t, int64(33), got.OfficeShare)
	assert.Equal(t, int64(67), got.CourierGrossShare)
	assert.Equal(t, got.TotalDelivery, got.OfficeShare+got.CourierGrossShare)
}

func TestInWindow(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)
	inside := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)

	assert.True(t, InWindow(inside, from, to))
	assert.True(t, InWindow(from, from, to))
	assert.True(t, InWindow(to, from, to))
	assert.False(t, InWindow(from.Add(-time.Second), from, to))
	assert.False(t, InWindow(to.Add(time.Second), from, to))

	// zero bounds are open
	assert.True(t, InWindow(inside, time.Time{}, time.Time{}))
	assert.True(t, InWindow(to.Add(time.Hour), from, time.Time{}))
	assert.True(t, InWindow(from.Add(-time.Hour), time.Time{}, to))
}

func TestFilterDelivered(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	inside := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		deliveredOrder("a", "w1", 100, inside),
		deliveredOrder("b", "w1", 100, outside),
		deliveredOrder("c", "w2", 100, inside),
		{ID: "d", WorkerID: "w1", Status: domain.OrderAccepted},
		{ID: "e", WorkerID: "w1", Status: domain.OrderDelivered}, // no timestamp
	}

	got := FilterDelivered(orders, "w1", from, to)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestFilterExpenses(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	expenses := []domain.Expense{
		{ID: "e1", WorkerID: "w1", Amount: 10, At: from.AddDate(0, 0, 5)},
		{ID: "e2", WorkerID: "w1", Amount: 20, At: to.AddDate(0, 1, 0)},
		{ID: "e3", WorkerID: "w2", Amount: 30, At: from.AddDate(0, 0, 5)},
	}

	got := FilterExpenses(expenses, "w1", from, to)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}
