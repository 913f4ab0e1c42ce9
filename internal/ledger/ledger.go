// Package ledger derives the per-courier financial figures from raw
// orders, expenses and an opening balance. Everything here is pure:
// the same inputs always produce the same Summary, which is what makes
// report output reproducible.
package ledger

import (
	"time"

	"delivery-dispatch/internal/domain"
)

// Input is a raw snapshot for one courier and reporting window.
type Input struct {
	OpeningBalance int64
	Delivered      []domain.Order
	Expenses       []domain.Expense
}

// Summary holds the derived figures. It is never persisted; callers
// recompute it from the entities on every read.
type Summary struct {
	TotalDelivery     int64 `json:"totalDelivery"`
	OfficeShare       int64 `json:"officeShare"`
	CourierGrossShare int64 `json:"courierGrossShare"`
	TotalExpenses     int64 `json:"totalExpenses"`
	TotalLiquidity    int64 `json:"totalLiquidity"`
	NetCashOnHand     int64 `json:"netCashOnHand"`
	CourierNetProfit  int64 `json:"courierNetProfit"`
	CourierEquity     int64 `json:"courierEquity"`
}

// Compute derives the full summary. The office share is the rounded
// third of the delivery total; the courier share absorbs the rounding
// remainder. That asymmetry favours the office and is intentional.
func Compute(in Input) Summary {
	var total int64
	for _, o := range in.Delivered {
		total += o.Price
	}
	var expenses int64
	for _, e := range in.Expenses {
		expenses += e.Amount
	}

	office := roundThird(total)
	gross := total - office
	profit := gross - expenses

	return Summary{
		TotalDelivery:     total,
		OfficeShare:       office,
		CourierGrossShare: gross,
		TotalExpenses:     expenses,
		TotalLiquidity:    in.OpeningBalance + total,
		NetCashOnHand:     in.OpeningBalance + total - expenses,
		CourierNetProfit:  profit,
		CourierEquity:     in.OpeningBalance + profit,
	}
}

// roundThird returns total/3 rounded half-up. For non-negative totals
// the quotient's fraction is 0, 1/3 or 2/3, so adding one before the
// integer division rounds exactly the 2/3 case up.
func roundThird(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total + 1) / 3
}

// InWindow reports whether t falls inside [from, to]. A zero bound is
// open on that side.
func InWindow(t time.Time, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

// FilterDelivered keeps the orders delivered by the given courier
// inside the window. Orders without a delivered timestamp are skipped.
func FilterDelivered(orders []domain.Order, workerID string, from, to time.Time) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != domain.OrderDelivered || o.WorkerID != workerID || o.DeliveredAt == nil {
			continue
		}
		if InWindow(*o.DeliveredAt, from, to) {
			out = append(out, o)
		}
	}
	return out
}

// FilterExpenses keeps the courier's expenses inside the window.
func FilterExpenses(expenses []domain.Expense, workerID string, from, to time.Time) []domain.Expense {
	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.WorkerID != workerID {
			continue
		}
		if InWindow(e.At, from, to) {
			out = append(out, e)
		}
	}
	return out
}
