package domain

import "time"

// Expense is a courier-recorded cost. Expenses are append-only: they
// are created and deleted, never mutated in place.
type Expense struct {
	ID       string    `json:"id"`
	WorkerID string    `json:"workerId"`
	Title    string    `json:"title"`
	Amount   int64     `json:"amount"`
	At       time.Time `json:"at"`
}
