package domain

import "time"

// Geo is a last-known courier location fix.
type Geo struct {
	Lat float64   `json:"lat"`
	Lng float64   `json:"lng"`
	At  time.Time `json:"at"`
}

// Worker represents a courier. The phone doubles as the login
// identifier and must be unique across workers.
type Worker struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Phone           string       `json:"phone"`
	Status          WorkerStatus `json:"status"`
	OrdersCompleted int64        `json:"ordersCompleted"`
	TotalEarnings   int64        `json:"totalEarnings"`
	OpeningBalance  int64        `json:"openingBalance"`
	Location        *Geo         `json:"location,omitempty"`
	Tone            string       `json:"tone,omitempty"`
}

// PartialWorkerUpdate carries optional fields to update a worker.
// A nil field means "do not change" that attribute. Counters are
// excluded: they are incremented only by the deliver transition.
type PartialWorkerUpdate struct {
	ID             string        `json:"id"`
	Name           *string       `json:"name,omitempty"`
	Phone          *string       `json:"phone,omitempty"`
	Status         *WorkerStatus `json:"status,omitempty"`
	OpeningBalance *int64        `json:"openingBalance,omitempty"`
	Location       *Geo          `json:"location,omitempty"`
	Tone           *string       `json:"tone,omitempty"`
}

// Empty reports whether the update proposes no changes.
func (u PartialWorkerUpdate) Empty() bool {
	return u.Name == nil && u.Phone == nil && u.Status == nil &&
		u.OpeningBalance == nil && u.Location == nil && u.Tone == nil
}
