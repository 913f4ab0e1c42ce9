// Package seq builds the human-readable day-scoped order identifiers.
package seq

import (
	"context"
	"fmt"
	"time"
)

// dayLayout renders the calendar-day key, e.g. "26022024".
const dayLayout = "02012006"

// Sequencer is the atomic day-keyed counter primitive offered by the
// persistence collaborator. The increment must be read-modify-write
// atomic there; the allocator adds no locking of its own.
type Sequencer interface {
	NextDailySequence(ctx context.Context, day string) (int64, error)
}

// Allocator issues "<DDMMYYYY>-<n>" identifiers with n starting at 1
// on the first allocation of each calendar day (local time). Counter
// rows outlive orders, so continuity survives order deletion.
type Allocator struct {
	seq Sequencer
	now func() time.Time
}

// New creates an Allocator on top of the given counter primitive.
func New(seq Sequencer) *Allocator {
	return &Allocator{seq: seq, now: time.Now}
}

// NewWithClock creates an Allocator with an injected clock.
func NewWithClock(seq Sequencer, now func() time.Time) *Allocator {
	return &Allocator{seq: seq, now: now}
}

// Next allocates the next identifier for today.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	day := a.now().Format(dayLayout)
	n, err := a.seq.NextDailySequence(ctx, day)
	if err != nil {
		return "", fmt.Errorf("allocate order id: %w", err)
	}
	return fmt.Sprintf("%s-%d", day, n), nil
}
