package seq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSequencer struct {
	mu sync.Mutex
	n  map[string]int64
}

func newMemSequencer() *memSequencer {
	return &memSequencer{n: make(map[string]int64)}
}

func (s *memSequencer) NextDailySequence(_ context.Context, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n[day]++
	return s.n[day], nil
}

type failingSequencer struct{ err error }

func (s *failingSequencer) NextDailySequence(context.Context, string) (int64, error) {
	return 0, s.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAllocator_Next_Sequential(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 2, 26, 9, 0, 0, 0, time.UTC)
	a := NewWithClock(newMemSequencer(), fixedClock(day))

	for i := 1; i <= 5; i++ {
		id, err := a.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("26022026-%d", i), id)
	}
}

func TestAllocator_Next_ResetsPerDay(t *testing.T) {
	t.Parallel()

	seq := newMemSequencer()
	current := time.Date(2026, 2, 26, 23, 50, 0, 0, time.UTC)
	a := NewWithClock(seq, func() time.Time { return current })

	id, err := a.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "26022026-1", id)

	current = current.Add(time.Hour) // past midnight

	id, err = a.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "27022026-1", id)

	// the old day's counter row survives
	n, err := seq.NextDailySequence(context.Background(), "26022026")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAllocator_Next_Concurrent(t *testing.T) {
	t.Parallel()

	const goroutines = 50
	day := time.Date(2026, 2, 26, 9, 0, 0, 0, time.UTC)
	a := NewWithClock(newMemSequencer(), fixedClock(day))

	var (
		mu  sync.Mutex
		ids = make(map[string]struct{}, goroutines)
		wg  sync.WaitGroup
	)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			id, err := a.Next(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, goroutines)
}

func TestAllocator_Next_Error(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	a := New(&failingSequencer{err: sentinel})

	id, err := a.Next(context.Background())
	assert.Empty(t, id)
	require.ErrorIs(t, err, sentinel)
}
