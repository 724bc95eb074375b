package latest_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tashuroute/tashuroute/internal/latest"
)

func TestTracker_NewRequestSupersedesOld(t *testing.T) {
	tracker := latest.NewTracker()

	first, firstCtx := tracker.Begin(context.Background(), "device-1")
	assert.True(t, tracker.IsCurrent(first))

	second, secondCtx := tracker.Begin(context.Background(), "device-1")

	assert.False(t, tracker.IsCurrent(first))
	assert.True(t, tracker.IsCurrent(second))
	assert.ErrorIs(t, firstCtx.Err(), context.Canceled)
	assert.NoError(t, secondCtx.Err())

	assert.False(t, tracker.Done(first), "stale completion is discarded")
	assert.True(t, tracker.Done(second))
	assert.Zero(t, tracker.Pending())
}

func TestTracker_KeysAreIndependent(t *testing.T) {
	tracker := latest.NewTracker()

	a, aCtx := tracker.Begin(context.Background(), "a")
	b, _ := tracker.Begin(context.Background(), "b")

	assert.True(t, tracker.IsCurrent(a))
	assert.True(t, tracker.IsCurrent(b))
	assert.NoError(t, aCtx.Err())
	assert.Equal(t, 2, tracker.Pending())
	assert.Equal(t, "a", a.Key())
}

func TestTracker_DoneCancelsContext(t *testing.T) {
	tracker := latest.NewTracker()

	ticket, ctx := tracker.Begin(context.Background(), "k")
	assert.True(t, tracker.Done(ticket))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, tracker.IsCurrent(ticket))
	assert.False(t, tracker.Done(ticket))
}

func TestTracker_ParentCancellation(t *testing.T) {
	tracker := latest.NewTracker()
	parent, cancel := context.WithCancel(context.Background())

	ticket, ctx := tracker.Begin(parent, "k")
	cancel()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, tracker.IsCurrent(ticket), "parent cancellation does not supersede")
}

func TestTracker_ExactlyOneWinner(t *testing.T) {
	tracker := latest.NewTracker()

	tickets := make([]latest.Ticket, 50)
	var wg sync.WaitGroup
	for i := range tickets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tickets[i], _ = tracker.Begin(context.Background(), "k")
		}(i)
	}
	wg.Wait()

	current := 0
	for _, tk := range tickets {
		if tracker.IsCurrent(tk) {
			current++
		}
	}
	assert.Equal(t, 1, current)
}
