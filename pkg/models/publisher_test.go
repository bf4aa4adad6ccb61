package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedSnapshot(n int) Snapshot {
	return Snapshot{"seq": {ModelID: "seq", DiskUsageBytes: int64(n)}}
}

func receiveOne(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return snap
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestCurrentBeforeFirstReplace(t *testing.T) {
	p := NewPublisher()

	snap := p.Current()

	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestCurrentReturnsCopy(t *testing.T) {
	p := NewPublisher()
	p.Replace(numberedSnapshot(1))

	snap := p.Current()
	snap["seq"] = ModelState{ModelID: "seq", DiskUsageBytes: 999}

	assert.Equal(t, int64(1), p.Current()["seq"].DiskUsageBytes)
}

func TestSubscriberReceivesReplacementsInOrder(t *testing.T) {
	p := NewPublisher()
	ch, cancel := p.Subscribe()
	defer cancel()

	for i := 1; i <= 10; i++ {
		p.Replace(numberedSnapshot(i))
	}

	for i := 1; i <= 10; i++ {
		snap := receiveOne(t, ch)
		assert.Equal(t, int64(i), snap["seq"].DiskUsageBytes, "event %d out of order", i)
	}
}

func TestAllSubscribersSeeSameOrder(t *testing.T) {
	p := NewPublisher()

	const subscribers = 5
	channels := make([]<-chan Snapshot, subscribers)
	for i := range channels {
		ch, cancel := p.Subscribe()
		defer cancel()
		channels[i] = ch
	}
	assert.Equal(t, subscribers, p.SubscriberCount())

	for i := 1; i <= 20; i++ {
		p.Replace(numberedSnapshot(i))
	}

	for s, ch := range channels {
		for i := 1; i <= 20; i++ {
			snap := receiveOne(t, ch)
			assert.Equal(t, int64(i), snap["seq"].DiskUsageBytes,
				fmt.Sprintf("subscriber %d event %d", s, i))
		}
	}
}

func TestLateSubscriberSeesOnlyFutureEvents(t *testing.T) {
	p := NewPublisher()
	p.Replace(numberedSnapshot(1))
	p.Replace(numberedSnapshot(2))

	ch, cancel := p.Subscribe()
	defer cancel()

	// The missed history is available through Current
	assert.Equal(t, int64(2), p.Current()["seq"].DiskUsageBytes)

	p.Replace(numberedSnapshot(3))
	snap := receiveOne(t, ch)
	assert.Equal(t, int64(3), snap["seq"].DiskUsageBytes)
}

func TestCancelClosesChannel(t *testing.T) {
	p := NewPublisher()
	ch, cancel := p.Subscribe()

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected closed channel")
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Equal(t, 0, p.SubscriberCount())

	// Cancel is idempotent
	cancel()
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	p := NewPublisher()
	ch, cancel := p.Subscribe()
	defer cancel()

	// Publish far more than any channel buffer without reading anything
	done := make(chan struct{})
	go func() {
		for i := 1; i <= 500; i++ {
			p.Replace(numberedSnapshot(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked on slow subscriber")
	}

	// Every event is still delivered, in order
	for i := 1; i <= 500; i++ {
		snap := receiveOne(t, ch)
		require.Equal(t, int64(i), snap["seq"].DiskUsageBytes)
	}
}

func TestSubscriberGetsIndependentCopies(t *testing.T) {
	p := NewPublisher()
	ch, cancel := p.Subscribe()
	defer cancel()

	original := numberedSnapshot(1)
	p.Replace(original)
	original["seq"] = ModelState{ModelID: "seq", DiskUsageBytes: 999}

	snap := receiveOne(t, ch)
	assert.Equal(t, int64(1), snap["seq"].DiskUsageBytes)
}
