package replay

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuard_CheckAndMark(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first tap is allowed", func(t *testing.T) {
		guard := NewGuard(3 * time.Second)
		assert.True(t, guard.CheckAndMark("CARD001", base))
	})

	t.Run("second tap inside window is rejected", func(t *testing.T) {
		guard := NewGuard(3 * time.Second)
		assert.True(t, guard.CheckAndMark("CARD001", base))
		assert.False(t, guard.CheckAndMark("CARD001", base.Add(time.Second)))
		assert.False(t, guard.CheckAndMark("CARD001", base.Add(2999*time.Millisecond)))
	})

	t.Run("tap after window expiry is allowed", func(t *testing.T) {
		guard := NewGuard(3 * time.Second)
		assert.True(t, guard.CheckAndMark("CARD001", base))
		assert.True(t, guard.CheckAndMark("CARD001", base.Add(3*time.Second)))
	})

	t.Run("rejected tap does not extend the window", func(t *testing.T) {
		guard := NewGuard(3 * time.Second)
		assert.True(t, guard.CheckAndMark("CARD001", base))
		assert.False(t, guard.CheckAndMark("CARD001", base.Add(2*time.Second)))
		// The window is measured from the first accepted tap, so this passes.
		assert.True(t, guard.CheckAndMark("CARD001", base.Add(3*time.Second)))
	})

	t.Run("different cards are independent", func(t *testing.T) {
		guard := NewGuard(3 * time.Second)
		assert.True(t, guard.CheckAndMark("CARD001", base))
		assert.True(t, guard.CheckAndMark("CARD002", base))
		assert.True(t, guard.CheckAndMark("CARD003", base.Add(time.Millisecond)))
	})
}

func TestGuard_ConcurrentTaps(t *testing.T) {
	guard := NewGuard(3 * time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	const goroutines = 50
	var wg sync.WaitGroup
	allowed := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- guard.CheckAndMark("CARD001", now)
		}()
	}
	wg.Wait()
	close(allowed)

	passes := 0
	for ok := range allowed {
		if ok {
			passes++
		}
	}
	assert.Equal(t, 1, passes, "exactly one concurrent tap should pass")
}

func TestGuard_PruneExpiredEntries(t *testing.T) {
	guard := NewGuard(time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < pruneThreshold; i++ {
		assert.True(t, guard.CheckAndMark(fmt.Sprintf("CARD%05d", i), base))
	}

	// All earlier entries have expired; the next tap triggers a sweep.
	later := base.Add(2 * time.Second)
	assert.True(t, guard.CheckAndMark("FRESH", later))

	guard.mu.Lock()
	size := len(guard.lastSeen)
	guard.mu.Unlock()
	assert.Equal(t, 1, size)
}
