// Package replay filters duplicate card taps. A reader bounce or an
// impatient second tap can resubmit the same debit within a couple of
// seconds; the guard rejects those before they reach the ledger.
package replay

import (
	"sync"
	"time"
)

// pruneThreshold bounds map growth between sweeps.
const pruneThreshold = 4096

// Guard tracks the last accepted tap per card. It is memory-resident by
// design: losing its state on restart only means one duplicate slips
// through, while the ledger's own locking still keeps the balance correct.
type Guard struct {
	window time.Duration

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewGuard creates a guard that rejects a second tap on the same card
// within the given window.
func NewGuard(window time.Duration) *Guard {
	return &Guard{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// CheckAndMark reports whether a tap at the given instant is allowed.
// An allowed tap is recorded so the next one inside the window is rejected.
// Check and mark are a single step under the lock, so two concurrent taps
// on the same card can never both pass.
func (g *Guard) CheckAndMark(cardID string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.lastSeen[cardID]; ok && now.Sub(last) < g.window {
		return false
	}

	if len(g.lastSeen) >= pruneThreshold {
		g.pruneLocked(now)
	}

	g.lastSeen[cardID] = now
	return true
}

// pruneLocked drops entries whose window has already expired. Caller holds mu.
func (g *Guard) pruneLocked(now time.Time) {
	for cardID, last := range g.lastSeen {
		if now.Sub(last) >= g.window {
			delete(g.lastSeen, cardID)
		}
	}
}
