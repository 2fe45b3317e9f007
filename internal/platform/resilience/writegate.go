package resilience

import "sync/atomic"

// WriteGate admits at most one holder at a time. Callers that lose the race
// are turned away instead of waiting.
type WriteGate struct {
	held atomic.Bool
}

// TryAcquire reports whether the gate was free. A true result must be paired
// with Release.
func (g *WriteGate) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

func (g *WriteGate) Release() {
	g.held.Store(false)
}

func (g *WriteGate) Held() bool {
	return g.held.Load()
}
