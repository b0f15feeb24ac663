package reconciler

import "sync/atomic"

// gate enforces the at-most-one-concurrent-pass policy. It is a two-state
// machine, Idle -> Running -> Idle; a second acquire while Running fails
// instead of blocking.
type gate struct {
	running atomic.Bool
}

func (g *gate) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

func (g *gate) Release() {
	g.running.Store(false)
}

func (g *gate) Running() bool {
	return g.running.Load()
}
