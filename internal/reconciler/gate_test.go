package reconciler

import (
	"sync"
	"testing"
)

func TestGate_TryAcquire(t *testing.T) {
	var g gate

	if !g.TryAcquire() {
		t.Fatal("expected first acquire to succeed")
	}
	if g.TryAcquire() {
		t.Error("expected second acquire to fail while running")
	}
	if !g.Running() {
		t.Error("expected gate to report running")
	}

	g.Release()

	if g.Running() {
		t.Error("expected gate to be idle after release")
	}
	if !g.TryAcquire() {
		t.Error("expected acquire to succeed after release")
	}
}

func TestGate_OnlyOneWinner(t *testing.T) {
	var g gate
	var wg sync.WaitGroup
	wins := make(chan bool, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- g.TryAcquire()
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	if won != 1 {
		t.Errorf("expected exactly one winner, got %d", won)
	}
}
