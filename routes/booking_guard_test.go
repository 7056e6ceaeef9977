package routes

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Races N creation attempts for the same room and overlapping dates through
// the guard, using the same check-then-insert sequence as CreateBooking.
// Exactly one may win.
func TestConcurrentOverlappingCreatesSingleWinner(t *testing.T) {
	guard := newRoomGuard()

	type interval struct {
		in, out time.Time
	}
	var ledger []interval
	var wins int32

	checkIn := date(2024, 6, 1)
	checkOut := date(2024, 6, 5)
	const attempts = 16

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release := guard.acquire(42)
			defer release()

			for _, existing := range ledger {
				if overlaps(existing.in, existing.out, checkIn, checkOut) {
					return
				}
			}
			ledger = append(ledger, interval{checkIn, checkOut})
			atomic.AddInt32(&wins, 1)
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly 1 successful booking, got %d", wins)
	}
	if len(ledger) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(ledger))
	}
}

func TestGuardLocksPerRoom(t *testing.T) {
	guard := newRoomGuard()

	releaseA := guard.acquire(1)
	// A held lock on room 1 must not block room 2.
	done := make(chan struct{})
	go func() {
		releaseB := guard.acquire(2)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on one room blocked another room")
	}
	releaseA()

	// Re-acquiring the released room must succeed.
	release := guard.acquire(1)
	release()
}
