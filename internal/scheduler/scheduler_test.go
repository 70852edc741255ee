package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedule_CoalescesRapidRequests(t *testing.T) {
	s := New(30 * time.Millisecond)
	defer s.Stop()

	var first, second atomic.Int32
	s.Schedule(func() { first.Add(1) })
	s.Schedule(func() { second.Add(1) })

	time.Sleep(120 * time.Millisecond)

	if got := first.Load(); got != 0 {
		t.Fatalf("superseded task ran %d times, want 0", got)
	}
	if got := second.Load(); got != 1 {
		t.Fatalf("latest task ran %d times, want 1", got)
	}
}

func TestSchedule_ZeroDelayRunsSynchronously(t *testing.T) {
	s := New(0)
	defer s.Stop()

	ran := false
	s.Schedule(func() { ran = true })
	if !ran {
		t.Fatal("zero-delay task did not run before Schedule returned")
	}
}

func TestFlush_RunsPendingImmediately(t *testing.T) {
	s := New(time.Hour)
	defer s.Stop()

	var mu sync.Mutex
	count := 0
	s.Schedule(func() {
		mu.Lock()
		count++
		mu.Unlock()
	})
	s.Flush()

	mu.Lock()
	got := count
	mu.Unlock()
	if got != 1 {
		t.Fatalf("flush ran task %d times, want 1", got)
	}

	// Nothing left to run.
	s.Flush()
	mu.Lock()
	got = count
	mu.Unlock()
	if got != 1 {
		t.Fatalf("second flush ran task again: %d", got)
	}
}

func TestStop_DropsPendingAndRefusesNew(t *testing.T) {
	s := New(10 * time.Millisecond)

	var ran atomic.Int32
	s.Schedule(func() { ran.Add(1) })
	s.Stop()
	s.Schedule(func() { ran.Add(1) })

	time.Sleep(50 * time.Millisecond)
	if got := ran.Load(); got != 0 {
		t.Fatalf("tasks ran after Stop: %d", got)
	}
}
