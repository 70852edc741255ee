// Package scheduler coalesces rapid successive render requests into a
// single-slot pending queue: at most one render is scheduled at a time, and
// a newer request supersedes a pending one that has not started yet. The
// debounce is a latency optimization only; a zero delay runs every request
// synchronously and must produce the same results.
package scheduler

import (
	"sync"
	"time"
)

// Task is one deferred render pass.
type Task func()

// Scheduler is the single-slot debounced queue.
type Scheduler struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending Task
	stopped bool
}

// New builds a scheduler with the given quiescence window.
func New(delay time.Duration) *Scheduler {
	return &Scheduler{delay: delay}
}

// Schedule queues the task, replacing any pending one. With a zero delay
// the task runs before Schedule returns.
func (s *Scheduler) Schedule(task Task) {
	if task == nil {
		return
	}
	if s.delay <= 0 {
		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped {
			task()
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending = task
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.run)
}

func (s *Scheduler) run() {
	s.mu.Lock()
	task := s.pending
	s.pending = nil
	s.timer = nil
	stopped := s.stopped
	s.mu.Unlock()
	if task != nil && !stopped {
		task()
	}
}

// Flush runs the pending task immediately, if any.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	task := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	stopped := s.stopped
	s.mu.Unlock()
	if task != nil && !stopped {
		task()
	}
}

// Stop drops any pending task and refuses new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
