package engine

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs callbacks after a delay. Callbacks are fire-and-forget;
// the returned stop function only exists so owners can release timers on shutdown.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// TimerScheduler schedules callbacks on real timers
type TimerScheduler struct{}

// AfterFunc implements Scheduler using time.AfterFunc
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// ManualScheduler holds callbacks until the owner advances its clock.
// It is used by tests and headless simulations.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	pending []*manualTask
}

type manualTask struct {
	id  int
	due time.Duration
	fn  func()
}

// NewManualScheduler creates a scheduler whose clock starts at zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc queues fn to run once the clock has advanced by d
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	task := &manualTask{id: s.nextID, due: s.now + d, fn: fn}
	s.pending = append(s.pending, task)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, p := range s.pending {
			if p.id == task.id {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				return true
			}
		}
		return false
	}
}

// Advance moves the clock forward and runs every callback that became due, in due order.
// Callbacks run without the scheduler lock held so they may schedule more work.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	now := s.now
	s.mu.Unlock()

	ran := 0
	for {
		task := s.popDue(now)
		if task == nil {
			return ran
		}
		task.fn()
		ran++
	}
}

// RunAll runs every pending callback regardless of its due time
func (s *ManualScheduler) RunAll() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return ran
		}
		latest := s.now
		for _, p := range s.pending {
			if p.due > latest {
				latest = p.due
			}
		}
		s.mu.Unlock()
		ran += s.Advance(latest - s.Now())
	}
}

// Pending returns the number of callbacks waiting to run
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Now returns the scheduler's virtual clock
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) popDue(now time.Duration) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].due < s.pending[j].due
	})
	if len(s.pending) == 0 || s.pending[0].due > now {
		return nil
	}
	task := s.pending[0]
	s.pending = s.pending[1:]
	return task
}
