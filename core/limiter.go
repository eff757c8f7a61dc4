package core

import "sync"

// StepLimiter enforces the maximum number of loop iterations per run.
type StepLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewStepLimiter creates a limiter allowing at most max iterations.
// A non-positive max permits no iterations at all.
func NewStepLimiter(max int) *StepLimiter {
	return &StepLimiter{max: max}
}

// Next claims the next iteration and returns its 1-based index. Once the
// bound is exhausted it returns ErrMaxIterations and the count stays put.
func (sl *StepLimiter) Next() (int, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.count >= sl.max {
		return sl.count, ErrMaxIterations
	}

	sl.count++

	return sl.count, nil
}

// Count returns the number of iterations claimed so far.
func (sl *StepLimiter) Count() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	return sl.count
}

// Remaining returns how many iterations are left before hitting the limit.
func (sl *StepLimiter) Remaining() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.count >= sl.max {
		return 0
	}

	return sl.max - sl.count
}
