package ethereum

import (
	"sync"
	"time"
)

// TimeHandler tracks the execution budget of one analysis run.
type TimeHandler struct {
	mu            sync.Mutex
	startTime     time.Time
	executionTime time.Duration
}

func NewTimeHandler() *TimeHandler {
	return &TimeHandler{}
}

// StartExecution starts a budget of the given number of seconds. Zero means
// no limit.
func (h *TimeHandler) StartExecution(seconds int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.startTime = time.Now()
	h.executionTime = time.Duration(seconds) * time.Second
}

// TimeRemaining returns the budget left, or a negative value when exhausted.
// Without a limit it returns the maximum duration.
func (h *TimeHandler) TimeRemaining() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.executionTime == 0 {
		return time.Duration(1<<63 - 1)
	}
	return h.executionTime - time.Since(h.startTime)
}

// Deadline returns the end of the budget, or the zero time without a limit.
func (h *TimeHandler) Deadline() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.executionTime == 0 {
		return time.Time{}
	}
	return h.startTime.Add(h.executionTime)
}
