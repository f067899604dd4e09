package smt

import (
	"fmt"
	"sync"
	"time"
)

// Statistics accumulates solver usage for one analysis run. It is shared by
// every session created with WithStatistics and is safe for concurrent use.
type Statistics struct {
	mu         sync.Mutex
	queryCount int
	solverTime time.Duration
}

// NewStatistics returns an empty statistics handle.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Record adds one query that took d.
func (s *Statistics) Record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCount++
	s.solverTime += d
}

// QueryCount returns the number of checks performed.
func (s *Statistics) QueryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryCount
}

// SolverTime returns the total time spent in checks.
func (s *Statistics) SolverTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.solverTime
}

func (s *Statistics) String() string {
	return fmt.Sprintf("Query count: %d\nSolver time: %s", s.QueryCount(), s.SolverTime())
}
