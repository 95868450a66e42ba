// Package stats keeps in-memory counters of expression evaluations.
package stats

import (
	"sync"
	"time"

	"github.com/lemonberrylabs/dice-notation/pkg/dice"
)

// Store is a thread-safe set of evaluation counters. It never retains
// expressions or results.
type Store struct {
	mu             sync.RWMutex
	evaluations    int64
	failures       int64
	failuresByKind map[string]int64
	startedAt      time.Time
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Evaluations    int64            `json:"evaluations" yaml:"evaluations"`
	Failures       int64            `json:"failures" yaml:"failures"`
	FailuresByKind map[string]int64 `json:"failuresByKind" yaml:"failuresByKind"`
	StartedAt      time.Time        `json:"startedAt" yaml:"startedAt"`
	UptimeSeconds  int64            `json:"uptimeSeconds" yaml:"uptimeSeconds"`
}

// New creates an empty store.
func New() *Store {
	return &Store{
		failuresByKind: make(map[string]int64),
		startedAt:      time.Now(),
	}
}

// Record counts one evaluation. A non-nil err counts as a failure under its
// dice error kind, or "Internal" when err is not a dice error.
func (s *Store) Record(_ dice.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluations++
	if err == nil {
		return
	}

	s.failures++
	kind := "Internal"
	if k := dice.KindOf(err); k != 0 {
		kind = k.String()
	}
	s.failuresByKind[kind]++
}

// Snapshot returns a copy of the current counters.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKind := make(map[string]int64, len(s.failuresByKind))
	for k, v := range s.failuresByKind {
		byKind[k] = v
	}

	return Snapshot{
		Evaluations:    s.evaluations,
		Failures:       s.failures,
		FailuresByKind: byKind,
		StartedAt:      s.startedAt,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
	}
}

// Successes is the number of evaluations that produced a result.
func (s Snapshot) Successes() int64 {
	return s.Evaluations - s.Failures
}
