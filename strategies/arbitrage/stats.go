package arbitrage

import (
	"sync"
	"time"

	"github.com/michaelpento.lv/arbbot/types"
)

// RunningStatistics are the operator-facing counters. Nothing depends on them for correctness.
type RunningStatistics struct {
	mu              sync.RWMutex
	scans           uint64
	found           uint64
	nearMisses      uint64
	executions      uint64
	bestSpread      float64
	hasSpread       bool
	lastOpportunity time.Time
	lastOutcome     *types.ExecutionOutcome
}

// Snapshot is a point-in-time copy of the statistics
type Snapshot struct {
	Scans           uint64     `json:"scans"`
	Opportunities   uint64     `json:"opportunities_found"`
	NearMisses      uint64     `json:"near_misses"`
	Executions      uint64     `json:"executions"`
	BestSpread      *float64   `json:"best_spread_percent"`
	LastOpportunity *time.Time `json:"last_opportunity,omitempty"`
	LastStatus      string     `json:"last_execution_status,omitempty"`
	LastTxHash      string     `json:"last_execution_tx,omitempty"`
}

func NewRunningStatistics() *RunningStatistics {
	return &RunningStatistics{}
}

// RecordScan counts a cycle that passed the gas gate and returns the new scan number
func (s *RunningStatistics) RecordScan() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
	return s.scans
}

func (s *RunningStatistics) RecordNearMiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nearMisses++
}

func (s *RunningStatistics) RecordOpportunity(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.found++
	s.lastOpportunity = at
}

func (s *RunningStatistics) RecordExecution(outcome types.ExecutionOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome.Status != types.ExecutionSkipped {
		s.executions++
	}
	s.lastOutcome = &outcome
}

// ObserveSpread keeps the best raw spread seen so far
func (s *RunningStatistics) ObserveSpread(pct float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSpread || pct > s.bestSpread {
		s.bestSpread = pct
		s.hasSpread = true
	}
}

// BestSpread returns the best spread and whether any spread was observed
func (s *RunningStatistics) BestSpread() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bestSpread, s.hasSpread
}

func (s *RunningStatistics) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Scans:         s.scans,
		Opportunities: s.found,
		NearMisses:    s.nearMisses,
		Executions:    s.executions,
	}
	if s.hasSpread {
		spread := s.bestSpread
		snap.BestSpread = &spread
	}
	if !s.lastOpportunity.IsZero() {
		at := s.lastOpportunity
		snap.LastOpportunity = &at
	}
	if s.lastOutcome != nil {
		snap.LastStatus = string(s.lastOutcome.Status)
		snap.LastTxHash = s.lastOutcome.TxHash.Hex()
	}
	return snap
}
