package expression

import "sync"

// BaselineStore holds the most recently calibrated blendshape snapshot.
// The zero state means "uncalibrated", which classifies against an
// all-zero baseline. Updates replace the whole value, never individual
// channels, so readers always see a consistent snapshot.
type BaselineStore struct {
	mu       sync.RWMutex
	baseline Vector
}

// NewBaselineStore creates an uncalibrated store.
func NewBaselineStore() *BaselineStore {
	return &BaselineStore{}
}

// Calibrate replaces the stored baseline with a copy of v. A nil vector
// is ignored (baseline unchanged) - invalid input is a defined no-op,
// not an error.
func (s *BaselineStore) Calibrate(v Vector) {
	if v == nil {
		return
	}
	snapshot := v.Clone()
	s.mu.Lock()
	s.baseline = snapshot
	s.mu.Unlock()
}

// Baseline returns the current snapshot, or nil if calibration has never
// occurred. The returned vector is a copy and safe to hold across frames.
func (s *BaselineStore) Baseline() Vector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline.Clone()
}

// Calibrated reports whether a baseline has been captured.
func (s *BaselineStore) Calibrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline != nil
}

// Reset returns the store to the uncalibrated state.
func (s *BaselineStore) Reset() {
	s.mu.Lock()
	s.baseline = nil
	s.mu.Unlock()
}
