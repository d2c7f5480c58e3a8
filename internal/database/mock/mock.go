// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kozaktomas/emoji-mirror/internal/database"
)

// MockProfileWriter is an in-memory implementation of database.ProfileWriter
// and database.ProfileMatcher for tests.
type MockProfileWriter struct {
	mu       sync.RWMutex
	profiles map[string]*database.StoredProfile
	nextID   int64

	// Error injection
	GetError         error
	GetByNameError   error
	ListError        error
	CountError       error
	SaveError        error
	DeleteError      error
	FindNearestError error
}

// NewMockProfileWriter creates a new mock profile store
func NewMockProfileWriter() *MockProfileWriter {
	return &MockProfileWriter{
		profiles: make(map[string]*database.StoredProfile),
	}
}

// Get retrieves a profile by UID
func (m *MockProfileWriter) Get(ctx context.Context, uid string) (*database.StoredProfile, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[uid]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// GetByName retrieves a profile by normalized name
func (m *MockProfileWriter) GetByName(ctx context.Context, name string) (*database.StoredProfile, error) {
	if m.GetByNameError != nil {
		return nil, m.GetByNameError
	}
	normalized := database.NormalizeProfileName(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.NormalizedName == normalized {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// List returns all profiles ordered by normalized name
func (m *MockProfileWriter) List(ctx context.Context) ([]database.StoredProfile, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.StoredProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NormalizedName < out[j].NormalizedName
	})
	return out, nil
}

// Count returns the number of stored profiles
func (m *MockProfileWriter) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles), nil
}

// Save stores a profile and fills in ID and UID
func (m *MockProfileWriter) Save(ctx context.Context, profile *database.StoredProfile) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	if len(profile.Baseline) == 0 {
		return fmt.Errorf("profile baseline is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	profile.NormalizedName = database.NormalizeProfileName(profile.Name)

	// Upsert by normalized name, keeping the original identifiers.
	for _, existing := range m.profiles {
		if existing.NormalizedName == profile.NormalizedName {
			profile.ID = existing.ID
			profile.UID = existing.UID
			profile.CreatedAt = existing.CreatedAt
			cp := *profile
			m.profiles[existing.UID] = &cp
			return nil
		}
	}

	m.nextID++
	profile.ID = m.nextID
	if profile.UID == "" {
		profile.UID = fmt.Sprintf("mock-%d", m.nextID)
	}
	cp := *profile
	m.profiles[profile.UID] = &cp
	return nil
}

// Delete removes a profile by UID
func (m *MockProfileWriter) Delete(ctx context.Context, uid string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, uid)
	return nil
}

// FindNearest returns profiles sorted by cosine distance to the query
func (m *MockProfileWriter) FindNearest(ctx context.Context, baseline []float32, limit int) ([]database.StoredProfile, []float64, error) {
	if m.FindNearestError != nil {
		return nil, nil, m.FindNearestError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		profile  database.StoredProfile
		distance float64
	}
	results := make([]scored, 0, len(m.profiles))
	for _, p := range m.profiles {
		results = append(results, scored{
			profile:  *p,
			distance: database.CosineDistance(baseline, p.Baseline),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].distance < results[j].distance
	})

	if limit < 0 {
		limit = 0
	}
	if limit > len(results) {
		limit = len(results)
	}
	profiles := make([]database.StoredProfile, limit)
	distances := make([]float64, limit)
	for i := 0; i < limit; i++ {
		profiles[i] = results[i].profile
		distances[i] = results[i].distance
	}
	return profiles, distances, nil
}

// Register wires the mock into the database registry as the active backend.
func (m *MockProfileWriter) Register() {
	database.RegisterBackend("mock",
		func() database.ProfileWriter { return m },
		func() database.ProfileMatcher { return m },
	)
}

// Verify interface compliance
var _ database.ProfileWriter = (*MockProfileWriter)(nil)
var _ database.ProfileMatcher = (*MockProfileWriter)(nil)
