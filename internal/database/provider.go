package database

import (
	"context"
	"fmt"
)

// ProfileReader reads calibration profiles.
type ProfileReader interface {
	// Get retrieves a profile by UID, nil if not found.
	Get(ctx context.Context, uid string) (*StoredProfile, error)
	// GetByName retrieves a profile by normalized name, nil if not found.
	GetByName(ctx context.Context, name string) (*StoredProfile, error)
	// List returns all profiles ordered by name.
	List(ctx context.Context) ([]StoredProfile, error)
	// Count returns the number of stored profiles.
	Count(ctx context.Context) (int, error)
}

// ProfileWriter reads and writes calibration profiles.
type ProfileWriter interface {
	ProfileReader
	// Save inserts a profile (or replaces one with the same normalized
	// name) and fills in ID and UID.
	Save(ctx context.Context, profile *StoredProfile) error
	// Delete removes a profile by UID.
	Delete(ctx context.Context, uid string) error
}

// ProfileMatcher finds the stored baselines closest to a live vector.
type ProfileMatcher interface {
	// FindNearest returns up to limit profiles ordered by cosine distance
	// to the query baseline, with their distances.
	FindNearest(ctx context.Context, baseline []float32, limit int) ([]StoredProfile, []float64, error)
}

// HNSWRebuilder is an interface for repositories that support HNSW index rebuilding
type HNSWRebuilder interface {
	// RebuildHNSW rebuilds the in-memory HNSW index
	RebuildHNSW(ctx context.Context) error
	// HNSWCount returns the number of items in the HNSW index
	HNSWCount() int
	// IsHNSWEnabled returns whether HNSW is enabled
	IsHNSWEnabled() bool
	// SaveHNSWIndex saves the current index to disk (if path configured)
	SaveHNSWIndex() error
}

var (
	profileWriter   func() ProfileWriter
	profileMatcher  func() ProfileMatcher
	profileHNSW     HNSWRebuilder // Singleton for profile HNSW rebuilding
	backendName     string
	backendInitDone bool
)

// RegisterBackend registers the profile repository constructors for the
// active storage backend. Called by the postgres or mysql package to
// avoid import cycles.
func RegisterBackend(name string, writer func() ProfileWriter, matcher func() ProfileMatcher) {
	backendName = name
	profileWriter = writer
	profileMatcher = matcher
	backendInitDone = true
}

// RegisterProfileHNSWRebuilder registers the HNSW rebuilder for the profile repository.
func RegisterProfileHNSWRebuilder(rebuilder HNSWRebuilder) {
	profileHNSW = rebuilder
}

// GetProfileHNSWRebuilder returns the registered profile HNSW rebuilder, or nil if not registered.
func GetProfileHNSWRebuilder() HNSWRebuilder {
	return profileHNSW
}

// IsInitialized returns whether a storage backend has been initialized.
func IsInitialized() bool {
	return backendInitDone
}

// BackendName returns the name of the active backend ("postgres" or "mysql").
func BackendName() string {
	return backendName
}

// GetProfileReader returns a ProfileReader from the active backend.
func GetProfileReader(ctx context.Context) (ProfileReader, error) {
	return GetProfileWriter(ctx)
}

// GetProfileWriter returns a ProfileWriter from the active backend.
func GetProfileWriter(ctx context.Context) (ProfileWriter, error) {
	if !backendInitDone {
		return nil, fmt.Errorf("storage backend not initialized: DATABASE_URL or MYSQL_DSN is required")
	}
	if profileWriter == nil {
		return nil, fmt.Errorf("profile writer not registered")
	}
	return profileWriter(), nil
}

// GetProfileMatcher returns a ProfileMatcher from the active backend.
func GetProfileMatcher(ctx context.Context) (ProfileMatcher, error) {
	if !backendInitDone {
		return nil, fmt.Errorf("storage backend not initialized: DATABASE_URL or MYSQL_DSN is required")
	}
	if profileMatcher == nil {
		return nil, fmt.Errorf("profile matcher not registered")
	}
	return profileMatcher(), nil
}
