package database

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"
)

// HNSWIndex wraps the HNSW graph for baseline similarity search. It maps
// each node to its stored profile so search results carry names, not
// just IDs.
type HNSWIndex struct {
	graph       *hnsw.Graph[int64]
	savedGraph  *hnsw.SavedGraph[int64] // For persistence
	idToProfile map[int64]*StoredProfile
	mu          sync.RWMutex
	path        string // Path to save/load index
}

// NewHNSWIndex creates a new empty HNSW index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{
		idToProfile: make(map[int64]*StoredProfile),
	}
}

func newGraph() *hnsw.Graph[int64] {
	g := hnsw.NewGraph[int64]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// BuildFromProfiles builds the index from a slice of profiles.
func (h *HNSWIndex) BuildFromProfiles(profiles []StoredProfile) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(profiles) == 0 {
		h.graph = nil
		h.savedGraph = nil
		h.idToProfile = make(map[int64]*StoredProfile)
		return nil
	}

	g := newGraph()
	h.idToProfile = make(map[int64]*StoredProfile, len(profiles))

	for i := range profiles {
		profile := &profiles[i]
		if len(profile.Baseline) == 0 {
			continue
		}

		g.Add(hnsw.MakeNode(profile.ID, profile.Baseline))
		h.idToProfile[profile.ID] = profile
	}

	h.graph = g
	return nil
}

// Search finds the k nearest neighbors to the query baseline.
// Returns profile IDs and their cosine distances.
func (h *HNSWIndex) Search(query []float32, k int) ([]int64, []float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil && h.savedGraph == nil {
		return nil, nil, errors.New("index not initialized")
	}

	var neighbors []hnsw.Node[int64]
	if h.savedGraph != nil {
		neighbors = h.savedGraph.Search(query, k)
	} else {
		neighbors = h.graph.Search(query, k)
	}

	ids := make([]int64, len(neighbors))
	distances := make([]float64, len(neighbors))

	for i, n := range neighbors {
		ids[i] = n.Key
		// Compute the actual cosine distance from the node's own vector.
		if len(n.Value) > 0 {
			distances[i] = CosineDistance(query, n.Value)
		}
	}

	return ids, distances, nil
}

// GetProfile returns the profile for a given ID.
func (h *HNSWIndex) GetProfile(id int64) *StoredProfile {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idToProfile[id]
}

// Add adds a single profile to the index. When the index was loaded from
// disk, Search reads the saved graph, so profiles added here stay invisible
// until RebuildFromProfiles runs.
func (h *HNSWIndex) Add(profile *StoredProfile) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(profile.Baseline) == 0 {
		return nil
	}

	if h.graph == nil {
		h.graph = newGraph()
	}

	h.graph.Add(hnsw.MakeNode(profile.ID, profile.Baseline))
	h.idToProfile[profile.ID] = profile

	return nil
}

// Delete removes a profile from the index (marks as deleted).
func (h *HNSWIndex) Delete(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.idToProfile, id)
	// Note: HNSW doesn't support true deletion, but removing from
	// idToProfile effectively removes it from search results since we
	// filter by lookup.
}

// SetPath sets the path for saving/loading the index.
func (h *HNSWIndex) SetPath(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.path = path
}

// Save persists the index to disk.
func (h *HNSWIndex) Save() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.path == "" {
		return nil // No path set
	}

	if h.graph == nil && h.savedGraph == nil {
		// Remove existing file if index is empty (best-effort cleanup).
		_ = os.Remove(h.path)
		return nil
	}

	f, err := os.Create(h.path)
	if err != nil {
		return fmt.Errorf("failed to create HNSW index file: %w", err)
	}
	defer f.Close()

	if h.savedGraph != nil {
		if err := h.savedGraph.Export(f); err != nil {
			return fmt.Errorf("exporting HNSW graph: %w", err)
		}
		return nil
	}
	if err := h.graph.Export(f); err != nil {
		return fmt.Errorf("exporting HNSW graph: %w", err)
	}
	return nil
}

// Load loads the index from disk. Missing files are not an error; the
// index is rebuilt from profiles instead.
func (h *HNSWIndex) Load(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.path = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // No index file, will build from profiles
	}

	saved, err := hnsw.LoadSavedGraph[int64](path)
	if err != nil {
		return fmt.Errorf("failed to load HNSW index: %w", err)
	}

	h.savedGraph = saved
	return nil
}

// RebuildFromProfiles rebuilds the idToProfile map from profiles.
// Called after loading index from disk.
func (h *HNSWIndex) RebuildFromProfiles(profiles []StoredProfile) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.idToProfile = make(map[int64]*StoredProfile, len(profiles))
	for i := range profiles {
		h.idToProfile[profiles[i].ID] = &profiles[i]
	}
}

// Count returns the number of indexed profiles.
func (h *HNSWIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToProfile)
}

// IsEmpty returns true if the index has no graph data loaded.
func (h *HNSWIndex) IsEmpty() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.graph == nil && h.savedGraph == nil
}
