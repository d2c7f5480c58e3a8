package database

// HNSW index parameters for baseline blendshape vectors. The vectors are
// tiny (tens of dimensions) and profile counts are small, so these lean
// toward recall over build speed.
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	HNSWMaxNeighbors = 16

	// HNSWSearchMultiplier is the factor to request more candidates from HNSW
	// to ensure we have enough after distance filtering.
	HNSWSearchMultiplier = 3
)
