package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/emoji-mirror/internal/database"
)

// ProfileRepository provides PostgreSQL-backed calibration profile storage
// with an optional in-memory HNSW index for baseline matching.
type ProfileRepository struct {
	pool          *Pool
	hnswIndex     *database.HNSWIndex
	hnswEnabled   bool
	hnswIndexPath string
	hnswMu        sync.RWMutex
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(pool *Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = "id, uid, name, normalized_name, channels, baseline, created_at"

func scanProfile(row *sql.Row) (*database.StoredProfile, error) {
	var p database.StoredProfile
	var vec pgvector.Vector

	err := row.Scan(
		&p.ID,
		&p.UID,
		&p.Name,
		&p.NormalizedName,
		pq.Array(&p.Channels),
		&vec,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	p.Baseline = vec.Slice()
	return &p, nil
}

func scanProfiles(rows *sql.Rows) ([]database.StoredProfile, error) {
	var profiles []database.StoredProfile

	for rows.Next() {
		var p database.StoredProfile
		var vec pgvector.Vector

		if err := rows.Scan(
			&p.ID,
			&p.UID,
			&p.Name,
			&p.NormalizedName,
			pq.Array(&p.Channels),
			&vec,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}

		p.Baseline = vec.Slice()
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// Get retrieves a profile by UID, returns nil if not found
func (r *ProfileRepository) Get(ctx context.Context, uid string) (*database.StoredProfile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE uid = $1"
	return scanProfile(r.pool.QueryRow(ctx, query, uid))
}

// GetByName retrieves a profile by name, returns nil if not found.
// The lookup matches on the normalized form of the name.
func (r *ProfileRepository) GetByName(ctx context.Context, name string) (*database.StoredProfile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE normalized_name = $1"
	return scanProfile(r.pool.QueryRow(ctx, query, database.NormalizeProfileName(name)))
}

// List returns all profiles ordered by name
func (r *ProfileRepository) List(ctx context.Context) ([]database.StoredProfile, error) {
	query := "SELECT " + profileColumns + " FROM profiles ORDER BY normalized_name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// Count returns the total number of profiles stored
func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return count, nil
}

// Save stores a profile (upsert on normalized name) and fills in ID and UID
func (r *ProfileRepository) Save(ctx context.Context, profile *database.StoredProfile) error {
	if len(profile.Baseline) == 0 {
		return errors.New("profile baseline is required")
	}
	if profile.UID == "" {
		profile.UID = uuid.New().String()
	}
	profile.NormalizedName = database.NormalizeProfileName(profile.Name)

	query := `
		INSERT INTO profiles (uid, name, normalized_name, channels, baseline)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (normalized_name) DO UPDATE SET
			name = EXCLUDED.name,
			channels = EXCLUDED.channels,
			baseline = EXCLUDED.baseline,
			created_at = NOW()
		RETURNING id, uid, created_at
	`

	vec := pgvector.NewVector(profile.Baseline)
	err := r.pool.QueryRow(ctx, query,
		profile.UID,
		profile.Name,
		profile.NormalizedName,
		pq.Array(profile.Channels),
		vec,
	).Scan(&profile.ID, &profile.UID, &profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	// Keep the HNSW index in sync.
	r.hnswMu.RLock()
	hnswEnabled := r.hnswEnabled && r.hnswIndex != nil
	r.hnswMu.RUnlock()

	if hnswEnabled {
		if err := r.hnswIndex.Add(profile); err != nil {
			return fmt.Errorf("update HNSW index: %w", err)
		}
	}

	return nil
}

// Delete removes a profile by UID and cleans up the HNSW index
func (r *ProfileRepository) Delete(ctx context.Context, uid string) error {
	var id int64
	err := r.pool.QueryRow(ctx, "DELETE FROM profiles WHERE uid = $1 RETURNING id", uid).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	r.hnswMu.RLock()
	hnswEnabled := r.hnswEnabled && r.hnswIndex != nil
	r.hnswMu.RUnlock()

	if hnswEnabled {
		r.hnswIndex.Delete(id)
	}

	return nil
}

// FindNearest finds the profiles whose baselines are closest to the query
// by cosine distance. Uses the in-memory HNSW index if enabled, otherwise
// falls back to PostgreSQL.
func (r *ProfileRepository) FindNearest(ctx context.Context, baseline []float32, limit int) ([]database.StoredProfile, []float64, error) {
	if limit < 0 {
		limit = 0
	}

	r.hnswMu.RLock()
	hnswEnabled := r.hnswEnabled && r.hnswIndex != nil
	r.hnswMu.RUnlock()

	if hnswEnabled {
		return r.findNearestHNSW(baseline, limit)
	}

	return r.findNearestPostgres(ctx, baseline, limit)
}

// findNearestHNSW uses the in-memory HNSW index for similarity search
func (r *ProfileRepository) findNearestHNSW(baseline []float32, limit int) ([]database.StoredProfile, []float64, error) {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()

	if r.hnswIndex == nil {
		return nil, nil, errors.New("HNSW index not initialized")
	}

	// Request more candidates since deleted profiles are filtered by lookup.
	searchK := limit * database.HNSWSearchMultiplier
	ids, distances, err := r.hnswIndex.Search(baseline, searchK)
	if err != nil {
		return nil, nil, fmt.Errorf("HNSW search: %w", err)
	}

	profiles := make([]database.StoredProfile, 0, limit)
	distancesOut := make([]float64, 0, limit)

	for i, id := range ids {
		p := r.hnswIndex.GetProfile(id)
		if p == nil {
			continue
		}
		profiles = append(profiles, *p)
		distancesOut = append(distancesOut, distances[i])
		if len(profiles) >= limit {
			break
		}
	}

	return profiles, distancesOut, nil
}

// findNearestPostgres uses the pgvector cosine operator for similarity search
func (r *ProfileRepository) findNearestPostgres(ctx context.Context, baseline []float32, limit int) ([]database.StoredProfile, []float64, error) {
	query := `
		SELECT ` + profileColumns + `,
		       baseline <=> $1::vector AS distance
		FROM profiles
		ORDER BY distance
		LIMIT $2
	`

	vec := pgvector.NewVector(baseline)
	rows, err := r.pool.Query(ctx, query, vec, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query nearest profiles: %w", err)
	}
	defer rows.Close()

	var profiles []database.StoredProfile
	var distances []float64

	for rows.Next() {
		var p database.StoredProfile
		var v pgvector.Vector
		var dist float64

		if err := rows.Scan(
			&p.ID,
			&p.UID,
			&p.Name,
			&p.NormalizedName,
			pq.Array(&p.Channels),
			&v,
			&p.CreatedAt,
			&dist,
		); err != nil {
			return nil, nil, fmt.Errorf("scan profile: %w", err)
		}

		p.Baseline = v.Slice()
		profiles = append(profiles, p)
		distances = append(distances, dist)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, distances, nil
}

// EnableHNSW loads or builds an in-memory HNSW index over stored baselines.
// If indexPath is provided, it tries to load from disk first and saves after
// building. This should be called once at startup.
func (r *ProfileRepository) EnableHNSW(ctx context.Context, indexPath string) error {
	r.hnswMu.Lock()
	defer r.hnswMu.Unlock()

	r.hnswIndexPath = indexPath

	profiles, err := r.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if indexPath != "" {
		idx := database.NewHNSWIndex()
		if err := idx.Load(indexPath); err != nil {
			fmt.Printf("Profile index: failed to load from disk: %v (will rebuild)\n", err)
		} else if !idx.IsEmpty() {
			idx.RebuildFromProfiles(profiles)
			if idx.Count() == len(profiles) {
				r.hnswIndex = idx
				r.hnswEnabled = true
				fmt.Printf("Profile index: loaded from disk (%d profiles)\n", idx.Count())
				return nil
			}
			fmt.Printf("Profile index: stale (db: %d, cached: %d) (will rebuild)\n",
				len(profiles), idx.Count())
		}
	}

	idx := database.NewHNSWIndex()
	if err := idx.BuildFromProfiles(profiles); err != nil {
		return fmt.Errorf("failed to build HNSW profile index: %w", err)
	}
	idx.SetPath(indexPath)

	if indexPath != "" && len(profiles) > 0 {
		if err := idx.Save(); err != nil {
			fmt.Printf("Warning: failed to save HNSW profile index to disk: %v\n", err)
		}
	}

	r.hnswIndex = idx
	r.hnswEnabled = true
	return nil
}

// DisableHNSW disables the in-memory HNSW index, falling back to PostgreSQL queries
func (r *ProfileRepository) DisableHNSW() {
	r.hnswMu.Lock()
	defer r.hnswMu.Unlock()
	r.hnswEnabled = false
	r.hnswIndex = nil
}

// IsHNSWEnabled returns whether the in-memory HNSW index is enabled
func (r *ProfileRepository) IsHNSWEnabled() bool {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	return r.hnswEnabled && r.hnswIndex != nil
}

// HNSWCount returns the number of profiles in the HNSW index
func (r *ProfileRepository) HNSWCount() int {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	if r.hnswIndex == nil {
		return 0
	}
	return r.hnswIndex.Count()
}

// RebuildHNSW rebuilds the HNSW index from PostgreSQL data
func (r *ProfileRepository) RebuildHNSW(ctx context.Context) error {
	r.hnswMu.RLock()
	indexPath := r.hnswIndexPath
	r.hnswMu.RUnlock()
	return r.EnableHNSW(ctx, indexPath)
}

// SaveHNSWIndex saves the current HNSW index to disk (if path configured)
func (r *ProfileRepository) SaveHNSWIndex() error {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()

	if r.hnswIndexPath == "" {
		return nil // No path configured, nothing to save
	}
	if r.hnswIndex == nil {
		return nil // No index to save
	}

	if err := r.hnswIndex.Save(); err != nil {
		return fmt.Errorf("saving HNSW profile index: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ database.ProfileWriter = (*ProfileRepository)(nil)
var _ database.ProfileMatcher = (*ProfileRepository)(nil)
var _ database.HNSWRebuilder = (*ProfileRepository)(nil)
