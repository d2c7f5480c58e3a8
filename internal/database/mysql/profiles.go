package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/kozaktomas/emoji-mirror/internal/database"
)

// ProfileRepository provides MySQL-backed calibration profile storage.
// Baselines are stored as JSON arrays and matched with a Go-side cosine
// scan, which is fine at profile-table scale.
type ProfileRepository struct {
	pool *Pool
}

// NewProfileRepository creates a new MySQL profile repository
func NewProfileRepository(pool *Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = "id, uid, name, normalized_name, channels, baseline, created_at"

func scanProfile(row *sql.Row) (*database.StoredProfile, error) {
	var p database.StoredProfile
	var channelsJSON, baselineJSON []byte

	err := row.Scan(
		&p.ID,
		&p.UID,
		&p.Name,
		&p.NormalizedName,
		&channelsJSON,
		&baselineJSON,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if err := json.Unmarshal(channelsJSON, &p.Channels); err != nil {
		return nil, fmt.Errorf("unmarshal channels: %w", err)
	}
	if err := json.Unmarshal(baselineJSON, &p.Baseline); err != nil {
		return nil, fmt.Errorf("unmarshal baseline: %w", err)
	}
	return &p, nil
}

func scanProfiles(rows *sql.Rows) ([]database.StoredProfile, error) {
	var profiles []database.StoredProfile

	for rows.Next() {
		var p database.StoredProfile
		var channelsJSON, baselineJSON []byte

		if err := rows.Scan(
			&p.ID,
			&p.UID,
			&p.Name,
			&p.NormalizedName,
			&channelsJSON,
			&baselineJSON,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}

		if err := json.Unmarshal(channelsJSON, &p.Channels); err != nil {
			return nil, fmt.Errorf("unmarshal channels: %w", err)
		}
		if err := json.Unmarshal(baselineJSON, &p.Baseline); err != nil {
			return nil, fmt.Errorf("unmarshal baseline: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// Get retrieves a profile by UID, returns nil if not found
func (r *ProfileRepository) Get(ctx context.Context, uid string) (*database.StoredProfile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE uid = ?"
	return scanProfile(r.pool.db.QueryRowContext(ctx, query, uid))
}

// GetByName retrieves a profile by name, returns nil if not found.
// The lookup matches on the normalized form of the name.
func (r *ProfileRepository) GetByName(ctx context.Context, name string) (*database.StoredProfile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE normalized_name = ?"
	return scanProfile(r.pool.db.QueryRowContext(ctx, query, database.NormalizeProfileName(name)))
}

// List returns all profiles ordered by name
func (r *ProfileRepository) List(ctx context.Context) ([]database.StoredProfile, error) {
	query := "SELECT " + profileColumns + " FROM profiles ORDER BY normalized_name"

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// Count returns the total number of profiles stored
func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count)
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

	channelsJSON, err := json.Marshal(profile.Channels)
	if err != nil {
		return fmt.Errorf("marshal channels: %w", err)
	}
	baselineJSON, err := json.Marshal(profile.Baseline)
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}

	query := `
		INSERT INTO profiles (uid, name, normalized_name, channels, baseline)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			channels = VALUES(channels),
			baseline = VALUES(baseline),
			created_at = CURRENT_TIMESTAMP
	`

	if _, err := r.pool.db.ExecContext(ctx, query,
		profile.UID,
		profile.Name,
		profile.NormalizedName,
		channelsJSON,
		baselineJSON,
	); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	// Upserts keep the original row's id and uid, so read them back.
	saved, err := r.GetByName(ctx, profile.Name)
	if err != nil {
		return fmt.Errorf("reload saved profile: %w", err)
	}
	if saved == nil {
		return errors.New("saved profile not found")
	}
	profile.ID = saved.ID
	profile.UID = saved.UID
	profile.CreatedAt = saved.CreatedAt

	return nil
}

// Delete removes a profile by UID
func (r *ProfileRepository) Delete(ctx context.Context, uid string) error {
	if _, err := r.pool.db.ExecContext(ctx, "DELETE FROM profiles WHERE uid = ?", uid); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// FindNearest finds the profiles whose baselines are closest to the query
// by cosine distance. MySQL has no vector operators, so the scan happens
// in Go over all stored profiles.
func (r *ProfileRepository) FindNearest(ctx context.Context, baseline []float32, limit int) ([]database.StoredProfile, []float64, error) {
	profiles, err := r.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load profiles: %w", err)
	}

	type scored struct {
		profile  database.StoredProfile
		distance float64
	}

	results := make([]scored, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, scored{
			profile:  p,
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

	out := make([]database.StoredProfile, limit)
	distances := make([]float64, limit)
	for i := 0; i < limit; i++ {
		out[i] = results[i].profile
		distances[i] = results[i].distance
	}

	return out, distances, nil
}

// Verify interface compliance
var _ database.ProfileWriter = (*ProfileRepository)(nil)
var _ database.ProfileMatcher = (*ProfileRepository)(nil)
