package database

import (
	"sort"
	"time"

	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

// StoredProfile is a named calibration profile: one person's neutral-face
// blendshape snapshot, persisted so calibration survives restarts. The
// baseline is stored as a channel-name list plus a value vector in the
// same order.
type StoredProfile struct {
	ID             int64
	UID            string
	Name           string
	NormalizedName string
	Channels       []string
	Baseline       []float32
	CreatedAt      time.Time
}

// PackBaseline converts a blendshape vector into a deterministic
// (channels, values) pair, sorted by channel name. Returns empty slices
// for a nil or empty vector.
func PackBaseline(v expression.Vector) ([]string, []float32) {
	if len(v) == 0 {
		return nil, nil
	}
	channels := make([]string, 0, len(v))
	for name := range v {
		channels = append(channels, name)
	}
	sort.Strings(channels)

	values := make([]float32, len(channels))
	for i, name := range channels {
		values[i] = float32(v[name])
	}
	return channels, values
}

// Vector reconstructs the baseline blendshape vector from the stored
// channel/value pair. Mismatched lengths yield the channels both sides
// cover; a profile without a baseline yields nil.
func (p *StoredProfile) Vector() expression.Vector {
	n := min(len(p.Channels), len(p.Baseline))
	if n == 0 {
		return nil
	}
	v := make(expression.Vector, n)
	for i := 0; i < n; i++ {
		v[p.Channels[i]] = float64(p.Baseline[i])
	}
	return v
}
