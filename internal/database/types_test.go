package database

import (
	"math"
	"testing"

	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

func TestPackBaseline(t *testing.T) {
	t.Run("nil vector", func(t *testing.T) {
		channels, values := PackBaseline(nil)
		if channels != nil || values != nil {
			t.Errorf("expected nil slices, got %v / %v", channels, values)
		}
	})

	t.Run("channels sorted deterministically", func(t *testing.T) {
		v := expression.Vector{
			"mouthSmileLeft": 0.3,
			"jawOpen":        0.1,
			"tongueOut":      0.5,
		}
		channels, values := PackBaseline(v)

		wantChannels := []string{"jawOpen", "mouthSmileLeft", "tongueOut"}
		wantValues := []float32{0.1, 0.3, 0.5}
		for i := range wantChannels {
			if channels[i] != wantChannels[i] {
				t.Errorf("channel %d = %s, want %s", i, channels[i], wantChannels[i])
			}
			if math.Abs(float64(values[i]-wantValues[i])) > 1e-6 {
				t.Errorf("value %d = %v, want %v", i, values[i], wantValues[i])
			}
		}
	})
}

func TestProfileVectorRoundTrip(t *testing.T) {
	v := expression.Vector{
		"mouthSmileLeft":  0.25,
		"mouthSmileRight": 0.10,
		"jawOpen":         0.05,
	}
	channels, values := PackBaseline(v)
	p := StoredProfile{Channels: channels, Baseline: values}

	got := p.Vector()
	if len(got) != len(v) {
		t.Fatalf("expected %d channels, got %d", len(v), len(got))
	}
	for name, score := range v {
		if math.Abs(got[name]-score) > 1e-6 {
			t.Errorf("channel %s = %v, want %v", name, got[name], score)
		}
	}
}

func TestProfileVectorEmpty(t *testing.T) {
	p := StoredProfile{}
	if p.Vector() != nil {
		t.Error("expected nil vector for empty profile")
	}

	// Mismatched lengths only expose the shared prefix.
	p = StoredProfile{Channels: []string{"a", "b"}, Baseline: []float32{0.5}}
	v := p.Vector()
	if len(v) != 1 || v["a"] != 0.5 {
		t.Errorf("unexpected vector for mismatched profile: %v", v)
	}
}
