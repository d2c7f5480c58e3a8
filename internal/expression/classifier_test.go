package expression

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultTuning())

	tests := []struct {
		name     string
		current  Vector
		baseline Vector
		expected Category
	}{
		{
			name:     "nil current yields neutral",
			current:  nil,
			baseline: Vector{ChannelMouthSmileLeft: 0.9},
			expected: Neutral,
		},
		{
			name:     "empty face yields neutral",
			current:  Vector{},
			baseline: nil,
			expected: Neutral,
		},
		{
			name:     "clear smile",
			current:  Vector{ChannelMouthSmileLeft: 0.30, ChannelMouthSmileRight: 0.10},
			baseline: nil,
			expected: Smile,
		},
		{
			name:     "smile cancelled by baseline",
			current:  Vector{ChannelMouthSmileLeft: 0.30},
			baseline: Vector{ChannelMouthSmileLeft: 0.20}, // delta 0.10, below 0.25
			expected: Neutral,
		},
		{
			name:     "surprise from jaw open",
			current:  Vector{ChannelJawOpen: 0.35}, // 0.35*0.9 = 0.315 > 0.28
			baseline: nil,
			expected: Surprise,
		},
		{
			name:     "frown wins on right channel",
			current:  Vector{ChannelMouthFrownLeft: 0.05, ChannelMouthFrownRight: 0.30},
			baseline: nil,
			expected: Frown,
		},
		{
			name:     "cheeky from puff plus tongue",
			current:  Vector{ChannelCheekPuffLeft: 0.15, ChannelTongueOut: 0.15}, // 0.30 > 0.22
			baseline: nil,
			expected: Cheeky,
		},
		{
			name:     "above own threshold but below floor stays neutral",
			current:  Vector{ChannelMouthFrownLeft: 0.145}, // 0.145 > 0 but < 0.15 floor... also < 0.20
			baseline: nil,
			expected: Neutral,
		},
		{
			name:     "highest qualifying score wins",
			current:  Vector{ChannelMouthSmileLeft: 0.30, ChannelJawOpen: 0.60}, // smile 0.30, surprise 0.54
			baseline: nil,
			expected: Surprise,
		},
		{
			name: "exact tie goes to earlier category",
			// surprise = (0.40/0.9)*0.9 == 0.40 == smile, both qualify
			current:  Vector{ChannelMouthSmileLeft: 0.40, ChannelJawOpen: 0.40 / 0.9},
			baseline: nil,
			expected: Smile,
		},
		{
			name:     "negative deltas never qualify",
			current:  Vector{},
			baseline: Vector{ChannelMouthSmileLeft: 0.9, ChannelJawOpen: 0.9},
			expected: Neutral,
		},
		{
			name:     "unknown channels are ignored",
			current:  Vector{"browInnerUp": 0.99, ChannelMouthSmileLeft: 0.30},
			baseline: nil,
			expected: Smile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.current, tt.baseline)
			if got != tt.expected {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.current, tt.baseline, got, tt.expected)
			}
		})
	}
}

func TestClassifyNilBaselineEqualsZeroBaseline(t *testing.T) {
	c := NewClassifier(DefaultTuning())

	vectors := []Vector{
		nil,
		{},
		{ChannelMouthSmileLeft: 0.30},
		{ChannelJawOpen: 0.5, ChannelMouthPucker: 0.2},
		{ChannelCheekPuffRight: 0.3, ChannelTongueOut: 0.1, ChannelMouthFrownLeft: 0.4},
	}

	zero := Vector{
		ChannelMouthSmileLeft:  0,
		ChannelMouthSmileRight: 0,
		ChannelJawOpen:         0,
		ChannelMouthPucker:     0,
		ChannelMouthFrownLeft:  0,
		ChannelMouthFrownRight: 0,
		ChannelCheekPuffLeft:   0,
		ChannelCheekPuffRight:  0,
		ChannelTongueOut:       0,
	}

	for _, v := range vectors {
		uncalibrated := c.Classify(v, nil)
		zeroed := c.Classify(v, zero)
		if uncalibrated != zeroed {
			t.Errorf("Classify(%v) differs for nil (%v) vs zero (%v) baseline", v, uncalibrated, zeroed)
		}
	}
}

func TestSmileScoreMonotone(t *testing.T) {
	c := NewClassifier(DefaultTuning())
	baseline := Vector{ChannelMouthSmileLeft: 0.10}

	prev := math.Inf(-1)
	for left := 0.0; left <= 1.0; left += 0.05 {
		current := Vector{ChannelMouthSmileLeft: left, ChannelMouthSmileRight: 0.05, ChannelJawOpen: 0.1}
		score := c.Scores(current, baseline)[Smile]
		if score < prev {
			t.Fatalf("smile score decreased from %v to %v at mouthSmileLeft=%v", prev, score, left)
		}
		prev = score
	}
}

func TestScores(t *testing.T) {
	c := NewClassifier(DefaultTuning())

	t.Run("nil current yields empty map", func(t *testing.T) {
		scores := c.Scores(nil, nil)
		if len(scores) != 0 {
			t.Errorf("expected empty scores, got %v", scores)
		}
	})

	t.Run("surprise combines jaw and pucker", func(t *testing.T) {
		scores := c.Scores(Vector{ChannelJawOpen: 0.5, ChannelMouthPucker: 0.5}, nil)
		want := 0.5*0.9 + 0.5*0.4
		if math.Abs(scores[Surprise]-want) > 1e-9 {
			t.Errorf("surprise score = %v, want %v", scores[Surprise], want)
		}
	})

	t.Run("scores can be negative below baseline", func(t *testing.T) {
		scores := c.Scores(Vector{}, Vector{ChannelJawOpen: 0.5})
		if scores[Surprise] >= 0 {
			t.Errorf("expected negative surprise score, got %v", scores[Surprise])
		}
	})
}

func TestCategoriesOrder(t *testing.T) {
	c := NewClassifier(DefaultTuning())
	want := []Category{Smile, Surprise, Frown, Cheeky}
	got := c.Categories()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestCustomTuning(t *testing.T) {
	tuning := DefaultTuning()
	tuning.SmileThreshold = 0.05
	c := NewClassifier(tuning)

	// Below the default threshold but above the custom one and the floor.
	got := c.Classify(Vector{ChannelMouthSmileLeft: 0.20}, nil)
	if got != Smile {
		t.Errorf("expected smile with lowered threshold, got %v", got)
	}
}
