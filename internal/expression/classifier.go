package expression

// Category is the classified expression label driving the displayed glyph.
type Category string

const (
	Neutral  Category = "neutral"
	Smile    Category = "smile"
	Surprise Category = "surprise"
	Frown    Category = "frown"
	Cheeky   Category = "cheeky"
)

// Blendshape channel names following the MediaPipe face landmarker convention.
const (
	ChannelMouthSmileLeft  = "mouthSmileLeft"
	ChannelMouthSmileRight = "mouthSmileRight"
	ChannelJawOpen         = "jawOpen"
	ChannelMouthPucker     = "mouthPucker"
	ChannelMouthFrownLeft  = "mouthFrownLeft"
	ChannelMouthFrownRight = "mouthFrownRight"
	ChannelCheekPuffLeft   = "cheekPuffLeft"
	ChannelCheekPuffRight  = "cheekPuffRight"
	ChannelTongueOut       = "tongueOut"
)

// Tuning holds the per-category thresholds, the global selection floor and
// the surprise channel weights. The values are empirically chosen and can
// be overridden via the embedded tuning file; they are not load-bearing
// invariants.
type Tuning struct {
	SmileThreshold    float64 `yaml:"smile_threshold"`
	SurpriseThreshold float64 `yaml:"surprise_threshold"`
	FrownThreshold    float64 `yaml:"frown_threshold"`
	CheekyThreshold   float64 `yaml:"cheeky_threshold"`

	// Floor is the minimum score any category needs to beat neutral,
	// regardless of its own threshold.
	Floor float64 `yaml:"floor"`

	SurpriseJawWeight    float64 `yaml:"surprise_jaw_weight"`
	SurprisePuckerWeight float64 `yaml:"surprise_pucker_weight"`
}

// DefaultTuning returns the built-in tuning constants.
func DefaultTuning() Tuning {
	return Tuning{
		SmileThreshold:       0.25,
		SurpriseThreshold:    0.28,
		FrownThreshold:       0.20,
		CheekyThreshold:      0.22,
		Floor:                0.15,
		SurpriseJawWeight:    0.9,
		SurprisePuckerWeight: 0.4,
	}
}

// rule binds a category to its scoring function and qualification threshold.
// Rules are evaluated in slice order; the order is part of the contract
// (first category wins exact ties), not an incidental array literal.
type rule struct {
	category  Category
	threshold float64
	score     func(delta func(name string) float64) float64
}

// Classifier maps a blendshape vector and a calibration baseline to an
// expression category. It is stateless and safe for concurrent use.
type Classifier struct {
	tuning Tuning
	rules  []rule
}

// NewClassifier creates a classifier with the given tuning.
func NewClassifier(t Tuning) *Classifier {
	c := &Classifier{tuning: t}
	c.rules = []rule{
		{
			category:  Smile,
			threshold: t.SmileThreshold,
			score: func(delta func(string) float64) float64 {
				return max(delta(ChannelMouthSmileLeft), delta(ChannelMouthSmileRight))
			},
		},
		{
			category:  Surprise,
			threshold: t.SurpriseThreshold,
			score: func(delta func(string) float64) float64 {
				return delta(ChannelJawOpen)*t.SurpriseJawWeight + delta(ChannelMouthPucker)*t.SurprisePuckerWeight
			},
		},
		{
			category:  Frown,
			threshold: t.FrownThreshold,
			score: func(delta func(string) float64) float64 {
				return max(delta(ChannelMouthFrownLeft), delta(ChannelMouthFrownRight))
			},
		},
		{
			category:  Cheeky,
			threshold: t.CheekyThreshold,
			score: func(delta func(string) float64) float64 {
				return max(delta(ChannelCheekPuffLeft), delta(ChannelCheekPuffRight)) + delta(ChannelTongueOut)
			},
		},
	}
	return c
}

// Tuning returns the classifier's tuning values.
func (c *Classifier) Tuning() Tuning {
	return c.tuning
}

// Classify selects the expression category for the current frame. A nil
// current vector (no face detected) yields Neutral without consulting the
// baseline. A nil baseline behaves as an all-zero vector, so the
// classifier is usable before calibration. Classify never fails.
func (c *Classifier) Classify(current, baseline Vector) Category {
	if current == nil {
		return Neutral
	}

	delta := func(name string) float64 {
		return Delta(current, baseline, name)
	}

	best := Neutral
	bestScore := c.tuning.Floor

	// Strict > keeps the earlier rule on exact ties.
	for _, r := range c.rules {
		s := r.score(delta)
		if s > r.threshold && s > bestScore {
			best = r.category
			bestScore = s
		}
	}

	return best
}

// Scores returns the raw per-category scores for a frame, for diagnostics
// and API responses. A nil current vector yields an empty map.
func (c *Classifier) Scores(current, baseline Vector) map[Category]float64 {
	scores := make(map[Category]float64, len(c.rules))
	if current == nil {
		return scores
	}

	delta := func(name string) float64 {
		return Delta(current, baseline, name)
	}
	for _, r := range c.rules {
		scores[r.category] = r.score(delta)
	}
	return scores
}

// Categories returns the non-neutral categories in evaluation order.
func (c *Classifier) Categories() []Category {
	out := make([]Category, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.category
	}
	return out
}
