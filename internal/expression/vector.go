package expression

// Vector maps blendshape channel names (e.g. "mouthSmileLeft") to scores
// in [0, 1] as reported by the upstream landmark model. A nil Vector is
// valid and behaves as "no face detected".
type Vector map[string]float64

// Blendshape is a single named score from the landmark model output.
type Blendshape struct {
	Name  string  `json:"category_name"`
	Score float64 `json:"score"`
}

// FromBlendshapes converts the model's {name, score} list into a Vector,
// deduplicating by name (last occurrence wins). Returns nil for an empty
// or nil list so callers can distinguish "no face" from "neutral face".
func FromBlendshapes(shapes []Blendshape) Vector {
	if len(shapes) == 0 {
		return nil
	}
	v := make(Vector, len(shapes))
	for _, s := range shapes {
		v[s.Name] = s.Score
	}
	return v
}

// Score returns the value of a named channel, defaulting to 0 when the
// channel is missing. Safe on a nil Vector.
func (v Vector) Score(name string) float64 {
	return v[name]
}

// Clone returns an independent copy of the vector. Returns nil for nil.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	c := make(Vector, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// Delta returns current[name] - baseline[name], with missing channels on
// either side treated as 0. Either vector may be nil.
func Delta(current, baseline Vector, name string) float64 {
	return current.Score(name) - baseline.Score(name)
}
