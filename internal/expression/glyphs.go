package expression

// defaultGlyphs maps each category to its display emoji. Presentation
// only - the classifier never looks at this table.
var defaultGlyphs = map[Category]string{
	Neutral:  "😐",
	Smile:    "😄",
	Surprise: "😮",
	Frown:    "🙁",
	Cheeky:   "😛",
}

// Glyph returns the display emoji for a category. Unknown categories fall
// back to the neutral glyph.
func Glyph(c Category) string {
	if g, ok := defaultGlyphs[c]; ok {
		return g
	}
	return defaultGlyphs[Neutral]
}

// DefaultGlyphs returns a copy of the built-in glyph table, used as the
// base for config overrides.
func DefaultGlyphs() map[Category]string {
	out := make(map[Category]string, len(defaultGlyphs))
	for k, v := range defaultGlyphs {
		out[k] = v
	}
	return out
}
