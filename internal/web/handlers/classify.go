package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kozaktomas/emoji-mirror/internal/config"
	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

// ClassifyHandler classifies camera frames against the live calibration
// baseline.
type ClassifyHandler struct {
	classifier *expression.Classifier
	baseline   *expression.BaselineStore
	glyphs     map[expression.Category]string
	stats      *StatsHandler
}

// NewClassifyHandler creates a new classify handler
func NewClassifyHandler(cfg *config.Config, baseline *expression.BaselineStore, stats *StatsHandler) *ClassifyHandler {
	return &ClassifyHandler{
		classifier: expression.NewClassifier(cfg.ClassifierTuning()),
		baseline:   baseline,
		glyphs:     cfg.Glyphs(),
		stats:      stats,
	}
}

// ClassifyResponse represents the classification result for one frame
type ClassifyResponse struct {
	Category   expression.Category             `json:"category"`
	Glyph      string                          `json:"glyph"`
	Scores     map[expression.Category]float64 `json:"scores"`
	Calibrated bool                            `json:"calibrated"`
}

// Classify handles POST /classify. It accepts one frame and returns the
// expression category and its glyph. Classification never fails; a frame
// without a face comes back as neutral.
func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req framePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	current := req.toVector()
	baseline := h.baseline.Baseline()

	category := h.classifier.Classify(current, baseline)

	if h.stats != nil {
		h.stats.RecordClassification(category)
	}

	respondJSON(w, http.StatusOK, ClassifyResponse{
		Category:   category,
		Glyph:      h.glyphs[category],
		Scores:     h.classifier.Scores(current, baseline),
		Calibrated: h.baseline.Calibrated(),
	})
}
