package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kozaktomas/emoji-mirror/internal/database"
	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

// CalibrateHandler manages the live calibration baseline.
type CalibrateHandler struct {
	baseline *expression.BaselineStore
}

// NewCalibrateHandler creates a new calibrate handler
func NewCalibrateHandler(baseline *expression.BaselineStore) *CalibrateHandler {
	return &CalibrateHandler{baseline: baseline}
}

// CalibrateRequest represents a calibration request. The frame fields are
// the same as for classification; an optional profile name persists the
// baseline to the storage backend.
type CalibrateRequest struct {
	framePayload
	ProfileName string `json:"profile_name,omitempty"`
}

// CalibrateResponse represents the calibration result
type CalibrateResponse struct {
	Calibrated bool   `json:"calibrated"`
	Channels   int    `json:"channels"`
	ProfileUID string `json:"profile_uid,omitempty"`
}

// Calibrate handles POST /calibrate. It replaces the baseline with the
// given frame's vector. A frame without a face leaves the previous
// baseline untouched.
func (h *CalibrateHandler) Calibrate(w http.ResponseWriter, r *http.Request) {
	var req CalibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	vector := req.toVector()
	h.baseline.Calibrate(vector)

	resp := CalibrateResponse{
		Calibrated: h.baseline.Calibrated(),
		Channels:   len(h.baseline.Baseline()),
	}

	// Persist as a named profile when requested and a backend is wired.
	if req.ProfileName != "" && vector != nil {
		if !database.IsInitialized() {
			respondError(w, http.StatusServiceUnavailable, "profile storage not configured")
			return
		}
		writer, err := database.GetProfileWriter(r.Context())
		if err != nil {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		channels, values := database.PackBaseline(vector)
		profile := &database.StoredProfile{
			Name:     req.ProfileName,
			Channels: channels,
			Baseline: values,
		}
		if err := writer.Save(r.Context(), profile); err != nil {
			log.Printf("Failed to save profile %s: %v", sanitizeForLog(req.ProfileName), err)
			respondError(w, http.StatusInternalServerError, "failed to save profile")
			return
		}
		resp.ProfileUID = profile.UID
	}

	respondJSON(w, http.StatusOK, resp)
}

// BaselineResponse represents the current baseline state
type BaselineResponse struct {
	Calibrated bool              `json:"calibrated"`
	Baseline   expression.Vector `json:"baseline,omitempty"`
}

// GetBaseline handles GET /baseline.
func (h *CalibrateHandler) GetBaseline(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, BaselineResponse{
		Calibrated: h.baseline.Calibrated(),
		Baseline:   h.baseline.Baseline(),
	})
}

// ResetBaseline handles DELETE /baseline, returning to the uncalibrated
// state.
func (h *CalibrateHandler) ResetBaseline(w http.ResponseWriter, r *http.Request) {
	h.baseline.Reset()
	respondJSON(w, http.StatusOK, BaselineResponse{Calibrated: false})
}
