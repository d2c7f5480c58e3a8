package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/emoji-mirror/internal/database"
	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

const defaultMatchLimit = 3

// ProfilesHandler manages stored calibration profiles.
type ProfilesHandler struct {
	baseline *expression.BaselineStore
}

// NewProfilesHandler creates a new profiles handler
func NewProfilesHandler(baseline *expression.BaselineStore) *ProfilesHandler {
	return &ProfilesHandler{baseline: baseline}
}

// ProfileResponse is the wire form of a stored profile
type ProfileResponse struct {
	UID       string            `json:"uid"`
	Name      string            `json:"name"`
	Channels  int               `json:"channels"`
	Baseline  expression.Vector `json:"baseline,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func toProfileResponse(p *database.StoredProfile, includeBaseline bool) ProfileResponse {
	resp := ProfileResponse{
		UID:       p.UID,
		Name:      p.Name,
		Channels:  len(p.Channels),
		CreatedAt: p.CreatedAt,
	}
	if includeBaseline {
		resp.Baseline = p.Vector()
	}
	return resp
}

func getWriter(w http.ResponseWriter, r *http.Request) (database.ProfileWriter, bool) {
	writer, err := database.GetProfileWriter(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return writer, true
}

// List handles GET /profiles.
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	writer, ok := getWriter(w, r)
	if !ok {
		return
	}

	profiles, err := writer.List(r.Context())
	if err != nil {
		log.Printf("Failed to list profiles: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}

	out := make([]ProfileResponse, len(profiles))
	for i := range profiles {
		out[i] = toProfileResponse(&profiles[i], false)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"profiles": out,
		"count":    len(out),
	})
}

// Get handles GET /profiles/{uid}.
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	writer, ok := getWriter(w, r)
	if !ok {
		return
	}

	uid := chi.URLParam(r, "uid")
	profile, err := writer.Get(r.Context(), uid)
	if err != nil {
		log.Printf("Failed to get profile %s: %v", sanitizeForLog(uid), err)
		respondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if profile == nil {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}

	respondJSON(w, http.StatusOK, toProfileResponse(profile, true))
}

// Delete handles DELETE /profiles/{uid}.
func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	writer, ok := getWriter(w, r)
	if !ok {
		return
	}

	uid := chi.URLParam(r, "uid")
	if err := writer.Delete(r.Context(), uid); err != nil {
		log.Printf("Failed to delete profile %s: %v", sanitizeForLog(uid), err)
		respondError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Activate handles POST /profiles/{uid}/activate: loads the profile's
// stored baseline into the live baseline store.
func (h *ProfilesHandler) Activate(w http.ResponseWriter, r *http.Request) {
	writer, ok := getWriter(w, r)
	if !ok {
		return
	}

	uid := chi.URLParam(r, "uid")
	profile, err := writer.Get(r.Context(), uid)
	if err != nil {
		log.Printf("Failed to get profile %s: %v", sanitizeForLog(uid), err)
		respondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if profile == nil {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}

	h.baseline.Calibrate(profile.Vector())

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "activated",
		"profile": toProfileResponse(profile, false),
	})
}

// MatchRequest represents a profile match request. With no frame fields the
// live baseline is used as the query.
type MatchRequest struct {
	framePayload
	Limit int `json:"limit"`
}

// MatchResult represents a single matched profile
type MatchResult struct {
	Profile  ProfileResponse `json:"profile"`
	Distance float64         `json:"distance"`
}

// Match handles POST /profiles/match: finds the stored profiles whose
// baselines are closest to the query vector, so a returning user can be
// recognized without recalibrating.
func (h *ProfilesHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	query := req.toVector()
	if query == nil {
		query = h.baseline.Baseline()
	}
	if query == nil {
		respondError(w, http.StatusBadRequest, "no query vector and no calibrated baseline")
		return
	}

	matcher, err := database.GetProfileMatcher(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultMatchLimit
	}

	_, values := database.PackBaseline(query)
	profiles, distances, err := matcher.FindNearest(r.Context(), values, limit)
	if err != nil {
		log.Printf("Failed to match profiles: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to match profiles")
		return
	}

	results := make([]MatchResult, len(profiles))
	for i := range profiles {
		results[i] = MatchResult{
			Profile:  toProfileResponse(&profiles[i], false),
			Distance: distances[i],
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"matches": results})
}

// RebuildIndex handles POST /profiles/rebuild-index: rebuilds the
// in-memory HNSW index from the storage backend.
func (h *ProfilesHandler) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	rebuilder := database.GetProfileHNSWRebuilder()
	if rebuilder == nil {
		respondError(w, http.StatusServiceUnavailable, "HNSW index not available for this backend")
		return
	}

	if err := rebuilder.RebuildHNSW(r.Context()); err != nil {
		log.Printf("Failed to rebuild HNSW index: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to rebuild index")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "rebuilt",
		"count":  rebuilder.HNSWCount(),
	})
}
