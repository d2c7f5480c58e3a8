package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// framePayload is the wire form of a single camera frame. Clients either
// forward the landmarker's blendshape list as-is or send a pre-built
// name/score map. A payload with neither field means no face was detected.
type framePayload struct {
	Blendshapes []expression.Blendshape `json:"blendshapes,omitempty"`
	Vector      map[string]float64      `json:"vector,omitempty"`
}

// toVector converts the payload to a blendshape vector, nil when the frame
// carries no face.
func (f *framePayload) toVector() expression.Vector {
	if len(f.Blendshapes) > 0 {
		return expression.FromBlendshapes(f.Blendshapes)
	}
	if len(f.Vector) > 0 {
		return expression.Vector(f.Vector)
	}
	return nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
