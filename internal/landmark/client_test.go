package landmark

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

func TestComputeBlendshapes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/blendshapes" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"faces_count": 1,
			"blendshapes": []map[string]any{
				{"category_name": "mouthSmileLeft", "score": 0.42},
				{"category_name": "jawOpen", "score": 0.05},
			},
			"model": "face_landmarker_v2",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	result, err := client.ComputeBlendshapes(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("ComputeBlendshapes failed: %v", err)
	}

	if result.FacesCount != 1 {
		t.Errorf("expected 1 face, got %d", result.FacesCount)
	}
	if result.Model != "face_landmarker_v2" {
		t.Errorf("unexpected model: %s", result.Model)
	}
	if got := result.Vector.Score(expression.ChannelMouthSmileLeft); got != 0.42 {
		t.Errorf("expected mouthSmileLeft 0.42, got %v", got)
	}
}

func TestComputeBlendshapesNoFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"faces_count": 0,
			"blendshapes": []map[string]any{},
			"model":       "face_landmarker_v2",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	result, err := client.ComputeBlendshapes(context.Background(), []byte("not really a jpeg"))
	if err != nil {
		t.Fatalf("ComputeBlendshapes failed: %v", err)
	}

	if result.Vector != nil {
		t.Errorf("expected nil vector for faceless frame, got %v", result.Vector)
	}
}

func TestComputeBlendshapesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.ComputeBlendshapes(context.Background(), []byte("frame"))
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"too short", []byte{0xFF}, "application/octet-stream"},
		{"unknown", []byte("plain text data"), "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.expected {
				t.Errorf("detectMIMEType() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", "")
	if client.baseURL != defaultLandmarkURL {
		t.Errorf("expected default URL, got %s", client.baseURL)
	}
	if client.Model() != defaultLandmarkModel {
		t.Errorf("expected default model, got %s", client.Model())
	}

	client = NewClient("http://example.com/", "custom")
	if client.baseURL != "http://example.com" {
		t.Errorf("expected trimmed URL, got %s", client.baseURL)
	}
}
