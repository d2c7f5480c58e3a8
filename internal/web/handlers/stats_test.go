package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

func TestStatsHandler_Counters(t *testing.T) {
	setupMockBackend(t)
	baseline := expression.NewBaselineStore()
	handler := NewStatsHandler(baseline)

	handler.RecordClassification(expression.Smile)
	handler.RecordClassification(expression.Smile)
	handler.RecordClassification(expression.Neutral)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest("GET", "/api/v1/stats", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp StatsResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.FramesClassified != 3 {
		t.Errorf("expected 3 frames, got %d", resp.FramesClassified)
	}
	if resp.Categories[expression.Smile] != 2 {
		t.Errorf("expected 2 smiles, got %d", resp.Categories[expression.Smile])
	}
	if resp.Categories[expression.Neutral] != 1 {
		t.Errorf("expected 1 neutral, got %d", resp.Categories[expression.Neutral])
	}
	if resp.Calibrated {
		t.Error("expected calibrated=false")
	}
}

func TestStatsHandler_IncludesBackendInfo(t *testing.T) {
	store := setupMockBackend(t)
	saveTestProfile(t, store, "Anna", expression.Vector{"jawOpen": 0.05})

	handler := NewStatsHandler(expression.NewBaselineStore())

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest("GET", "/api/v1/stats", nil))

	var resp StatsResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.StorageBackend != "mock" {
		t.Errorf("expected mock backend, got %q", resp.StorageBackend)
	}
	if resp.StoredProfiles != 1 {
		t.Errorf("expected 1 stored profile, got %d", resp.StoredProfiles)
	}
}
