package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

func newClassifyHandler(t *testing.T) (*ClassifyHandler, *expression.BaselineStore, *StatsHandler) {
	t.Helper()
	baseline := expression.NewBaselineStore()
	stats := NewStatsHandler(baseline)
	return NewClassifyHandler(testConfig(), baseline, stats), baseline, stats
}

func TestClassifyHandler_Smile(t *testing.T) {
	handler, _, _ := newClassifyHandler(t)

	req := jsonRequest(t, "POST", "/api/v1/classify", map[string]any{
		"vector": map[string]float64{
			"mouthSmileLeft":  0.45,
			"mouthSmileRight": 0.20,
		},
	})
	recorder := httptest.NewRecorder()
	handler.Classify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp ClassifyResponse
	parseJSONResponse(t, recorder, &resp)

	if resp.Category != expression.Smile {
		t.Errorf("expected smile, got %s", resp.Category)
	}
	if resp.Glyph != "😄" {
		t.Errorf("expected smile glyph, got %s", resp.Glyph)
	}
	if resp.Calibrated {
		t.Error("expected calibrated=false before any calibration")
	}
	if resp.Scores[expression.Smile] != 0.45 {
		t.Errorf("expected smile score 0.45, got %v", resp.Scores[expression.Smile])
	}
}

func TestClassifyHandler_BlendshapeList(t *testing.T) {
	handler, _, _ := newClassifyHandler(t)

	req := jsonRequest(t, "POST", "/api/v1/classify", map[string]any{
		"blendshapes": []map[string]any{
			{"category_name": "jawOpen", "score": 0.5},
		},
	})
	recorder := httptest.NewRecorder()
	handler.Classify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp ClassifyResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Category != expression.Surprise {
		t.Errorf("expected surprise, got %s", resp.Category)
	}
}

func TestClassifyHandler_NoFaceIsNeutral(t *testing.T) {
	handler, _, _ := newClassifyHandler(t)

	req := jsonRequest(t, "POST", "/api/v1/classify", map[string]any{})
	recorder := httptest.NewRecorder()
	handler.Classify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp ClassifyResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Category != expression.Neutral {
		t.Errorf("expected neutral for empty frame, got %s", resp.Category)
	}
	if len(resp.Scores) != 0 {
		t.Errorf("expected empty scores for empty frame, got %v", resp.Scores)
	}
}

func TestClassifyHandler_BaselineCancelsExpression(t *testing.T) {
	handler, baseline, _ := newClassifyHandler(t)

	// A face with a naturally smiley resting state.
	baseline.Calibrate(expression.Vector{"mouthSmileLeft": 0.30})

	req := jsonRequest(t, "POST", "/api/v1/classify", map[string]any{
		"vector": map[string]float64{"mouthSmileLeft": 0.40},
	})
	recorder := httptest.NewRecorder()
	handler.Classify(recorder, req)

	var resp ClassifyResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Category != expression.Neutral {
		t.Errorf("expected neutral after baseline subtraction, got %s", resp.Category)
	}
	if !resp.Calibrated {
		t.Error("expected calibrated=true")
	}
}

func TestClassifyHandler_InvalidBody(t *testing.T) {
	handler, _, _ := newClassifyHandler(t)

	req := httptest.NewRequest("POST", "/api/v1/classify", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()
	handler.Classify(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestClassifyHandler_RecordsStats(t *testing.T) {
	handler, _, stats := newClassifyHandler(t)

	req := jsonRequest(t, "POST", "/api/v1/classify", map[string]any{
		"vector": map[string]float64{"mouthSmileLeft": 0.5},
	})
	handler.Classify(httptest.NewRecorder(), req)

	statsReq := httptest.NewRequest("GET", "/api/v1/stats", nil)
	recorder := httptest.NewRecorder()
	stats.Get(recorder, statsReq)

	var resp StatsResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.FramesClassified != 1 {
		t.Errorf("expected 1 classified frame, got %d", resp.FramesClassified)
	}
	if resp.Categories[expression.Smile] != 1 {
		t.Errorf("expected 1 smile, got %d", resp.Categories[expression.Smile])
	}
}
