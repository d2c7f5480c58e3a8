// Package landmark talks to the face-landmark service that turns video
// frames into named blendshape scores. The service owns model loading and
// inference; this client only moves bytes and parses the score list.
package landmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

const (
	defaultLandmarkURL   = "http://localhost:9090"
	defaultLandmarkModel = "face_landmarker_v2" // model name for reference only
)

// Client computes blendshape vectors using the landmark server.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a new landmark client.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultLandmarkURL
	}
	if model == "" {
		model = defaultLandmarkModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

// blendshapeResponse represents the response from the landmark server.
type blendshapeResponse struct {
	FacesCount  int                    `json:"faces_count"`
	Blendshapes []expression.Blendshape `json:"blendshapes"`
	Model       string                 `json:"model"`
}

// FrameResult contains the blendshape vector for a frame and its metadata.
type FrameResult struct {
	// Vector is nil when the model found no face in the frame.
	Vector     expression.Vector
	FacesCount int
	Model      string
}

// postMultipartFrame constructs a multipart form with the frame data and
// posts it to the given endpoint.
func (c *Client) postMultipartFrame(ctx context.Context, endpoint string, frameData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	mimeType := detectMIMEType(frameData)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(frameData); err != nil {
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// ComputeBlendshapes sends a frame to the landmark server and returns the
// blendshape vector for the first detected face. A frame with no face
// yields a result with a nil Vector, not an error.
func (c *Client) ComputeBlendshapes(ctx context.Context, frameData []byte) (*FrameResult, error) {
	body, err := c.postMultipartFrame(ctx, "/v1/blendshapes", frameData)
	if err != nil {
		return nil, err
	}

	var resp blendshapeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	result := &FrameResult{
		FacesCount: resp.FacesCount,
		Model:      resp.Model,
	}
	if resp.FacesCount > 0 {
		result.Vector = expression.FromBlendshapes(resp.Blendshapes)
	}
	return result, nil
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

// detectMIMEType detects the MIME type from frame data.
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
