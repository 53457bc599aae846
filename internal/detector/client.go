// Package detector is the client for the external object-detection
// service. The model itself is a black box: the client uploads image
// bytes and gets back labeled bounding boxes with confidences.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Detection is one labeled bounding box from the model, with coordinates
// in the pixel space of the uploaded image.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        [4]int  `json:"bbox"` // x1, y1, x2, y2
}

// Client talks to an inference endpoint that accepts a multipart image
// upload and responds with {"detections": [...]}.
type Client struct {
	inferenceURL  string
	minConfidence float64
	httpClient    *http.Client
}

// NewClient creates a detector client. Detections with confidence at or
// below minConfidence are dropped before they reach the caller.
func NewClient(inferenceURL string, minConfidence float64) *Client {
	return &Client{
		inferenceURL:  inferenceURL,
		minConfidence: minConfidence,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Detect uploads image bytes for inference and returns the detections
// that clear the confidence floor.
func (c *Client) Detect(ctx context.Context, imageData []byte) ([]Detection, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.inferenceURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Detections []Detection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	filtered := make([]Detection, 0, len(result.Detections))
	for _, d := range result.Detections {
		if d.Confidence > c.minConfidence {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// CheckHealth probes the inference service's health endpoint.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.inferenceURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}
	return nil
}
