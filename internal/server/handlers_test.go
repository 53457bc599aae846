package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shelfscan/shelfscan/internal/compliance"
	"github.com/shelfscan/shelfscan/internal/config"
	"github.com/shelfscan/shelfscan/internal/detector"
	"github.com/shelfscan/shelfscan/internal/store"
)

// stubDetector returns canned detections.
type stubDetector struct {
	detections []detector.Detection
	err        error
}

func (s *stubDetector) Detect(ctx context.Context, imageData []byte) ([]detector.Detection, error) {
	return s.detections, s.err
}

// stubLabels returns a fixed label for every strip.
type stubLabels struct {
	label string
}

func (s *stubLabels) LabelBelow(img image.Image, box image.Rectangle) string {
	return s.label
}

func newTestServer(t *testing.T, det Detector) *Server {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:   dir,
		OutputDir: dir + "/out",
	}
	planograms, err := store.NewPlanogramStore(dir + "/planograms")
	if err != nil {
		t.Fatalf("planogram store: %v", err)
	}
	products, err := store.NewProductStore(dir + "/products")
	if err != nil {
		t.Fatalf("product store: %v", err)
	}

	srv, err := New(cfg, planograms, products, det, &stubLabels{label: "Coca Cola"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return srv
}

// multipartImage builds a multipart body with a PNG under the "image"
// field plus any extra form values.
func multipartImage(t *testing.T, width, height int, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "shelf.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if err := png.Encode(part, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func doRequest(t *testing.T, srv *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubDetector{})

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestAnalyzeImage(t *testing.T) {
	det := &stubDetector{detections: []detector.Detection{
		{Label: "coca cola", Confidence: 0.9, Box: [4]int{10, 10, 150, 190}},
		{Label: "coca cola", Confidence: 0.8, Box: [4]int{160, 10, 290, 190}},
		{Label: "empty_shelf", Confidence: 0.7, Box: [4]int{310, 10, 440, 190}},
	}}
	srv := newTestServer(t, det)

	body, ct := multipartImage(t, 600, 400, nil)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/images/analyze", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.DetectedCounts["coca cola"] != 2 {
		t.Errorf("counts: got %v", resp.DetectedCounts)
	}
	if len(resp.DetectedProducts) != 3 {
		t.Errorf("products: got %d, want 3", len(resp.DetectedProducts))
	}
	if len(resp.EmptyShelfItems) != 1 || resp.EmptyShelfItems[0] != "Coca Cola" {
		t.Errorf("empty shelf items: got %v", resp.EmptyShelfItems)
	}
	if resp.ComplianceResult != nil {
		t.Error("compliance must be omitted without a planogram_id")
	}
	if resp.DetectionMethod != "structural" && resp.DetectionMethod != "fallback" {
		t.Errorf("detection method: got %q", resp.DetectionMethod)
	}
	if resp.SavedImagePath == "" || !strings.HasPrefix(resp.SavedImagePath, "images/") {
		t.Errorf("saved image path: got %q", resp.SavedImagePath)
	}
	if resp.ImageInfo.OriginalWidth != 600 || resp.ImageInfo.OriginalHeight != 400 {
		t.Errorf("image info: got %+v", resp.ImageInfo)
	}
}

func TestAnalyzeImage_WithPlanogram(t *testing.T) {
	det := &stubDetector{detections: []detector.Detection{
		{Label: "coca cola", Confidence: 0.9, Box: [4]int{10, 10, 100, 100}},
	}}
	srv := newTestServer(t, det)

	p, err := srv.planograms.Create(store.PlanogramInput{
		Name: "Cooler",
		Shelves: []compliance.PlanogramShelf{
			{Row: 0, Sections: []compliance.PlanogramSection{
				{Column: 0, ExpectedProduct: "Coca-Cola"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("seed planogram: %v", err)
	}

	body, ct := multipartImage(t, 600, 400, map[string]string{"planogram_id": p.ID})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/images/analyze", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ComplianceResult == nil {
		t.Fatal("expected a compliance result")
	}
	if !resp.ComplianceResult.IsCompliant {
		t.Errorf("compliance: got %+v", resp.ComplianceResult)
	}
	if resp.ComplianceResult.PlanogramName != "Cooler" {
		t.Errorf("planogram name: got %q", resp.ComplianceResult.PlanogramName)
	}
}

func TestAnalyzeImage_UnknownPlanogram(t *testing.T) {
	srv := newTestServer(t, &stubDetector{})

	body, ct := multipartImage(t, 600, 400, map[string]string{"planogram_id": "ghost"})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/images/analyze", body, ct)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestAnalyzeImage_DetectorDown(t *testing.T) {
	srv := newTestServer(t, &stubDetector{err: errors.New("connection refused")})

	body, ct := multipartImage(t, 600, 400, nil)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/images/analyze", body, ct)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", rec.Code)
	}
}

func TestAnalyzeImage_BadUpload(t *testing.T) {
	srv := newTestServer(t, &stubDetector{})

	// Not multipart at all.
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/images/analyze",
		bytes.NewBufferString("plain body"), "text/plain")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-multipart: got %d, want 400", rec.Code)
	}

	// Multipart, but the file is not an image.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("image", "notes.txt")
	part.Write([]byte("not an image"))
	writer.Close()

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/images/analyze",
		body, writer.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-image upload: got %d, want 400", rec.Code)
	}
}

func TestDetectGrid(t *testing.T) {
	srv := newTestServer(t, &stubDetector{})

	body, ct := multipartImage(t, 1200, 300, nil)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/images/grid", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp GridResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !resp.Success {
		t.Error("expected success")
	}
	// A featureless panorama lands on the aspect-ratio fallback.
	if resp.DetectionMethod != "fallback" {
		t.Errorf("method: got %s, want fallback", resp.DetectionMethod)
	}
	if resp.GridDimensions.Rows != 1 {
		t.Errorf("rows: got %d, want 1", resp.GridDimensions.Rows)
	}
	if resp.GridDimensions.Columns < 3 || resp.GridDimensions.Columns > 6 {
		t.Errorf("columns: got %d, want within [3,6]", resp.GridDimensions.Columns)
	}
	if len(resp.Cells) != resp.GridDimensions.Rows*resp.GridDimensions.Columns {
		t.Errorf("cells: got %d for %dx%d grid",
			len(resp.Cells), resp.GridDimensions.Rows, resp.GridDimensions.Columns)
	}

	// Cell boxes are reported in original-image pixels.
	last := resp.Cells[len(resp.Cells)-1]
	if last.BBox[2] != 1200 || last.BBox[3] != 300 {
		t.Errorf("last cell bbox: got %v, want to end at (1200,300)", last.BBox)
	}
}

func TestPlanogramCRUD(t *testing.T) {
	srv := newTestServer(t, &stubDetector{})

	create := `{"name":"Front Cooler","shelves":[{"row":0,"sections":[{"column":0,"expected_product":"Coca-Cola"}]}]}`
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/planograms",
		bytes.NewBufferString(create), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}

	var created compliance.Planogram
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated ID")
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/planograms/"+created.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("get: got %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/planograms", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("list: got %d", rec.Code)
	}
	var list []compliance.Planogram
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list: got %d planograms, want 1", len(list))
	}

	update := `{"name":"Front Cooler v2","shelves":[]}`
	rec = doRequest(t, srv, http.MethodPut, "/api/v1/planograms/"+created.ID,
		bytes.NewBufferString(update), "application/json")
	if rec.Code != http.StatusOK {
		t.Errorf("update: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/planograms/"+created.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete: got %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/planograms/"+created.ID, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rec.Code)
	}
}

func TestPlanogramErrors(t *testing.T) {
	srv := newTestServer(t, &stubDetector{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/planograms",
		bytes.NewBufferString("{broken"), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: got %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/planograms",
		bytes.NewBufferString(`{"shelves":[]}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name: got %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/v1/planograms/ghost",
		bytes.NewBufferString(`{"name":"x"}`), "application/json")
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing: got %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/planograms/ghost", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing: got %d, want 404", rec.Code)
	}
}

func TestProductCRUD(t *testing.T) {
	srv := newTestServer(t, &stubDetector{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/products",
		bytes.NewBufferString(`{"name":"Coca-Cola 330ml","brand":"Coca-Cola"}`), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}

	var created store.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/v1/products/"+created.ID,
		bytes.NewBufferString(`{"name":"Coca-Cola 500ml"}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Errorf("update: got %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/products/"+created.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d", rec.Code)
	}
	var got store.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode got: %v", err)
	}
	if got.Name != "Coca-Cola 500ml" {
		t.Errorf("name after update: got %q", got.Name)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/products/"+created.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete: got %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/products/"+created.ID, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rec.Code)
	}
}
