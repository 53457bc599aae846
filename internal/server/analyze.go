package server

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/shelfscan/shelfscan/internal/compliance"
	"github.com/shelfscan/shelfscan/internal/detection"
	"github.com/shelfscan/shelfscan/internal/imaging"
	"github.com/shelfscan/shelfscan/internal/store"
)

// maxUploadBytes bounds shelf photograph uploads.
const maxUploadBytes = 20 << 20

// AnalyzeResponse is the result of one image analysis.
type AnalyzeResponse struct {
	SavedImagePath   string                        `json:"saved_image_path"`
	DetectedCounts   map[string]int                `json:"detected_counts"`
	EmptyShelfItems  []string                      `json:"empty_shelf_items"`
	DetectedProducts []compliance.DetectedProduct  `json:"detected_products"`
	ComplianceResult *compliance.ComplianceResult  `json:"compliance_result,omitempty"`
	DetectionMethod  string                        `json:"detection_method"`
	DebugImages      map[string]string             `json:"debug_images"`
	ImageInfo        imaging.ImageInfo             `json:"image_info"`
}

// GridCell is one cell of a detected grid, bbox in original-image pixels.
type GridCell struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	BBox   [4]int `json:"bbox"`
}

// GridResponse is the result of standalone grid detection.
type GridResponse struct {
	GridDimensions  detection.GridDimensions `json:"grid_dimensions"`
	Cells           []GridCell               `json:"cells"`
	DetectionImage  string                   `json:"detection_image"`
	DebugImages     map[string]string        `json:"debug_images"`
	DetectionMethod string                   `json:"detection_method"`
	ImageInfo       imaging.ImageInfo        `json:"image_info"`
	Success         bool                     `json:"success"`
	Message         string                   `json:"message"`
}

// handleAnalyzeImage runs the full pipeline on an uploaded photograph:
// normalize, detect products, infer the grid, map detections to cells,
// OCR labels under empty positions, and (when a planogram_id accompanies
// the upload) check compliance.
func (s *Server) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	img, raw, format, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	planogramID := r.FormValue("planogram_id")

	analysisID := uuid.NewString()
	norm := imaging.Normalize(img)
	s.debugf("analyze %s: normalized %dx%d -> %dx%d", analysisID,
		norm.OriginalWidth, norm.OriginalHeight, norm.Width, norm.Height)

	if _, err := s.workspace.SaveBytes(fmt.Sprintf("input_%s.%s", analysisID, format), raw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save image")
		return
	}
	normalizedName, err := s.workspace.SaveJPEG(fmt.Sprintf("normalized_%s.jpg", analysisID), norm.Image)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	var normBuf bytes.Buffer
	if err := png.Encode(&normBuf, norm.Image); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode image")
		return
	}

	detections, err := s.detector.Detect(r.Context(), normBuf.Bytes())
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("detector unavailable: %v", err))
		return
	}

	edges := imaging.DetectEdges(norm.Image, imaging.DefaultEdgeThresholdLow, imaging.DefaultEdgeThresholdHigh)
	grid := detection.InferGrid(edges.Pixels, norm.Width, norm.Height)
	s.debugf("analyze %s: %dx%d grid via %s", analysisID,
		grid.Dims.Rows, grid.Dims.Columns, grid.Method)

	counts := make(map[string]int)
	products := make([]compliance.DetectedProduct, 0, len(detections))
	emptyBoxes := make([]image.Rectangle, 0)

	for _, d := range detections {
		box := detection.Bounds{X1: d.Box[0], Y1: d.Box[1], X2: d.Box[2], Y2: d.Box[3]}
		row, col := detection.CellFor(box, grid.Bounds)

		counts[d.Label]++
		products = append(products, compliance.DetectedProduct{
			Label:    d.Label,
			Row:      row,
			Column:   col,
			Quantity: 1,
		})

		if s.norm.IsEmpty(d.Label) {
			emptyBoxes = append(emptyBoxes, image.Rect(d.Box[0], d.Box[1], d.Box[2], d.Box[3]))
		}
	}

	emptyItems := make([]string, 0, len(emptyBoxes))
	for _, box := range emptyBoxes {
		emptyItems = append(emptyItems, s.labels.LabelBelow(norm.Image, box))
	}

	var result *compliance.ComplianceResult
	if planogramID != "" {
		p, err := s.planograms.Get(planogramID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, fmt.Sprintf("planogram %s not found", planogramID))
			} else {
				writeStoreError(w, err)
			}
			return
		}
		result, err = s.engine.Check(p, products)
		if err != nil {
			writeStoreError(w, err)
			return
		}
	}

	debugImages := map[string]string{"normalized": "images/" + normalizedName}
	if overlay, err := imaging.RenderGridOverlay(norm.Image, grid.Bounds.HLines, grid.Bounds.VLines, imaging.DefaultGridColor); err == nil {
		if name, err := s.workspace.SaveBytes(fmt.Sprintf("overlay_%s.png", analysisID), overlay); err == nil {
			debugImages["overlay"] = "images/" + name
		}
	}

	writeJSON(w, http.StatusOK, &AnalyzeResponse{
		SavedImagePath:   "images/" + normalizedName,
		DetectedCounts:   counts,
		EmptyShelfItems:  emptyItems,
		DetectedProducts: products,
		ComplianceResult: result,
		DetectionMethod:  string(grid.Method),
		DebugImages:      debugImages,
		ImageInfo:        norm.Info(),
	})
}

// handleDetectGrid infers the shelf grid of an uploaded photograph without
// running product detection, returning cell bounding boxes in the
// original image's coordinates.
func (s *Server) handleDetectGrid(w http.ResponseWriter, r *http.Request) {
	img, _, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	detectionID := uuid.NewString()
	norm := imaging.Normalize(img)

	edges := imaging.DetectEdges(norm.Image, imaging.DefaultEdgeThresholdLow, imaging.DefaultEdgeThresholdHigh)
	grid := detection.InferGrid(edges.Pixels, norm.Width, norm.Height)

	cells := make([]GridCell, 0, grid.Dims.Rows*grid.Dims.Columns)
	for row := 0; row < grid.Dims.Rows; row++ {
		for col := 0; col < grid.Dims.Columns; col++ {
			cells = append(cells, GridCell{
				Row:    row,
				Column: col,
				BBox: [4]int{
					int(float64(grid.Bounds.VLines[col]) * norm.ScaleX),
					int(float64(grid.Bounds.HLines[row]) * norm.ScaleY),
					int(float64(grid.Bounds.VLines[col+1]) * norm.ScaleX),
					int(float64(grid.Bounds.HLines[row+1]) * norm.ScaleY),
				},
			})
		}
	}

	debugImages := make(map[string]string)
	if name, err := s.workspace.SaveJPEG(fmt.Sprintf("normalized_%s.jpg", detectionID), norm.Image); err == nil {
		debugImages["normalized"] = "images/" + name
	}

	detectionImage := ""
	if overlay, err := imaging.RenderGridOverlay(norm.Image, grid.Bounds.HLines, grid.Bounds.VLines, imaging.DefaultGridColor); err == nil {
		if name, err := s.workspace.SaveBytes(fmt.Sprintf("grid_detection_%s.png", detectionID), overlay); err == nil {
			detectionImage = "images/" + name
		}
	}

	writeJSON(w, http.StatusOK, &GridResponse{
		GridDimensions:  grid.Dims,
		Cells:           cells,
		DetectionImage:  detectionImage,
		DebugImages:     debugImages,
		DetectionMethod: string(grid.Method),
		ImageInfo:       norm.Info(),
		Success:         true,
		Message: fmt.Sprintf("Successfully detected %dx%d grid using %s detection",
			grid.Dims.Rows, grid.Dims.Columns, grid.Method),
	})
}

// readUpload pulls the "image" file out of a multipart request and decodes
// it. On failure it writes the error response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (img image.Image, raw []byte, format string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with an image file")
		return nil, nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return nil, nil, "", false
	}
	defer file.Close()

	raw, err = io.ReadAll(file)
	if err != nil || len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "empty image file")
		return nil, nil, "", false
	}

	img, format, err = imaging.Decode(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image file")
		return nil, nil, "", false
	}
	return img, raw, format, true
}
