package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractReader is the production TextReader backed by the system
// Tesseract installation via gosseract.
type TesseractReader struct {
	language string
}

// NewTesseractReader creates a reader for the given Tesseract language
// code (e.g. "eng"). The corresponding language data must be installed.
func NewTesseractReader(language string) *TesseractReader {
	return &TesseractReader{language: language}
}

// Read OCRs an image region and returns line-level candidates in reading
// order with confidences scaled to [0,1].
func (r *TesseractReader) Read(img image.Image) ([]Candidate, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	candidates := make([]Candidate, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
		})
	}
	return candidates, nil
}
