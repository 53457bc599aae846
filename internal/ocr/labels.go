package ocr

import (
	"image"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
)

// UnknownLabel is reported when no OCR candidate clears the confidence
// threshold.
const UnknownLabel = "Unknown Item"

// minLabelConfidence is the acceptance threshold for label text. Shelf-edge
// labels are small and often skewed; below 0.7 Tesseract's output is mostly
// price fragments and noise.
const minLabelConfidence = 0.7

// labelStripHeight is how far below a detection box the label strip
// extends, in normalized pixels.
const labelStripHeight = 120

// Candidate is one OCR hypothesis for a region, confidence in [0,1].
type Candidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// TextReader produces OCR candidates for an image region, in reading
// order.
type TextReader interface {
	Read(img image.Image) ([]Candidate, error)
}

// LabelReader applies the shelf-label policy on top of a TextReader.
type LabelReader struct {
	reader TextReader
}

// NewLabelReader wraps a TextReader with the label acceptance policy.
func NewLabelReader(r TextReader) *LabelReader {
	return &LabelReader{reader: r}
}

// LabelBelow reads the shelf-edge label under a detection box.
//
// The strip from the box bottom down to labelStripHeight pixels (clipped
// to the image) is cropped and OCR'd; the first candidate with confidence
// above the threshold is title-cased and returned. OCR errors, empty
// strips, and low-confidence results all yield UnknownLabel — a missing
// label never fails an analysis.
func (l *LabelReader) LabelBelow(img image.Image, box image.Rectangle) string {
	bounds := img.Bounds()
	strip := image.Rect(box.Min.X, box.Max.Y, box.Max.X, box.Max.Y+labelStripHeight).Intersect(bounds)
	if strip.Empty() {
		return UnknownLabel
	}

	candidates, err := l.reader.Read(imaging.Crop(img, strip))
	if err != nil {
		return UnknownLabel
	}

	for _, c := range candidates {
		if c.Confidence > minLabelConfidence {
			if text := titleCase(strings.TrimSpace(c.Text)); text != "" {
				return text
			}
		}
	}
	return UnknownLabel
}

// titleCase uppercases the first letter of each word and lowercases the
// rest, normalizing the mixed casing OCR returns for label text.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			startOfWord = true
			b.WriteRune(r)
		case startOfWord:
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
