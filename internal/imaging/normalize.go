package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Normalization policy. Detector inference and grid heuristics were tuned
// around ~600px-wide shelf photographs; images already near that size are
// left alone to avoid a pointless resample.
const (
	normalizeTargetWidth = 600
	normalizeSkipBuffer  = 50
	normalizeMinHeight   = 400
	normalizeMaxHeight   = 1200
)

// NormalizeResult is a photograph scaled to the detector's working size
// plus everything needed to map results back to original pixels.
type NormalizeResult struct {
	// Image is the normalized image (the original when Resized is false).
	Image image.Image

	// Width and Height are the normalized dimensions.
	Width  int
	Height int

	// OriginalWidth and OriginalHeight are the input dimensions.
	OriginalWidth  int
	OriginalHeight int

	// ScaleX and ScaleY convert normalized coordinates back to
	// original-image coordinates.
	ScaleX float64
	ScaleY float64

	// Resized reports whether a resample actually happened.
	Resized bool
}

// Normalize scales an image toward the target working width while keeping
// its aspect ratio.
//
// Images with either dimension within the skip buffer of the target are
// returned unchanged. Otherwise the longer side is set to the target and
// the resulting height is clamped to [normalizeMinHeight,
// normalizeMaxHeight], adjusting the width to preserve aspect.
func Normalize(img image.Image) *NormalizeResult {
	b := img.Bounds()
	width := b.Dx()
	height := b.Dy()

	res := &NormalizeResult{
		Image:          img,
		Width:          width,
		Height:         height,
		OriginalWidth:  width,
		OriginalHeight: height,
		ScaleX:         1,
		ScaleY:         1,
	}

	if abs(width-normalizeTargetWidth) <= normalizeSkipBuffer ||
		abs(height-normalizeTargetWidth) <= normalizeSkipBuffer {
		return res
	}

	aspect := float64(width) / float64(height)
	var newWidth, newHeight int
	if width > height {
		newWidth = normalizeTargetWidth
		newHeight = int(float64(normalizeTargetWidth) / aspect)
	} else {
		newHeight = normalizeTargetWidth
		newWidth = int(float64(normalizeTargetWidth) * aspect)
	}

	if newHeight < normalizeMinHeight {
		newHeight = normalizeMinHeight
		newWidth = int(float64(normalizeMinHeight) * aspect)
	} else if newHeight > normalizeMaxHeight {
		newHeight = normalizeMaxHeight
		newWidth = int(float64(normalizeMaxHeight) * aspect)
	}

	res.Image = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	res.Width = newWidth
	res.Height = newHeight
	res.ScaleX = float64(width) / float64(newWidth)
	res.ScaleY = float64(height) / float64(newHeight)
	res.Resized = true
	return res
}

// ImageInfo summarizes the coordinate spaces of one analysis for API
// responses.
type ImageInfo struct {
	OriginalWidth    int     `json:"original_width"`
	OriginalHeight   int     `json:"original_height"`
	NormalizedWidth  int     `json:"normalized_width"`
	NormalizedHeight int     `json:"normalized_height"`
	AspectRatio      float64 `json:"aspect_ratio"`
}

// Info reports the original and normalized dimensions with the original
// aspect ratio rounded to two decimals.
func (r *NormalizeResult) Info() ImageInfo {
	ratio := 0.0
	if r.OriginalHeight > 0 {
		ratio = math.Round(float64(r.OriginalWidth)/float64(r.OriginalHeight)*100) / 100
	}
	return ImageInfo{
		OriginalWidth:    r.OriginalWidth,
		OriginalHeight:   r.OriginalHeight,
		NormalizedWidth:  r.Width,
		NormalizedHeight: r.Height,
		AspectRatio:      ratio,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
