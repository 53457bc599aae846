package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Default hysteresis thresholds. Shelf photographs sit between clean
// diagrams and noisy scenes; 50/150 keeps shelf boards while discarding
// most label clutter.
const (
	DefaultEdgeThresholdLow  = 50
	DefaultEdgeThresholdHigh = 150
)

// EdgeMap is a binary edge image, indexed Pixels[y][x].
type EdgeMap struct {
	Width  int
	Height int
	Pixels [][]bool
}

// DetectEdges runs Canny-style edge detection and returns a boolean edge
// map sized to the input image.
//
// Pipeline:
//
//  1. Grayscale conversion and Gaussian smoothing (bild's effect.Grayscale
//     and blur.Gaussian with sigma ~1.4) to suppress texture noise.
//  2. Sobel gradients: magnitude and direction per pixel.
//  3. Non-maximum suppression along the gradient direction, thinning
//     edges to single-pixel width.
//  4. Hysteresis: magnitudes above thresholdHigh are strong edges; those
//     between the thresholds survive only next to a strong edge.
//
// Thresholds are on the 0-255 scale. Border pixels are never edges.
func DetectEdges(img image.Image, thresholdLow, thresholdHigh int) *EdgeMap {
	blurred := blur.Gaussian(effect.Grayscale(img), 1.4)

	b := blurred.Bounds()
	width := b.Dx()
	height := b.Dy()

	em := &EdgeMap{Width: width, Height: height, Pixels: make([][]bool, height)}
	for y := range em.Pixels {
		em.Pixels[y] = make([]bool, width)
	}
	if width < 3 || height < 3 {
		return em
	}

	// Luminance plane in [0,1]. Grayscale output has R==G==B.
	lum := make([][]float64, height)
	for y := 0; y < height; y++ {
		lum[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, _, _, _ := blurred.At(x+b.Min.X, y+b.Min.Y).RGBA()
			lum[y][x] = float64(r>>8) / 255.0
		}
	}

	// Sobel gradients.
	sobelX := [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY := [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += lum[py][px] * sobelX[ky+1][kx+1]
					gy += lum[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression.
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[y][x-1], magnitude[y][x+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[y-1][x+1], magnitude[y+1][x-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[y-1][x], magnitude[y+1][x]
			default:
				n1, n2 = magnitude[y-1][x-1], magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Hysteresis thresholding.
	low := float64(thresholdLow) / 255.0
	high := float64(thresholdHigh) / 255.0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val >= high {
				em.Pixels[y][x] = true
				continue
			}
			if val < low {
				continue
			}
			for ky := -1; ky <= 1 && !em.Pixels[y][x]; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					if suppressed[py][px] >= high {
						em.Pixels[y][x] = true
						break
					}
				}
			}
		}
	}

	return em
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
