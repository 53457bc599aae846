package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultGridColor is the overlay color for detected separator lines.
const DefaultGridColor = "#00c8ff"

// RenderGridOverlay draws grid boundaries and cell labels over an image
// and returns the result as PNG bytes.
//
// hLines and vLines are the boundary coordinates of an inferred grid,
// first and last pinned to the image edges. Pinned edge lines are drawn
// green; interior separator lines use colorHex (any form colorful.Hex
// accepts, e.g. "#ff8800"). Bad or empty color strings fall back to
// DefaultGridColor. Each cell is labeled "R<row>C<col>", 1-based, to match
// how merchandisers read planograms.
func RenderGridOverlay(img image.Image, hLines, vLines []int, colorHex string) ([]byte, error) {
	if len(hLines) < 2 || len(vLines) < 2 {
		return nil, fmt.Errorf("grid overlay needs at least 2 boundaries per axis, got %d x %d", len(hLines), len(vLines))
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	lineColor := parseOverlayColor(colorHex)
	edgeColor := color.RGBA{0, 255, 0, 255}

	for i, y := range hLines {
		c := lineColor
		if i == 0 || i == len(hLines)-1 {
			c = edgeColor
		}
		drawHLine(out, y, width, c)
	}
	for i, x := range vLines {
		c := lineColor
		if i == 0 || i == len(vLines)-1 {
			c = edgeColor
		}
		drawVLine(out, x, height, c)
	}

	labelFg := color.RGBA{255, 255, 255, 255}
	labelBg := color.RGBA{0, 0, 0, 180}
	for row := 0; row < len(hLines)-1; row++ {
		for col := 0; col < len(vLines)-1; col++ {
			cx := (vLines[col] + vLines[col+1]) / 2
			cy := (hLines[row] + hLines[row+1]) / 2
			label := fmt.Sprintf("R%dC%d", row+1, col+1)
			drawLabel(out, cx-len(label)*2, cy-3, label, labelFg, labelBg)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

// parseOverlayColor turns a hex string into an opaque RGBA, falling back
// to DefaultGridColor on anything colorful cannot parse.
func parseOverlayColor(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(DefaultGridColor)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawHLine draws a 2px horizontal line at y, clipped to the image.
func drawHLine(img *image.RGBA, y, width int, c color.RGBA) {
	for dy := 0; dy < 2; dy++ {
		py := y + dy
		if py < 0 || py >= img.Bounds().Dy() {
			continue
		}
		for x := 0; x < width; x++ {
			img.SetRGBA(x, py, c)
		}
	}
}

// drawVLine draws a 2px vertical line at x, clipped to the image.
func drawVLine(img *image.RGBA, x, height int, c color.RGBA) {
	for dx := 0; dx < 2; dx++ {
		px := x + dx
		if px < 0 || px >= img.Bounds().Dx() {
			continue
		}
		for y := 0; y < height; y++ {
			img.SetRGBA(px, y, c)
		}
	}
}

// drawLabel draws a small text label with a 3x5 pixel font. Only the
// characters needed for cell labels are defined; anything else advances
// the cursor without drawing.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		'R': {"110", "101", "110", "101", "101"},
		'C': {"011", "100", "100", "100", "011"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.SetRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				px, py := cx+col, y+row
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					img.SetRGBA(px, py, fg)
				}
			}
		}
		cx += charWidth
	}
}
