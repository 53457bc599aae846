package detection

import "sort"

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner, (X2, Y2) the bottom-right.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// SeparatorLines holds candidate separator positions found in an edge map.
//
// ShelfYs are the vertical pixel offsets of horizontal lines (shelf boards),
// ProductXs the horizontal offsets of vertical lines (product dividers).
// Both lists are sorted ascending with near-duplicates merged.
type SeparatorLines struct {
	ShelfYs   []int `json:"shelf_ys"`
	ProductXs []int `json:"product_xs"`
}

// DetectSeparators finds strong horizontal and vertical separator lines in
// a binary edge map.
//
// Parameters:
//   - edges: edge map indexed as edges[y][x], true where an edge pixel is.
//   - width, height: dimensions of the edge map in pixels.
//
// # Algorithm
//
// For horizontal separators:
//
//  1. Morphological opening with a wide, 1px-tall structuring element
//     (width max(20, imageWidth/15)) keeps only edge runs long enough to
//     be shelf boards.
//  2. Connected components of the opened map become candidate lines; each
//     component must span more than 0.4× the image width and contain more
//     than 0.3× the image width in edge pixels (pixel count stands in for
//     line strength).
//  3. Surviving components contribute their vertical bounding-box center.
//  4. Centers are sorted and merged greedily left to right: a center closer
//     than 0.15× the image height to the previously kept one is dropped.
//
// Vertical separators mirror the process with a 1px-wide, tall element
// (height max(15, imageHeight/20)), extent threshold 0.25× height, density
// threshold 0.15× height, and merge spacing 0.08× width.
//
// The strict thresholds are deliberate: shelf photographs are full of short
// edge fragments from products and labels, and a missed separator is
// recoverable (the grid falls back) while a false one is not.
func DetectSeparators(edges [][]bool, width, height int) *SeparatorLines {
	if width <= 0 || height <= 0 {
		return &SeparatorLines{ShelfYs: []int{}, ProductXs: []int{}}
	}

	hKernel := max(20, width/15)
	opened := openHorizontal(edges, width, height, hKernel)
	shelfYs := make([]int, 0)
	for _, comp := range connectedComponents(opened, width, height) {
		b, area := componentBounds(comp)
		w := b.X2 - b.X1 + 1
		h := b.Y2 - b.Y1 + 1
		if float64(w) > float64(width)*0.4 && float64(area) > float64(width)*0.3 {
			shelfYs = append(shelfYs, b.Y1+h/2)
		}
	}

	vKernel := max(15, height/20)
	opened = openVertical(edges, width, height, vKernel)
	productXs := make([]int, 0)
	for _, comp := range connectedComponents(opened, width, height) {
		b, area := componentBounds(comp)
		w := b.X2 - b.X1 + 1
		h := b.Y2 - b.Y1 + 1
		if float64(h) > float64(height)*0.25 && float64(area) > float64(height)*0.15 {
			productXs = append(productXs, b.X1+w/2)
		}
	}

	return &SeparatorLines{
		ShelfYs:   mergeClose(shelfYs, float64(height)*0.15),
		ProductXs: mergeClose(productXs, float64(width)*0.08),
	}
}

// openHorizontal applies a morphological opening with a k×1 structuring
// element: a pixel survives only as part of a horizontal run of at least
// k consecutive edge pixels. Erosion followed by dilation with a 1-D
// element is equivalent to this run-length test.
func openHorizontal(edges [][]bool, width, height, k int) [][]bool {
	out := make([][]bool, height)
	for y := 0; y < height; y++ {
		out[y] = make([]bool, width)
		runStart := -1
		for x := 0; x <= width; x++ {
			if x < width && edges[y][x] {
				if runStart < 0 {
					runStart = x
				}
				continue
			}
			if runStart >= 0 && x-runStart >= k {
				for i := runStart; i < x; i++ {
					out[y][i] = true
				}
			}
			runStart = -1
		}
	}
	return out
}

// openVertical is the 1×k counterpart of openHorizontal.
func openVertical(edges [][]bool, width, height, k int) [][]bool {
	out := make([][]bool, height)
	for y := 0; y < height; y++ {
		out[y] = make([]bool, width)
	}
	for x := 0; x < width; x++ {
		runStart := -1
		for y := 0; y <= height; y++ {
			if y < height && edges[y][x] {
				if runStart < 0 {
					runStart = y
				}
				continue
			}
			if runStart >= 0 && y-runStart >= k {
				for i := runStart; i < y; i++ {
					out[i][x] = true
				}
			}
			runStart = -1
		}
	}
	return out
}

// connectedComponents groups set pixels of a binary map into 8-connected
// components using iterative flood fill. Components smaller than 10 pixels
// are discarded as noise.
func connectedComponents(m [][]bool, width, height int) [][]Point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	comps := make([][]Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !m[y][x] || visited[y][x] {
				continue
			}
			comp := make([]Point, 0)
			floodFill(m, visited, x, y, width, height, &comp)
			if len(comp) >= 10 {
				comps = append(comps, comp)
			}
		}
	}
	return comps
}

// floodFill performs stack-based flood fill from a starting point,
// marking visited pixels and appending them to comp. 8-connectivity.
func floodFill(m, visited [][]bool, startX, startY, width, height int, comp *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !m[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*comp = append(*comp, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// componentBounds returns the bounding box of a component and its pixel
// count. The count is the density proxy used by the separator filters.
func componentBounds(comp []Point) (Bounds, int) {
	b := Bounds{X1: comp[0].X, Y1: comp[0].Y, X2: comp[0].X, Y2: comp[0].Y}
	for _, p := range comp[1:] {
		if p.X < b.X1 {
			b.X1 = p.X
		}
		if p.X > b.X2 {
			b.X2 = p.X
		}
		if p.Y < b.Y1 {
			b.Y1 = p.Y
		}
		if p.Y > b.Y2 {
			b.Y2 = p.Y
		}
	}
	return b, len(comp)
}

// mergeClose sorts positions and keeps the first of each cluster: a
// position closer than minSpacing to the previously kept one is dropped.
// Greedy left-to-right merge, not centroid averaging.
func mergeClose(positions []int, minSpacing float64) []int {
	if len(positions) == 0 {
		return []int{}
	}
	sorted := make([]int, len(positions))
	copy(sorted, positions)
	sort.Ints(sorted)

	kept := []int{sorted[0]}
	for _, p := range sorted[1:] {
		if float64(p-kept[len(kept)-1]) >= minSpacing {
			kept = append(kept, p)
		}
	}
	return kept
}
