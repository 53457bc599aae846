package detection

// Grid size limits for the structural path. Detections outside these are
// assumed to be noise rather than real shelf structure.
const (
	maxRows    = 6
	maxColumns = 8

	minCellHeight = 30
	minCellWidth  = 40
)

// Method identifies which inference path produced a grid.
type Method string

const (
	// MethodStructural means the grid came from detected separator lines.
	MethodStructural Method = "structural"

	// MethodFallback means separator detection was inconclusive and the
	// grid was derived from the image aspect ratio.
	MethodFallback Method = "fallback"
)

// GridDimensions is the inferred shelf layout size.
type GridDimensions struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// BoundarySet holds the ordered cell boundary coordinates of a grid.
//
// HLines has Rows+1 entries and VLines Columns+1; both are strictly
// increasing with the first entry pinned to 0 and the last to the image
// height (HLines) or width (VLines).
type BoundarySet struct {
	HLines []int `json:"h_lines"`
	VLines []int `json:"v_lines"`
}

// GridResult is the outcome of grid inference.
type GridResult struct {
	Dims   GridDimensions `json:"grid_dimensions"`
	Bounds BoundarySet    `json:"boundaries"`
	Method Method         `json:"detection_method"`
}

// InferGrid derives a shelf grid from an edge map.
//
// The structural path runs separator detection and validates the resulting
// grid; when validation fails the deterministic aspect-ratio fallback takes
// over. InferGrid is total: it always returns a grid with at least one row
// and one column and never reports an error to the caller.
func InferGrid(edges [][]bool, width, height int) *GridResult {
	return InferGridFromSeparators(DetectSeparators(edges, width, height), width, height)
}

// InferGridFromSeparators builds and validates a grid from pre-computed
// separator lines. Exposed separately so callers with their own boundary
// source (or tests) can skip edge processing.
func InferGridFromSeparators(sep *SeparatorLines, width, height int) *GridResult {
	if r, ok := structuralGrid(sep, width, height); ok {
		return r
	}
	return fallbackGrid(width, height)
}

// structuralGrid pins image edges onto the separator lists and checks the
// result against the sanity limits. Returns ok=false when the detected
// structure is degenerate, over-segmented, or under-segmented.
func structuralGrid(sep *SeparatorLines, width, height int) (*GridResult, bool) {
	hLines := pinBoundaries(sep.ShelfYs, height)
	vLines := pinBoundaries(sep.ProductXs, width)

	rows := len(hLines) - 1
	cols := len(vLines) - 1

	if rows < 1 || cols < 1 || rows > maxRows || cols > maxColumns {
		return nil, false
	}
	// A 1×N or N×1 sliver means the detector found essentially no real
	// structure in one direction.
	if (rows == 1 && cols <= 2) || (cols == 1 && rows <= 2) {
		return nil, false
	}

	avgCellH := float64(height) / float64(rows)
	avgCellW := float64(width) / float64(cols)
	if avgCellH < minCellHeight || avgCellH > 0.8*float64(height) {
		return nil, false
	}
	if avgCellW < minCellWidth || avgCellW > 0.7*float64(width) {
		return nil, false
	}

	return &GridResult{
		Dims:   GridDimensions{Rows: rows, Columns: cols},
		Bounds: BoundarySet{HLines: hLines, VLines: vLines},
		Method: MethodStructural,
	}, true
}

// pinBoundaries prepends 0 and appends limit to the separator positions,
// dropping separators on or outside the image edges so the result stays
// strictly increasing.
func pinBoundaries(separators []int, limit int) []int {
	lines := make([]int, 0, len(separators)+2)
	lines = append(lines, 0)
	for _, s := range separators {
		if s > 0 && s < limit && s > lines[len(lines)-1] {
			lines = append(lines, s)
		}
	}
	return append(lines, limit)
}

// fallbackGrid derives grid dimensions from the image aspect ratio alone
// and spaces the boundaries evenly. Six aspect bands cover the range from
// panoramic single-shelf strips to tall multi-shelf photographs.
func fallbackGrid(width, height int) *GridResult {
	ar := float64(width) / float64(height)

	var rows, cols int
	switch {
	case ar > 2.5: // very wide: one long shelf
		rows = 1
		cols = clampInt(width/150, 3, 6)
	case ar > 1.8:
		rows = 2
		cols = clampInt(width/120, 3, 6)
	case ar > 1.2:
		rows = 3
		if height < 500 {
			rows = 2
		}
		cols = clampInt(width/100, 3, 5)
	case ar > 0.8: // near-square
		rows = 3
		cols = clampInt(width/150, 2, 4)
	default: // tall
		rows = clampInt(height/150, 3, 4)
		cols = clampInt(width/200, 2, 3)
	}

	// Tiny images cannot carry more boundaries than pixels.
	rows = clampInt(rows, 1, max(1, height))
	cols = clampInt(cols, 1, max(1, width))

	hLines := make([]int, rows+1)
	for i := 0; i <= rows; i++ {
		hLines[i] = i * height / rows
	}
	vLines := make([]int, cols+1)
	for i := 0; i <= cols; i++ {
		vLines[i] = i * width / cols
	}

	return &GridResult{
		Dims:   GridDimensions{Rows: rows, Columns: cols},
		Bounds: BoundarySet{HLines: hLines, VLines: vLines},
		Method: MethodFallback,
	}
}

// clampInt constrains v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
