package detection

// CellFor assigns a bounding box to the grid cell containing its center.
//
// The assignment is a boundary scan, not nearest-centroid: the row is the
// smallest index i whose upper boundary HLines[i+1] the center does not
// exceed, defaulting to the last row when none matches; columns work the
// same way against VLines. A box centered exactly on a boundary therefore
// belongs to the cell above/left of it.
//
// Boxes outside the frame are clamped into the grid rather than rejected,
// so a detection is never dropped for straddling the image edge.
func CellFor(box Bounds, bounds BoundarySet) (row, col int) {
	rows := len(bounds.HLines) - 1
	cols := len(bounds.VLines) - 1

	cy := (box.Y1 + box.Y2) / 2
	cx := (box.X1 + box.X2) / 2

	row = rows - 1
	for i, h := range bounds.HLines[1:] {
		if cy <= h {
			row = i
			break
		}
	}

	col = cols - 1
	for i, v := range bounds.VLines[1:] {
		if cx <= v {
			col = i
			break
		}
	}

	return clampInt(row, 0, rows-1), clampInt(col, 0, cols-1)
}
