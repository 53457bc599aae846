// Package detection infers shelf grid structure from image geometry.
//
// The package turns a binary edge map of a retail shelf photograph into a
// rectangular row/column layout, then assigns detected product boxes to
// cells of that layout. It contains three cooperating pieces:
//
//   - Separator detection: morphological opening isolates long horizontal
//     and vertical edge runs (shelf boards and product dividers), which are
//     filtered, deduplicated, and merged into candidate separator lines.
//   - Grid inference: separator lines become cell boundaries and are
//     validated against sanity limits. When validation fails, a
//     deterministic fallback derives the grid from the image aspect ratio
//     alone, so inference always succeeds.
//   - Cell assignment: a bounding box is mapped to the (row, column) cell
//     containing its center, clamped to the grid.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Rows are numbered top to bottom, columns left to right, both 0-based
//
// # Boundary Invariants
//
// Every BoundarySet produced by this package satisfies:
//   - HLines and VLines are strictly increasing
//   - HLines[0] == 0 and HLines[len-1] == image height
//   - VLines[0] == 0 and VLines[len-1] == image width
//   - len(HLines) == rows+1 and len(VLines) == columns+1
//
// # Determinism
//
// No function in this package uses randomness or global state. Identical
// inputs always produce identical grids, including on the fallback path.
package detection
