// Package imaging provides the image plumbing around grid inference:
// decoding uploads, normalizing photographs to the detector's working
// size, producing edge maps for separator detection, rendering debug
// overlays, and persisting analysis artifacts.
//
// The normalization policy is the one contract other packages rely on:
// detector boxes, grid boundaries, and cell assignments all live in the
// normalized coordinate space, and NormalizeResult carries the scale
// factors needed to translate results back to original-image pixels.
package imaging
