// Package compliance scores detected shelf contents against a planogram.
//
// A planogram declares, per (row, column) position, which product should be
// on the shelf. The engine partitions one image's detections into a
// position grid, classifies every declared position as correct, out of
// stock, undetected, or holding the wrong product, and produces an
// aggregate compliance score.
//
// Scoring is planogram-driven: positions not declared in the planogram are
// ignored entirely, so extra or unexpected detections never create issues
// or move the score.
//
// Product names are compared through a Normalizer that folds case,
// punctuation, and known brand synonyms, so "Coca-Cola" and "coke" match.
package compliance
