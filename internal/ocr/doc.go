// Package ocr reads shelf-edge price labels.
//
// When the detector flags an empty shelf position, the strip of shelf
// directly below the detection box usually carries the printed label of
// the product that belongs there. This package crops that strip and runs
// it through Tesseract, applying a fixed confidence policy: the first
// candidate above the threshold names the missing item; otherwise the
// item is reported as unknown.
//
// The Tesseract dependency sits behind the TextReader interface so the
// policy (and everything above it) can be tested without a Tesseract
// installation.
package ocr
