package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	"image/jpeg"
	_ "image/png" // Register PNG format decoder
	"os"
	"path/filepath"
)

// Decode decodes uploaded image bytes. Supported formats are PNG, JPEG,
// and GIF; the returned format string is the decoder's name.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Workspace persists analysis artifacts (input copies, normalized images,
// debug overlays) under a single output directory and hands back paths
// relative to it, suitable for serving over HTTP.
type Workspace struct {
	dir string
}

// NewWorkspace creates the output directory if needed.
func NewWorkspace(dir string) (*Workspace, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace's root directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// SaveBytes writes raw bytes under the given name and returns the name.
func (w *Workspace) SaveBytes(name string, data []byte) (string, error) {
	if err := os.WriteFile(w.Path(name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return name, nil
}

// SaveJPEG encodes an image as JPEG under the given name and returns the
// name. Analysis artifacts use JPEG to keep saved shelf photographs small.
func (w *Workspace) SaveJPEG(name string, img image.Image) (string, error) {
	f, err := os.Create(w.Path(name))
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return name, nil
}

// Path resolves an artifact name to its absolute location. Name is
// sanitized to its base component so callers cannot escape the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}
