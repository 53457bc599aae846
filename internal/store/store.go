// Package store persists products and planograms as JSON files, one file
// per record, keyed by ID. Stores are safe for concurrent use; writers
// hold an exclusive lock for the whole read-modify-write of an update.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no record exists for the requested ID.
var ErrNotFound = errors.New("not found")

// slugify turns a display name into a URL-friendly ID prefix.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "untitled"
	}
	return s
}

// validID rejects IDs that could escape the storage directory.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/\\") && id != "." && id != ".."
}

// recordPath resolves an ID to its JSON file inside dir.
func recordPath(dir, id string) string {
	return filepath.Join(dir, id+".json")
}

// readRecord loads and unmarshals one record file.
func readRecord(dir, id string, v interface{}) error {
	if !validID(id) {
		return ErrNotFound
	}
	data, err := os.ReadFile(recordPath(dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read record %s: %w", id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse record %s: %w", id, err)
	}
	return nil
}

// writeRecord marshals and persists one record file.
func writeRecord(dir, id string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", id, err)
	}
	if err := os.WriteFile(recordPath(dir, id), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record %s: %w", id, err)
	}
	return nil
}

// listIDs returns the IDs of all records in dir, in directory order.
func listIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
