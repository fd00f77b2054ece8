package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactWriter emits output artifacts. Implementations must tolerate
// concurrent calls for distinct paths.
type ArtifactWriter interface {
	// WriteText writes final markup output.
	WriteText(relativePath, content string) error

	// WriteJSON writes structured output as JSON.
	WriteJSON(relativePath string, value any) error
}

// FSWriter writes artifacts under one output root directory.
type FSWriter struct {
	root string
}

// NewFSWriter creates a writer rooted at dir.
func NewFSWriter(dir string) *FSWriter {
	return &FSWriter{root: dir}
}

func (w *FSWriter) WriteText(relativePath, content string) error {
	fullPath, err := w.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

func (w *FSWriter) WriteJSON(relativePath string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output artifact: %w", err)
	}
	return w.WriteText(relativePath, string(data)+"\n")
}

// resolve keeps every artifact under the output root (no path traversal).
func (w *FSWriter) resolve(relativePath string) (string, error) {
	cleanRel := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(cleanRel) || strings.HasPrefix(cleanRel, "..") {
		return "", errors.New("output path must be relative to the output root")
	}
	fullPath := filepath.Join(w.root, cleanRel)
	rel, err := filepath.Rel(w.root, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.New("output path escapes the output root")
	}
	return fullPath, nil
}
