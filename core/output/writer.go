// Package output turns a finished clip into something outside the process:
// a note-creation deep link or a rendered note file on disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/obsidit/core/paths"
)

// Writer writes rendered notes to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// WriteNote writes data to <OutputDir>/<root>/<title><ext>, the same place
// the deep link would create the note inside the vault. The file is written
// to a temporary name first and renamed into place.
func (w *Writer) WriteNote(root, title string, data []byte, ext string) (string, error) {
	name := strings.TrimSpace(paths.StripTitle(title))
	if name == "" {
		return "", fmt.Errorf("empty note title")
	}

	rel := paths.JoinPath([]string{strings.Trim(root, "/"), name + ext}, "/")
	fullPath := filepath.Join(w.OutputDir, filepath.FromSlash(strings.TrimPrefix(rel, "/")))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".obsidit-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("renaming into %s: %w", fullPath, err)
	}
	return fullPath, nil
}
