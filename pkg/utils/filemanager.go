// =============================================================================
// SAF-T Export - File Manager Utility
// =============================================================================
//
// This module handles the file side of an export run:
//   - Writing the generated audit file under its suggested name
//   - Archiving record workbooks after successful processing
//   - Directory management
//
// ARCHIVAL STRATEGY:
//   - Input workbooks are moved to the input archive after a successful
//     export; failed workbooks stay where they are.
//   - Name collisions (same business, same period, re-run) are resolved by
//     suffixing a run UUID rather than overwriting earlier exports.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileManager handles file operations for the exporter.
type FileManager struct {
	// InputDir is the directory where record workbooks are placed.
	InputDir string

	// OutputDir is the directory where audit files are written.
	OutputDir string

	// InputArchiveDir is the directory for archived workbooks.
	InputArchiveDir string
}

// NewFileManager creates a FileManager over the configured directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// EnsureDirectories creates the managed directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteOutput writes an audit file into the output directory under the
// suggested name, uniquified on collision. Returns the path written.
func (fm *FileManager) WriteOutput(filename string, data []byte) (string, error) {
	path := fm.uniquePath(filepath.Join(fm.OutputDir, filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

// ArchiveInput moves a processed workbook into the input archive.
func (fm *FileManager) ArchiveInput(path string) (string, error) {
	target := fm.uniquePath(filepath.Join(fm.InputArchiveDir, filepath.Base(path)))

	// Rename first; fall back to copy+remove across filesystems.
	if err := os.Rename(path, target); err == nil {
		return target, nil
	}
	if err := copyFile(path, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove %s after archiving: %w", path, err)
	}
	return target, nil
}

// uniquePath returns path unchanged when it is free, otherwise a variant
// with a run UUID inserted before the extension.
func (fm *FileManager) uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", base, uuid.NewString(), ext)
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
