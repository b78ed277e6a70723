// =============================================================================
// Sales Data Processor - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a processing run:
//   - Input file discovery
//   - Output file naming
//   - Archival of processed input files
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the archive directory after successful processing
//   - Failed files remain in their original location
//   - An existing archive entry is never overwritten; a numeric suffix is added
//
// OUTPUT NAMING:
//   - Report names are reserved before writing, so two inputs with the same
//     base name never share a report, even when processed at the same time
//   - A name already on disk or reserved in this run gets a numeric suffix
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the processor.
type FileManager struct {
	// InputDir is the directory scanned for input files.
	InputDir string

	// OutputDir is the directory where reports are written.
	OutputDir string

	// ArchiveDir receives processed input files. Archival is disabled when empty.
	ArchiveDir string

	mu       sync.Mutex
	reserved map[string]bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, archiveDir string) *FileManager {
	return &FileManager{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
	}
}

// EnsureDirectories creates the output and archive directories.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.ArchiveDir != "" {
		dirs = append(dirs, fm.ArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles returns the regular files in InputDir matching pattern,
// sorted by name. An empty pattern defaults to "*.txt".
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.txt"
	}

	if _, err := os.Stat(fm.InputDir); err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			result = append(result, file)
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed input file into ArchiveDir and returns
// its new path. When archival is disabled the original path is returned.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	if err := os.MkdirAll(fm.ArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := uniquePath(filepath.Join(fm.ArchiveDir, filepath.Base(filePath)))

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// uniquePath appends _1, _2, ... before the extension until path is unused.
func uniquePath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return nextFree(base, func(candidate string) bool {
		return !FileExists(candidate + ext)
	})
}

// nextFree returns base, or base_1, base_2, ... whichever free accepts first.
func nextFree(base string, free func(string) bool) string {
	if free(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if free(candidate) {
			return candidate
		}
	}
}

// =============================================================================
// OUTPUT RESERVATION
// =============================================================================

// ReserveOutputName claims a report base name in OutputDir for the given
// formats (file extensions). The name is unique among the names reserved
// through this FileManager and does not collide with an existing report.
// Safe for concurrent use.
func (fm *FileManager) ReserveOutputName(baseName string, formats []string) string {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if fm.reserved == nil {
		fm.reserved = make(map[string]bool)
	}

	name := nextFree(baseName, func(candidate string) bool {
		if fm.reserved[candidate] {
			return false
		}
		for _, format := range formats {
			if FileExists(filepath.Join(fm.OutputDir, candidate+"."+format)) {
				return false
			}
		}
		return true
	})

	fm.reserved[name] = true
	return name
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a file name format. The result has no
// extension; each report writer adds its own.
//
// Placeholders:
//   {uuid}      - A random UUID
//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//   {date}      - Current date (YYYYMMDD)
//   {time}      - Current time (HHMMSS)
//   {original}  - Input file name without extension
//   any key of params, written as {key}; params win over the names above
//
// Substitution is a single pass: text inserted by a placeholder is never
// expanded again.
//
// EXAMPLE:
//   format: "{original}_{timestamp}"
//   params: {"original": "sales_data"}
//   output: "sales_data_20241201_143022"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	placeholders := make([]string, 0, len(replacements))
	for placeholder := range replacements {
		placeholders = append(placeholders, placeholder)
	}
	sort.Strings(placeholders)

	pairs := make([]string, 0, 2*len(placeholders))
	for _, placeholder := range placeholders {
		pairs = append(pairs, placeholder, replacements[placeholder])
	}

	result := strings.NewReplacer(pairs...).Replace(format)

	// Path separators would escape the output directory.
	result = strings.NewReplacer("/", "_", "\\", "_").Replace(result)
	if result == "" {
		result = uuid.New().String()
	}

	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
