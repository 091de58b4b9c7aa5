// Package validation provides input validation for customer file uploads.
// Validators run before any data is persisted so invalid uploads are rejected
// early without consuming storage.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MaxUploadSize is the default per-file size cap when config does not override it (50MB)
	MaxUploadSize = 50 * 1024 * 1024
)

// ValidateCSVUpload checks a single uploaded file's name, path safety and
// declared size. The error messages surface verbatim in API responses, so
// keep them customer-readable.
func ValidateCSVUpload(filename string, size int64, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = MaxUploadSize
	}

	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("file name cannot be empty")
	}

	if err := ValidateFilename(filename); err != nil {
		return err
	}

	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return fmt.Errorf("only CSV files are accepted")
	}

	if size <= 0 {
		return fmt.Errorf("file is empty")
	}

	if size > maxSize {
		return fmt.Errorf("File size must be less than %dMB", maxSize/(1024*1024))
	}

	return nil
}

// ValidateFilename checks for path traversal in customer-supplied file names.
// Uploaded names become part of storage object keys, so separators and parent
// references are rejected outright rather than sanitized.
func ValidateFilename(name string) error {
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("file name must not contain path separators")
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("file name must not contain parent directory references")
	}
	return nil
}
