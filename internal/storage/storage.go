// Package storage defines the Storage interface and common types for the
// object stores that hold customer data files (platform exports and custom
// CSV uploads).
//
// New backends are added by implementing the Storage interface and registering
// with the factory via an init() function in the backend's own package:
//
//	func init() {
//	    storage.Register("mybackend", func(cfg *config.Config) (Storage, error) {
//	        return New(cfg)
//	    })
//	}
//
// The main package imports each backend with a blank import to trigger init(),
// so adding a backend requires no changes to the factory or main package
// beyond a blank import in cmd/server/main.go.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage defines the interface for all storage backends
type Storage interface {
	// Upload stores a file and returns the storage result with path and checksum
	Upload(ctx context.Context, path string, reader io.Reader, size int64) (*UploadResult, error)

	// Download retrieves a file and returns a reader
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, path string) error

	// DeletePrefix removes every object stored under a key prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// GetURL returns a direct download URL.
	// For cloud storage, this generates a signed URL valid for the specified TTL.
	GetURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// Exists checks if a file exists at the specified path
	Exists(ctx context.Context, path string) (bool, error)

	// GetMetadata retrieves file metadata without downloading the entire file
	GetMetadata(ctx context.Context, path string) (*FileMetadata, error)
}

// UploadResult contains information about an uploaded file
type UploadResult struct {
	// Path is the storage path where the file was stored
	Path string

	// Size is the file size in bytes
	Size int64

	// Checksum is the SHA256 hash of the file contents
	Checksum string
}

// FileMetadata contains metadata about a stored file
type FileMetadata struct {
	Path         string
	Size         int64
	Checksum     string
	LastModified time.Time
}

// ProjectFilePrefix is the key prefix shared by all of a project's uploaded
// files, so a compensating delete can clear them in one DeletePrefix call.
func ProjectFilePrefix(projectID string) string {
	return "projects/" + projectID + "/"
}

// ProjectFilePath builds the canonical object key for a file belonging to a
// project.
func ProjectFilePath(projectID, filename string) string {
	return ProjectFilePrefix(projectID) + filename
}
