package local

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytetide-io/bytetide-backend/internal/config"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := New(&config.LocalStorageConfig{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	content := []byte("sku,title,price\n1001,Widget,9.99\n")
	result, err := s.Upload(ctx, "projects/p1/products.csv", bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("Upload() size = %d, want %d", result.Size, len(content))
	}
	if result.Checksum == "" {
		t.Error("Upload() returned empty checksum")
	}

	reader, err := s.Download(ctx, "projects/p1/products.csv")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	defer reader.Close()

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("downloaded content does not match uploaded content")
	}
}

func TestDownload_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Download(context.Background(), "projects/missing/file.csv")
	if err == nil {
		t.Error("Download() = nil error, want not-found error")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	content := []byte("a,b\n1,2\n")
	if _, err := s.Upload(ctx, "projects/p1/orders.csv", bytes.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	if err := s.Delete(ctx, "projects/p1/orders.csv"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	exists, err := s.Exists(ctx, "projects/p1/orders.csv")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if exists {
		t.Error("file still exists after Delete()")
	}

	// Deleting a missing file is not an error
	if err := s.Delete(ctx, "projects/p1/orders.csv"); err != nil {
		t.Errorf("Delete() of missing file = %v, want nil", err)
	}
}

func TestDeletePrefix(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	content := []byte("a,b\n1,2\n")
	for _, path := range []string{"projects/p1/orders.csv", "projects/p1/products.csv", "projects/p2/orders.csv"} {
		if _, err := s.Upload(ctx, path, bytes.NewReader(content), int64(len(content))); err != nil {
			t.Fatalf("Upload(%s) error: %v", path, err)
		}
	}

	if err := s.DeletePrefix(ctx, "projects/p1/"); err != nil {
		t.Fatalf("DeletePrefix() error: %v", err)
	}

	for path, want := range map[string]bool{
		"projects/p1/orders.csv":   false,
		"projects/p1/products.csv": false,
		"projects/p2/orders.csv":   true,
	} {
		exists, err := s.Exists(ctx, path)
		if err != nil {
			t.Fatalf("Exists(%s) error: %v", path, err)
		}
		if exists != want {
			t.Errorf("Exists(%s) = %v, want %v after DeletePrefix", path, exists, want)
		}
	}

	// An unused prefix is not an error
	if err := s.DeletePrefix(ctx, "projects/p3/"); err != nil {
		t.Errorf("DeletePrefix() of empty prefix = %v, want nil", err)
	}
}

func TestDelete_RemovesEmptyParents(t *testing.T) {
	base := t.TempDir()
	s, err := New(&config.LocalStorageConfig{BasePath: base})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx := context.Background()

	content := []byte("x\n")
	if _, err := s.Upload(ctx, "projects/p1/customers.csv", bytes.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if err := s.Delete(ctx, "projects/p1/customers.csv"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(base, "projects", "p1")); !os.IsNotExist(err) {
		t.Error("empty project directory was not cleaned up")
	}
}

func TestGetURL(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	content := []byte("x\n")
	if _, err := s.Upload(ctx, "projects/p1/customers.csv", bytes.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	url, err := s.GetURL(ctx, "projects/p1/customers.csv", time.Minute)
	if err != nil {
		t.Fatalf("GetURL() error: %v", err)
	}
	if url == "" {
		t.Error("GetURL() returned empty URL")
	}

	if _, err := s.GetURL(ctx, "projects/missing/file.csv", time.Minute); err == nil {
		t.Error("GetURL() for missing file = nil error, want error")
	}
}

func TestGetMetadata(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	content := []byte("email,name\na@example.com,A\n")
	result, err := s.Upload(ctx, "projects/p1/customers.csv", bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	meta, err := s.GetMetadata(ctx, "projects/p1/customers.csv")
	if err != nil {
		t.Fatalf("GetMetadata() error: %v", err)
	}
	if meta.Size != int64(len(content)) {
		t.Errorf("GetMetadata() size = %d, want %d", meta.Size, len(content))
	}
	if meta.Checksum != result.Checksum {
		t.Errorf("GetMetadata() checksum = %q, want %q", meta.Checksum, result.Checksum)
	}
}
