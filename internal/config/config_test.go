package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.DefaultBackend != "local" {
		t.Errorf("storage.default_backend = %q, want local", cfg.Storage.DefaultBackend)
	}
	if cfg.Uploads.MaxFileSizeMB != 50 {
		t.Errorf("uploads.max_file_size_mb = %d, want 50", cfg.Uploads.MaxFileSizeMB)
	}
	if cfg.Invitations.ExpiryDays != 7 {
		t.Errorf("invitations.expiry_days = %d, want 7", cfg.Invitations.ExpiryDays)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BT_DATABASE_HOST", "db.internal")
	t.Setenv("BT_SERVER_PORT", "9999")
	t.Setenv("BT_UPLOADS_MAX_FILE_SIZE_MB", "10")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Uploads.MaxFileSizeMB != 10 {
		t.Errorf("uploads.max_file_size_mb = %d, want 10", cfg.Uploads.MaxFileSizeMB)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 3000
storage:
  default_backend: s3
  s3:
    region: eu-west-1
    bucket: bytetide-files
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Storage.S3.Bucket != "bytetide-files" {
		t.Errorf("s3.bucket = %q, want bytetide-files", cfg.Storage.S3.Bucket)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_EncryptionKeyEnv(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Security.EncryptionKey != "0123456789abcdef0123456789abcdef" {
		t.Error("ENCRYPTION_KEY env var was not picked up")
	}
}

func TestValidate_InvalidBackend(t *testing.T) {
	t.Setenv("BT_STORAGE_DEFAULT_BACKEND", "ftp")

	if _, err := Load(""); err == nil {
		t.Error("expected validation error for unsupported storage backend")
	}
}

func TestGetDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "bt", Password: "pw",
		Name: "bytetide", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=bt password=pw dbname=bytetide sslmode=disable"
	if got := d.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
