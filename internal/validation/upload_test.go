package validation

import (
	"strings"
	"testing"
)

func TestValidateCSVUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		maxSize  int64
		wantErr  string
	}{
		{
			name:     "valid csv",
			filename: "customers.csv",
			size:     1024,
		},
		{
			name:     "uppercase extension accepted",
			filename: "ORDERS.CSV",
			size:     1024,
		},
		{
			name:     "wrong extension",
			filename: "products.xlsx",
			size:     1024,
			wantErr:  "only CSV files are accepted",
		},
		{
			name:     "no extension",
			filename: "products",
			size:     1024,
			wantErr:  "only CSV files are accepted",
		},
		{
			name:     "empty name",
			filename: "   ",
			size:     1024,
			wantErr:  "file name cannot be empty",
		},
		{
			name:     "empty file",
			filename: "customers.csv",
			size:     0,
			wantErr:  "file is empty",
		},
		{
			name:     "over default limit",
			filename: "customers.csv",
			size:     MaxUploadSize + 1,
			wantErr:  "File size must be less than 50MB",
		},
		{
			name:     "exactly at limit",
			filename: "customers.csv",
			size:     MaxUploadSize,
		},
		{
			name:     "path separator rejected",
			filename: "exports/customers.csv",
			size:     1024,
			wantErr:  "must not contain path separators",
		},
		{
			name:     "parent reference rejected",
			filename: "..customers.csv",
			size:     1024,
			wantErr:  "must not contain parent directory references",
		},
		{
			name:     "custom limit respected",
			filename: "customers.csv",
			size:     11 * 1024 * 1024,
			maxSize:  10 * 1024 * 1024,
			wantErr:  "File size must be less than 10MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCSVUpload(tt.filename, tt.size, tt.maxSize)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain name", "customers.csv", false},
		{"spaces ok", "my customers.csv", false},
		{"forward slash", "a/b.csv", true},
		{"backslash", "a\\b.csv", true},
		{"parent reference", "..", true},
		{"embedded parent", "a..b.csv", true},
		{"dot", ".", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
