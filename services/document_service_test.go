package services

import (
	"errors"
	"testing"

	"github.com/sevap8/ai-platform/internal/config"
)

func testService() *DocumentService {
	return &DocumentService{
		cfg: &config.Config{
			MaxFileSize:       1000,
			AllowedExtensions: []string{".txt", ".pdf", ".xlsx"},
		},
	}
}

func TestValidateUpload(t *testing.T) {
	s := testService()

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{"allowed extension", "notes.txt", 100, nil},
		{"uppercase extension", "REPORT.PDF", 100, nil},
		{"disallowed extension", "script.exe", 100, ErrExtensionNotAllowed},
		{"no extension", "README", 100, ErrExtensionNotAllowed},
		{"too large", "big.pdf", 1001, ErrFileTooLarge},
		{"at the limit", "edge.pdf", 1000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateUpload(tt.filename, tt.size)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateUpload(%q, %d) = %v, want nil", tt.filename, tt.size, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateUpload(%q, %d) = %v, want %v", tt.filename, tt.size, err, tt.wantErr)
			}
		})
	}
}
