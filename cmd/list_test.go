package cmd

import (
	"os"
	"strings"
	"testing"

	"resumeftp/internal/models"
)

func TestListCommand(t *testing.T) {
	if os.Getenv("FTP_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set FTP_INTEGRATION_TEST=true to run")
	}
	setupIntegrationConfig(t)

	output := runCommand(t, "list", "/")

	if !strings.Contains(output, `"items"`) {
		t.Errorf("Output doesn't contain items: %s", output)
	}
	if !strings.Contains(output, os.Getenv("TEST_FTP_HOST")) {
		t.Errorf("Output doesn't contain host: %s", output)
	}
}

func TestNewListResult(t *testing.T) {
	entries := []models.RemoteFile{
		{Name: "a.bin", Path: "/pub/a.bin", Size: 1024},
		{Name: "b.bin", Path: "/pub/b.bin", Size: 2048},
		{Name: "sub", Path: "/pub/sub", IsDir: true, Size: 4096},
	}

	result := newListResult("ftp.example.com", "/pub", entries)

	if result.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", result.TotalFiles)
	}
	if result.TotalSizeBytes != 3072 {
		t.Errorf("TotalSizeBytes = %d, want 3072", result.TotalSizeBytes)
	}
	if result.TotalSizeHuman != "3.0 KB" {
		t.Errorf("TotalSizeHuman = %s, want 3.0 KB", result.TotalSizeHuman)
	}
	if len(result.Items) != 3 {
		t.Errorf("Items = %d, want 3", len(result.Items))
	}

	empty := newListResult("ftp.example.com", "/missing", nil)
	if empty.Items == nil {
		t.Errorf("Items should be an empty slice, not nil")
	}
	if empty.TotalSizeHuman != "0 B" {
		t.Errorf("TotalSizeHuman = %s, want 0 B", empty.TotalSizeHuman)
	}
}
