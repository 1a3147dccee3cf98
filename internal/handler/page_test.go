package handler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDashboardURL(t *testing.T) {
	tests := map[string]string{
		":8000":          "http://localhost:8000",
		"0.0.0.0:8000":   "http://localhost:8000",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
		"example.com:80": "http://example.com:80",
	}
	for addr, want := range tests {
		if got := DashboardURL(addr); got != want {
			t.Fatalf("DashboardURL(%q) expected %s, got %s", addr, want, got)
		}
	}
}

func TestWriteDashboardPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto_live_data.html")
	if err := WriteDashboardPage(path, "http://localhost:8000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	page := string(b)
	for _, want := range []string{"localhost:8000", "5000", "setInterval(updateData, refreshMillis)", "Cryptocurrency Live Data", "update_count"} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestWriteDashboardPageBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "page.html")
	if err := WriteDashboardPage(path, "http://localhost:8000"); err == nil {
		t.Fatal("expected write error")
	}
}
