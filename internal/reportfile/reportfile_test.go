package reportfile

import (
	"os"
	"path/filepath"
	"testing"
)

// TestExportWritesReport verifies the exported file content
func TestExportWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "garden.txt")
	report := "=== Action Discovery Diagnostics ===\nTrace log: 15 entries, 0 errors\n"

	if err := Export(path, report); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported report: %v", err)
	}
	if string(got) != report {
		t.Errorf("exported report = %q, want %q", got, report)
	}
}

// TestExportCreatesNestedDirectory verifies exports into a directory that
// does not exist yet, the first-run case for a fresh report dir
func TestExportCreatesNestedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "reports", "garden.txt")

	if err := Export(path, "content\n"); err != nil {
		t.Fatalf("Export() into fresh directory error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported report missing: %v", err)
	}
}

// TestTryExportCreatesDirectory verifies the non-blocking variant also
// handles a missing report directory
func TestTryExportCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "garden.txt")

	ok, err := TryExport(path, "content\n")
	if err != nil {
		t.Fatalf("TryExport() into fresh directory error = %v", err)
	}
	if !ok {
		t.Error("TryExport() = false, want true when lock is free")
	}
}

// TestExportOverwrites verifies a second export replaces the first
func TestExportOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	if err := Export(path, "first\n"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := Export(path, "second\n"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported report: %v", err)
	}
	if string(got) != "second\n" {
		t.Errorf("exported report = %q, want %q", got, "second\n")
	}
}

// TestExportLeavesNoTempFiles verifies temp files are cleaned up
func TestExportLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")

	if err := Export(path, "content\n"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		name := e.Name()
		if name != "report.txt" && name != "report.txt.lock" {
			t.Errorf("unexpected leftover file %q", name)
		}
	}
}

// TestTryExport verifies the non-blocking export succeeds when unlocked
func TestTryExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	ok, err := TryExport(path, "content\n")
	if err != nil {
		t.Fatalf("TryExport() error = %v", err)
	}
	if !ok {
		t.Error("TryExport() = false, want true when lock is free")
	}
}
