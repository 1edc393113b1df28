package pages

import (
	"context"
	"path/filepath"
	"testing"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md", "# B")
	writeFile(t, dir, "sub/a.json", "[]")
	writeFile(t, dir, ".cache/c.txt", "hidden")
	writeFile(t, dir, "scan.pdf", "%PDF")

	files, err := Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []string{"b.md", "sub/a.json"}
	if len(files) != len(want) {
		t.Fatalf("Scan() returned %d files, want %d: %+v", len(files), len(want), files)
	}
	for i, f := range files {
		if f.RelPath != want[i] {
			t.Errorf("files[%d].RelPath = %q, want %q", i, f.RelPath, want[i])
		}
		if f.AbsPath != filepath.Join(dir, filepath.FromSlash(want[i])) {
			t.Errorf("files[%d].AbsPath = %q", i, f.AbsPath)
		}
	}
}

func TestScan_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "p1")

	files, err := Scan(context.Background(), path)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "report.txt" {
		t.Errorf("Scan() = %+v, want report.txt", files)
	}
}

func TestScan_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Scan(ctx, dir); err == nil {
		t.Error("Scan() expected error for cancelled context")
	}
}

func TestScan_MissingRoot(t *testing.T) {
	if _, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Scan() expected error for missing root")
	}
}
