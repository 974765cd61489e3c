package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cartomix/mixcraft/internal/model"
	"github.com/cartomix/mixcraft/internal/storage"
)

func minimalDescriptor(hash string) *model.TrackDescriptor {
	return &model.TrackDescriptor{Hash: hash, DurationMs: 1000}
}

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(dir, slog.Default())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestScanFindsSupportedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wav"), "wav-bytes")
	writeFile(t, filepath.Join(dir, "b.flac"), "flac-bytes")
	writeFile(t, filepath.Join(dir, "readme.txt"), "not audio")

	s := New(testDB(t), slog.Default())
	progress := make(chan Progress, 16)
	found, err := s.Scan(context.Background(), []string{dir}, progress)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for range progress {
	}

	if len(found) != 2 {
		t.Fatalf("found %d tracks, want 2: %+v", len(found), found)
	}
	for _, ft := range found {
		if ft.Cached {
			t.Errorf("%s reported Cached on first scan", ft.Path)
		}
		if ft.Hash == "" {
			t.Errorf("%s has empty hash", ft.Path)
		}
	}
}

func TestScanReportsCachedForExistingDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	writeFile(t, path, "wav-bytes")

	hash, err := ComputeHash(path)
	if err != nil {
		t.Fatalf("ComputeHash: %v", err)
	}

	db := testDB(t)
	if err := db.PutDescriptor(minimalDescriptor(hash)); err != nil {
		t.Fatalf("PutDescriptor: %v", err)
	}

	s := New(db, slog.Default())
	progress := make(chan Progress, 16)
	found, err := s.Scan(context.Background(), []string{dir}, progress)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for range progress {
	}

	if len(found) != 1 || !found[0].Cached {
		t.Fatalf("found = %+v, want one Cached track", found)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
}
