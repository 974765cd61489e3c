package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFallsBackToFilenameWhenUntagged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Track.wav")
	if err := os.WriteFile(path, []byte("not a real tagged file"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info := Read(path)
	if info.Title != "My Track" {
		t.Errorf("Title = %q, want %q", info.Title, "My Track")
	}
	if info.Artist != "Unknown Artist" {
		t.Errorf("Artist = %q, want Unknown Artist", info.Artist)
	}
}

func TestReadHandlesMissingFile(t *testing.T) {
	info := Read("/nonexistent/path/track.mp3")
	if info.Title != "track" {
		t.Errorf("Title = %q, want track", info.Title)
	}
}
