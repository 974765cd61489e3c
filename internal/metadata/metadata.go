// Package metadata reads the display-only title/artist tags the
// engine attaches to progress and plan output — never part of the
// analysis descriptor itself, since nothing downstream of decode
// depends on a file's tags.
package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Info is the subset of a file's tags worth surfacing to a user.
type Info struct {
	Title  string
	Artist string
}

// Read extracts title/artist from path's embedded tags, falling back
// to the filename (and "Unknown Artist") when the format carries no
// tags or isn't a tagged container at all.
func Read(path string) Info {
	f, err := os.Open(path)
	if err != nil {
		return fromFilename(path)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return fromFilename(path)
	}

	info := fromFilename(path)
	if title := m.Title(); title != "" {
		info.Title = title
	}
	if artist := m.Artist(); artist != "" {
		info.Artist = artist
	}
	return info
}

func fromFilename(path string) Info {
	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	return Info{Title: title, Artist: "Unknown Artist"}
}
