// Package scanner walks a directory tree for audio files, computes
// their content hashes, and separates tracks already cached in
// storage from tracks that still need a full analysis pass.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cartomix/mixcraft/internal/storage"
)

// SupportedFormats lists the audio file extensions Scan collects. Of
// these, only WAV files are decodable by the decode package; the other
// formats fail there with DECODE_FAILED.
var SupportedFormats = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".aiff": true,
	".aif":  true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
}

// FoundTrack is one audio file discovered under a scan root.
type FoundTrack struct {
	Path   string
	Hash   string
	Cached bool // a descriptor already exists for this hash
}

// Progress reports scan progress as files are hashed.
type Progress struct {
	Path      string
	Status    string // hashed, skipped, error
	Error     string
	Processed int64
	Total     int64
}

// Scanner discovers audio files and checks them against the
// descriptor cache.
type Scanner struct {
	db     *storage.DB
	logger *slog.Logger
	hashes *HashCache
}

// New creates a file scanner backed by db's descriptor cache.
func New(db *storage.DB, logger *slog.Logger) *Scanner {
	return &Scanner{db: db, logger: logger, hashes: NewHashCache()}
}

// Scan walks roots for supported audio files, hashes each one, and
// reports progress on the given channel (which Scan closes when
// done). A file whose hash already has a descriptor in storage is
// reported Cached so callers can skip re-analysis.
func (s *Scanner) Scan(ctx context.Context, roots []string, progress chan<- Progress) ([]FoundTrack, error) {
	defer close(progress)

	var paths []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if SupportedFormats[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			s.logger.Warn("scan root failed", "root", root, "error", err)
		}
	}

	var found []FoundTrack
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		ft, err := s.processFile(path)
		status := "hashed"
		errMsg := ""
		if err != nil {
			status = "error"
			errMsg = err.Error()
		} else if ft.Cached {
			status = "skipped"
		}

		select {
		case progress <- Progress{
			Path:      path,
			Status:    status,
			Error:     errMsg,
			Processed: int64(i + 1),
			Total:     int64(len(paths)),
		}:
		case <-ctx.Done():
			return found, ctx.Err()
		}

		if err == nil {
			found = append(found, ft)
		}
	}

	return found, nil
}

func (s *Scanner) processFile(path string) (FoundTrack, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FoundTrack{}, err
	}

	hash, ok := s.hashes.Get(path, info.ModTime())
	if !ok {
		hash, err = ComputeHash(path)
		if err != nil {
			return FoundTrack{}, err
		}
		s.hashes.Set(path, hash, info.ModTime())
	}

	existing, err := s.db.GetDescriptor(hash)
	if err != nil {
		return FoundTrack{}, err
	}

	return FoundTrack{Path: path, Hash: hash, Cached: existing != nil}, nil
}

// ComputeHash returns the SHA-256 of a file's full contents. Cue
// planning and transition memoization key off this hash, so it must
// be stable for byte-identical audio regardless of how much of the
// file a caller happens to read.
func ComputeHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashCache avoids re-hashing a file that hasn't changed since the
// last scan.
type HashCache struct {
	cache map[string]cacheEntry
}

type cacheEntry struct {
	hash    string
	modTime time.Time
}

// NewHashCache creates an empty hash cache.
func NewHashCache() *HashCache {
	return &HashCache{cache: make(map[string]cacheEntry)}
}

// Get returns a cached hash if the file's mtime hasn't moved.
func (c *HashCache) Get(path string, modTime time.Time) (string, bool) {
	entry, ok := c.cache[path]
	if !ok || !entry.modTime.Equal(modTime) {
		return "", false
	}
	return entry.hash, true
}

// Set records path's hash at modTime.
func (c *HashCache) Set(path string, hash string, modTime time.Time) {
	c.cache[path] = cacheEntry{hash: hash, modTime: modTime}
}
