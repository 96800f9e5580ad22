package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Filesystem stores documents as plain files in a single directory. The
// directory listing plus mtime is the only index.
type Filesystem struct {
	dir string
	now func() time.Time
}

// NewFilesystem creates a filesystem store rooted at dir, creating the
// directory if needed.
func NewFilesystem(dir string) (*Filesystem, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Filesystem{dir: dir, now: time.Now}, nil
}

func (f *Filesystem) Save(_ context.Context, data []byte) (string, error) {
	filename := fmt.Sprintf("document_%d.docx", f.now().UnixMilli())
	path := filepath.Join(f.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return filename, nil
}

func (f *Filesystem) Get(_ context.Context, filename string) ([]byte, error) {
	// Reject traversal and anything outside the naming scheme.
	if filename != filepath.Base(filename) || !strings.HasSuffix(filename, ".docx") {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(f.dir, filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

// Latest orders stored documents by modification time, newest first. The
// timestamp embedded in the filename is deliberately not consulted.
func (f *Filesystem) Latest(_ context.Context) (string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		log.Printf("store: list uploads dir: %v", err)
		return "", ErrEmpty
	}

	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !ValidFilename(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Printf("store: stat %s: %v", entry.Name(), err)
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = entry.Name()
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", ErrEmpty
	}
	return latest, nil
}

func (f *Filesystem) Ping(_ context.Context) error {
	if _, err := os.Stat(f.dir); err != nil {
		return fmt.Errorf("stat uploads dir: %w", err)
	}
	return nil
}
