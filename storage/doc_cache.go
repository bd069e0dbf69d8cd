package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocCache keeps downloaded report PDFs on disk, one file per document ID.
type DocCache struct {
	dir string
}

// NewDocCache creates the cache directory if needed.
func NewDocCache(dir string) (*DocCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cache: create dir %q: %w", dir, err)
	}
	return &DocCache{dir: dir}, nil
}

func (c *DocCache) path(docID string) string {
	// Document IDs are numeric upstream; keep path separators out regardless.
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(docID)
	return filepath.Join(c.dir, safe+".pdf")
}

// Get returns the cached document. ok is false on a miss.
func (c *DocCache) Get(docID string) (data []byte, ok bool, err error) {
	data, err = os.ReadFile(c.path(docID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: read %s: %w", docID, err)
	}
	return data, true, nil
}

// Put stores a document, replacing any earlier copy.
func (c *DocCache) Put(docID string, data []byte) error {
	if err := os.WriteFile(c.path(docID), data, 0644); err != nil {
		return fmt.Errorf("cache: write %s: %w", docID, err)
	}
	return nil
}

// Has reports whether a document is cached without reading it.
func (c *DocCache) Has(docID string) bool {
	_, err := os.Stat(c.path(docID))
	return err == nil
}
