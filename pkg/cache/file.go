package cache

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// FileCache implements a file-based cache for CLI usage.
// Entries are JSON files holding the data and its expiry, spread over 256
// subdirectories by key hash.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// cacheEntry wraps cached data with metadata.
type cacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a value from the cache. Unreadable and expired entries are
// removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores a value in the cache. The entry is written to a temporary
// file first so concurrent readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := cacheEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(entryData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// walk calls fn for every entry file below the cache directory and returns
// the subdirectories it passed, deepest last. A missing directory is empty.
func (c *FileCache) walk(fn func(path string, d fs.DirEntry)) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil && os.IsNotExist(err):
			return nil
		case err != nil:
			return err
		case path == c.dir:
			return nil
		case d.IsDir():
			dirs = append(dirs, path)
		case filepath.Ext(path) == ".json":
			fn(path, d)
		}
		return nil
	})
	return dirs, err
}

// Clear removes every entry and the emptied subdirectories, and returns
// the number of entries removed. The cache directory itself is kept.
func (c *FileCache) Clear() (int, error) {
	count := 0
	dirs, err := c.walk(func(path string, _ fs.DirEntry) {
		if os.Remove(path) == nil {
			count++
		}
	})
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
	return count, err
}

// Prune removes expired and undecodable entries and returns how many went.
func (c *FileCache) Prune() (int, error) {
	count := 0
	now := time.Now()
	_, err := c.walk(func(path string, _ fs.DirEntry) {
		if !c.live(path, now) && os.Remove(path) == nil {
			count++
		}
	})
	return count, err
}

// Stats describes the entries currently on disk.
type Stats struct {
	Entries int   // entry files, live or not
	Expired int   // entries past their expiry or unreadable
	Bytes   int64 // total size of the entry files
}

// Stats walks the cache directory and counts its entries.
func (c *FileCache) Stats() (Stats, error) {
	var st Stats
	now := time.Now()
	_, err := c.walk(func(path string, d fs.DirEntry) {
		st.Entries++
		if info, err := d.Info(); err == nil {
			st.Bytes += info.Size()
		}
		if !c.live(path, now) {
			st.Expired++
		}
	})
	return st, err
}

func (c *FileCache) live(path string, now time.Time) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var head struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	if json.Unmarshal(data, &head) != nil {
		return false
	}
	return head.ExpiresAt.IsZero() || now.Before(head.ExpiresAt)
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// path converts a cache key to a file path.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
