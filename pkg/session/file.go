package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/matzehuels/taskweb/pkg/config"
)

// FileStore keeps each stored render as one JSON file named after its id.
// Writes go through a temporary file so readers never see a partial render.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates the directory if needed. An empty dir selects
// renders/ under the taskweb cache directory.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		cacheDir := config.CacheDir()
		if cacheDir == "" {
			return nil, fmt.Errorf("no cache directory available")
		}
		dir = filepath.Join(cacheDir, "renders")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// file maps an id to its path. Base strips separators so ids cannot escape
// the directory.
func (s *FileStore) file(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".json")
}

// Get implements [Store]. Expired files are removed on read.
func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.file(id))
	s.mu.RUnlock()
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read render %s: %w", id, err)
	}

	sess := new(Session)
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("decode render %s: %w", id, err)
	}
	if sess.IsExpired() {
		return nil, s.Delete(ctx, id)
	}
	return sess, nil
}

// Set implements [Store].
func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode render %s: %w", sess.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".render-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write render %s: %w", sess.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.file(sess.ID))
}

// Delete implements [Store]. Deleting a missing render is not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.file(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove render %s: %w", id, err)
	}
	return nil
}

// Cleanup implements [Store]. It also removes files that no longer decode.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read render dir: %w", err)
	}

	now := time.Now()
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var head struct {
			ExpiresAt time.Time `json:"expires_at"`
		}
		if json.Unmarshal(data, &head) != nil || now.After(head.ExpiresAt) {
			os.Remove(path)
		}
	}
	return nil
}

// Path returns the directory holding the render files.
func (s *FileStore) Path() string { return s.dir }

var _ Store = (*FileStore)(nil)
