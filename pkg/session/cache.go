package session

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/matzehuels/taskweb/pkg/cache"
)

// CacheStore keeps sessions in a [cache.Cache] under the keyer's render
// keys. Expiry is left to the backend.
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
}

// NewCacheStore wraps c. A nil keyer uses [cache.DefaultKeyer].
func NewCacheStore(c cache.Cache, keyer cache.Keyer) *CacheStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CacheStore{cache: c, keyer: keyer}
}

func (s *CacheStore) Get(ctx context.Context, id string) (*Session, error) {
	data, ok, err := s.cache.Get(ctx, s.keyer.RenderKey(id))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return &sess, nil
}

func (s *CacheStore) Set(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.cache.Set(ctx, s.keyer.RenderKey(sess.ID), data, ttl)
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, s.keyer.RenderKey(id))
}

func (s *CacheStore) Cleanup(ctx context.Context) error { return nil }

var _ Store = (*CacheStore)(nil)
