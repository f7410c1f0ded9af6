package web

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"cartoon-story-bot/internal/pack"
	"cartoon-story-bot/internal/pipeline"
)

var ErrPackageNotFound = errors.New("story package not found or expired")

type storedStory struct {
	result pipeline.Result

	mu  sync.Mutex
	zip []byte
}

// PackageStore keeps finished stories for a limited time and builds their
// zip archive on first download.
type PackageStore struct {
	cache *cache.Cache
	group singleflight.Group
}

func NewPackageStore(ttl time.Duration) *PackageStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PackageStore{cache: cache.New(ttl, ttl*2)}
}

// Add stores result and returns its package id.
func (s *PackageStore) Add(result pipeline.Result) string {
	id := uuid.NewString()
	s.cache.SetDefault(id, &storedStory{result: result})
	return id
}

// Package returns the archive for id. Concurrent downloads of the same id
// share one build.
func (s *PackageStore) Package(id string) ([]byte, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrPackageNotFound
	}
	stored := v.(*storedStory)

	data, err, _ := s.group.Do(id, func() (any, error) {
		stored.mu.Lock()
		defer stored.mu.Unlock()
		if stored.zip != nil {
			return stored.zip, nil
		}
		zip, err := pack.Build(stored.result.Story, stored.result.Images)
		if err != nil {
			return nil, err
		}
		stored.zip = zip
		return zip, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

func (s *PackageStore) Len() int {
	return s.cache.ItemCount()
}
