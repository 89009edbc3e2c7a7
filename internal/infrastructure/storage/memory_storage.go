package storage

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/activityhub/backend/internal/application/activity"
)

// MemoryImageStorage keeps images in process memory. Used when no bucket
// is configured and in tests.
type MemoryImageStorage struct {
	mu      sync.RWMutex
	objects map[string]storedObject
	baseURL string
}

type storedObject struct {
	data        []byte
	contentType string
}

// NewMemoryImageStorage creates an empty store whose download URLs start
// with baseURL
func NewMemoryImageStorage(baseURL string) *MemoryImageStorage {
	if baseURL == "" {
		baseURL = "memory://images"
	}
	return &MemoryImageStorage{
		objects: make(map[string]storedObject),
		baseURL: baseURL,
	}
}

// Upload stores a copy of data
func (m *MemoryImageStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[storageKey] = storedObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// GenerateDownloadURL returns a URL carrying the expiry as a query parameter
func (m *MemoryImageStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return m.baseURL + "/" + storageKey + "?expires=" + url.QueryEscape(strconv.FormatInt(expiresAt.Unix(), 10)), expiresAt, nil
}

// DeleteObject removes storageKey
func (m *MemoryImageStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, storageKey)
	return nil
}

// Get returns the stored bytes and content type
func (m *MemoryImageStorage) Get(storageKey string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	return obj.data, obj.contentType, ok
}

var _ activity.ImageStorage = (*MemoryImageStorage)(nil)
