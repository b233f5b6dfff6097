package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	financeapp "github.com/landerp/backend/internal/application/finance"
)

var _ financeapp.ObjectStorage = (*MemoryDocumentStore)(nil)

// MemoryDocumentStore backs the "stub" storage driver. A key counts as
// uploaded once an upload URL has been issued for it or it was Put.
type MemoryDocumentStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]string // key -> content type
}

// NewMemoryDocumentStore creates an empty store whose URLs point at baseURL
func NewMemoryDocumentStore(baseURL string) *MemoryDocumentStore {
	if baseURL == "" {
		baseURL = "http://localhost:9000/documents"
	}
	return &MemoryDocumentStore{baseURL: baseURL, objects: make(map[string]string)}
}

func (m *MemoryDocumentStore) url(op, key string, expiresAt time.Time) string {
	return m.baseURL + "/" + op + "/" + key + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
}

// GenerateUploadURL records the key and returns a fake upload URL
func (m *MemoryDocumentStore) GenerateUploadURL(_ context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	m.mu.Lock()
	m.objects[storageKey] = contentType
	m.mu.Unlock()

	expiresAt := time.Now().Add(expiresIn)
	return m.url("upload", storageKey, expiresAt), expiresAt, nil
}

// GenerateDownloadURL returns a fake download URL
func (m *MemoryDocumentStore) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return m.url("download", storageKey, expiresAt), expiresAt, nil
}

// ObjectExists reports whether the key is known
func (m *MemoryDocumentStore) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[storageKey]
	return ok, nil
}

// Put stores the key
func (m *MemoryDocumentStore) Put(_ context.Context, storageKey string, _ []byte, contentType string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	m.objects[storageKey] = contentType
	m.mu.Unlock()
	return nil
}

// Forget drops the key, simulating an upload that never completed
func (m *MemoryDocumentStore) Forget(storageKey string) {
	m.mu.Lock()
	delete(m.objects, storageKey)
	m.mu.Unlock()
}
