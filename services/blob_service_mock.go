package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MemoryBlobStore is an in-memory BlobStore implementation for testing
type MemoryBlobStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	uploadSeq    int
	mu           sync.RWMutex
}

// NewMemoryBlobStore creates a new in-memory blob store
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

// SetAsBlobStoreForTesting sets this store as the global blob store instance
func (m *MemoryBlobStore) SetAsBlobStoreForTesting() {
	SetBlobStore(m)
}

// Upload simulates storing an uploaded file
func (m *MemoryBlobStore) Upload(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadSeq++
	key := fmt.Sprintf("uploads/mock_%d_%s", m.uploadSeq, fileHeader.Filename)
	m.objects[key] = content

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	m.contentTypes[key] = contentType

	return key, nil
}

// Fetch returns a stored object or an error when it does not exist
func (m *MemoryBlobStore) Fetch(key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, exists := m.objects[key]
	if !exists {
		return nil, "", fmt.Errorf("object not found in mock store: %s", key)
	}
	return content, m.contentTypes[key], nil
}

// Delete removes a stored object
func (m *MemoryBlobStore) Delete(key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.objects, key)
	delete(m.contentTypes, key)
	m.mu.Unlock()

	return nil
}

// Put stores an object directly (for seeding test fixtures)
func (m *MemoryBlobStore) Put(key string, content []byte, contentType string) {
	m.mu.Lock()
	m.objects[key] = content
	m.contentTypes[key] = contentType
	m.mu.Unlock()
}

// Exists checks whether an object is present in the store
func (m *MemoryBlobStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[key]
	return exists
}

// Keys returns all stored object keys (for testing assertions)
func (m *MemoryBlobStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes all objects from the store
func (m *MemoryBlobStore) Clear() {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.contentTypes = make(map[string]string)
	m.mu.Unlock()
}
