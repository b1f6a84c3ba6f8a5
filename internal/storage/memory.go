package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

const memoryScheme = "memory://"

// MemoryStorage keeps media in process. It backs tests and local development
// when no bucket is configured.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStorage returns an empty in-memory media store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

// Store copies r into memory.
func (m *MemoryStorage) Store(ctx context.Context, folder Folder, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("memory storage read %s: %w", filename, err)
	}

	handle := memoryScheme + objectKey(folder, filename)
	m.mu.Lock()
	m.objects[handle] = buf.Bytes()
	m.mu.Unlock()
	return handle, nil
}

// Delete removes the object behind handle.
func (m *MemoryStorage) Delete(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[handle]; !ok {
		return fmt.Errorf("memory storage delete %q: %w", handle, ErrUnknownHandle)
	}
	delete(m.objects, handle)
	return nil
}

// Has reports whether handle is currently stored.
func (m *MemoryStorage) Has(handle string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[handle]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ Media = (*MemoryStorage)(nil)
