package services

import (
	"fmt"
	"mime/multipart"
	"sync"
)

// MockImageService is an in-memory ImageService for tests. It records the
// references it hands out and can be told to fail uploads after N files to
// exercise the all-or-nothing attach path.
type MockImageService struct {
	mu       sync.RWMutex
	stored   map[string]bool
	deleted  []string
	uploads  int
	failFrom int // fail uploads once this many have succeeded; 0 disables
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{stored: make(map[string]bool)}
}

// SetAsMockForTesting sets this mock as the global image service instance
func (m *MockImageService) SetAsMockForTesting() {
	InitImageService(m)
}

// FailUploadsAfter makes UploadImage fail once n uploads have succeeded.
func (m *MockImageService) FailUploadsAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFrom = n
}

// UploadImage simulates storing a photo and returns a mock reference.
func (m *MockImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFrom > 0 && m.uploads >= m.failFrom {
		return "", fmt.Errorf("mock upload failure for %s", fileHeader.Filename)
	}

	m.uploads++
	ref := fmt.Sprintf("https://mock-storage.local/photos/%d_%s", m.uploads, fileHeader.Filename)
	m.stored[ref] = true
	return ref, nil
}

// DeleteImage simulates removing a stored photo.
func (m *MockImageService) DeleteImage(ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.stored, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}

// Stored reports whether a reference still has a backing file.
func (m *MockImageService) Stored(ref string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stored[ref]
}

// Deleted returns the references DeleteImage has been called with.
func (m *MockImageService) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}
