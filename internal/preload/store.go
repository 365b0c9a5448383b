package preload

import (
	"image"
	"sync"
)

// Store is the sparse frame array: one slot per frame index, each empty or
// holding a decoded image. Only the preloader writes; any goroutine may read.
type Store struct {
	mu     sync.RWMutex
	frames []image.Image
	filled int
}

// NewStore creates a store with n empty slots.
func NewStore(n int) *Store {
	if n < 0 {
		n = 0
	}
	return &Store{frames: make([]image.Image, n)}
}

// Get returns the image at index, if loaded.
func (s *Store) Get(index int) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.frames) || s.frames[index] == nil {
		return nil, false
	}
	return s.frames[index], true
}

// Len returns the number of slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}

// Filled returns the number of non-empty slots.
func (s *Store) Filled() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filled
}

// put fills an empty slot. A slot is written at most once.
func (s *Store) put(index int, img image.Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img == nil || index < 0 || index >= len(s.frames) || s.frames[index] != nil {
		return false
	}
	s.frames[index] = img
	s.filled++
	return true
}
