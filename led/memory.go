package led

import (
	"fmt"
	"sync"
)

// MemoryStrip is an in-memory Strip used by tests and when running with
// simulated hardware. Staged writes only become visible after Show.
type MemoryStrip struct {
	mx     sync.Mutex
	staged []Color
	shown  []Color
	shows  int
	closed bool
}

var _ Strip = (*MemoryStrip)(nil)

// NewMemoryStrip returns a MemoryStrip with n pixels, all off.
func NewMemoryStrip(n int) *MemoryStrip {
	return &MemoryStrip{
		staged: make([]Color, n),
		shown:  make([]Color, n),
	}
}

// Set stages the color of a single pixel.
func (s *MemoryStrip) Set(i int, c Color) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if i < 0 || i >= len(s.staged) {
		return fmt.Errorf("pixel index %d out of range [0,%d)", i, len(s.staged))
	}
	s.staged[i] = c
	return nil
}

// Fill stages the color of all pixels.
func (s *MemoryStrip) Fill(c Color) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	for i := range s.staged {
		s.staged[i] = c
	}
	return nil
}

// Show makes the staged pixel values visible.
func (s *MemoryStrip) Show() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	copy(s.shown, s.staged)
	s.shows++
	return nil
}

// Close marks the strip as closed.
func (s *MemoryStrip) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.closed = true
	return nil
}

// Pixels returns a copy of the last shown pixel values.
func (s *MemoryStrip) Pixels() []Color {
	s.mx.Lock()
	defer s.mx.Unlock()
	result := make([]Color, len(s.shown))
	copy(result, s.shown)
	return result
}

// Shows returns how many times Show was called.
func (s *MemoryStrip) Shows() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.shows
}

// Closed reports whether Close was called.
func (s *MemoryStrip) Closed() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.closed
}
