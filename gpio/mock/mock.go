// Package mock implements an in-memory GPIO chip for tests and for running
// without hardware.
package mock

import (
	"io"
	"sync"
	"time"

	gtypes "go.faceguard.dev/faceguard/gpio/types"
)

// Write records a single output line write.
type Write struct {
	Offset int
	Value  int
}

// Chip is an in-memory GPIO chip. Tests inject edge events with
// InjectFalling, and inspect output writes with Writes.
type Chip struct {
	mx       sync.Mutex
	handlers map[int]gtypes.EventHandler
	writes   []Write
	values   map[int]int
	failErr  error // to simulate errors
	start    time.Time
	closed   bool
}

var _ gtypes.Chip = (*Chip)(nil)

// New returns a new mock Chip.
func New() *Chip {
	return &Chip{
		handlers: make(map[int]gtypes.EventHandler),
		values:   make(map[int]int),
		start:    time.Now(),
	}
}

// WatchFalling registers the handler for the given offsets.
func (c *Chip) WatchFalling(handler gtypes.EventHandler, offsets ...int) (io.Closer, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.failErr != nil {
		return nil, c.failErr
	}

	for _, offset := range offsets {
		c.handlers[offset] = handler
	}

	return closerFunc(func() error {
		c.mx.Lock()
		defer c.mx.Unlock()
		for _, offset := range offsets {
			delete(c.handlers, offset)
		}
		return nil
	}), nil
}

// RequestOutput registers an output line with an initial value.
func (c *Chip) RequestOutput(offset, initial int) (gtypes.Line, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.failErr != nil {
		return nil, c.failErr
	}
	c.values[offset] = initial

	return &line{chip: c, offset: offset}, nil
}

// Close marks the chip as closed.
func (c *Chip) Close() error {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.closed = true
	return c.failErr
}

// Closed reports whether Close was called.
func (c *Chip) Closed() bool {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.closed
}

// InjectFalling delivers a falling-edge event on the given offset to the
// registered handler, with a timestamp at the given offset from the chip's
// start time.
func (c *Chip) InjectFalling(offset int, at time.Duration) {
	c.mx.Lock()
	handler := c.handlers[offset]
	c.mx.Unlock()

	if handler != nil {
		handler(gtypes.Event{Offset: offset, Timestamp: at})
	}
}

// Writes returns a copy of all output line writes in order.
func (c *Chip) Writes() []Write {
	c.mx.Lock()
	defer c.mx.Unlock()
	result := make([]Write, len(c.writes))
	copy(result, c.writes)
	return result
}

// Value returns the last written value of the given output line.
func (c *Chip) Value(offset int) int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.values[offset]
}

// SetFailError makes subsequent chip operations fail with err.
func (c *Chip) SetFailError(err error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.failErr = err
}

type line struct {
	chip   *Chip
	offset int
}

func (l *line) SetValue(value int) error {
	l.chip.mx.Lock()
	defer l.chip.mx.Unlock()
	if l.chip.failErr != nil {
		return l.chip.failErr
	}
	l.chip.values[l.offset] = value
	l.chip.writes = append(l.chip.writes, Write{Offset: l.offset, Value: value})
	return nil
}

func (l *line) Close() error {
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
