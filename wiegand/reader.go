// Package wiegand implements the Wiegand line protocol spoken by the card
// reader and the door controller: bits arrive as falling-edge pulses on two
// open-collector data lines (D0 carries zeros, D1 carries ones), and a
// frame ends when the inter-bit gap exceeds a timeout.
package wiegand

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	gtypes "go.faceguard.dev/faceguard/gpio/types"
)

// Reader default line offsets (BCM numbering) and timing.
const (
	DefaultD0Pin = 17
	DefaultD1Pin = 27
	// DefaultGap is the inter-bit timeout that ends a frame.
	DefaultGap = 30 * time.Millisecond
)

// Reader assembles Wiegand frames from edge events on the D0/D1 lines.
// Only strict 32-bit frames are delivered; partial or oversized frames are
// discarded.
type Reader struct {
	d0, d1 int
	gap    time.Duration
	logger *slog.Logger

	lines  io.Closer
	frames chan uint32

	mx       sync.Mutex
	bits     []byte
	last     time.Duration
	gapTimer *time.Timer
	closed   bool
}

// NewReader claims the data lines on the given chip and starts frame
// assembly.
func NewReader(chip gtypes.Chip, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		d0:     DefaultD0Pin,
		d1:     DefaultD1Pin,
		gap:    DefaultGap,
		logger: slog.Default(),
		frames: make(chan uint32, 16),
		bits:   make([]byte, 0, FrameBits),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "wiegand-reader")

	lines, err := chip.WatchFalling(r.onEdge, r.d0, r.d1)
	if err != nil {
		return nil, fmt.Errorf("failed claiming Wiegand data lines: %w", err)
	}
	r.lines = lines

	return r, nil
}

// onEdge appends a bit for each falling edge. An edge separated from the
// previous one by more than the gap finalizes the pending frame first,
// which covers events that were queued while the handler was busy. The gap
// timer handles the common case of the line simply going quiet.
func (r *Reader) onEdge(evt gtypes.Event) {
	r.mx.Lock()
	defer r.mx.Unlock()
	if r.closed {
		return
	}

	if len(r.bits) > 0 && evt.Timestamp-r.last > r.gap {
		r.finalizeLocked()
	}

	var bit byte
	if evt.Offset == r.d1 {
		bit = 1
	}
	r.bits = append(r.bits, bit)
	r.last = evt.Timestamp

	if r.gapTimer == nil {
		r.gapTimer = time.AfterFunc(r.gap, r.onGap)
	} else {
		r.gapTimer.Reset(r.gap)
	}
}

func (r *Reader) onGap() {
	r.mx.Lock()
	defer r.mx.Unlock()
	if !r.closed {
		r.finalizeLocked()
	}
}

func (r *Reader) finalizeLocked() {
	n := len(r.bits)
	if n == 0 {
		return
	}

	var value uint32
	for _, b := range r.bits {
		value = value<<1 | uint32(b)
	}
	r.bits = r.bits[:0]

	if n != FrameBits {
		r.logger.Debug("discarding frame with unexpected length", "bits", n)
		return
	}

	select {
	case r.frames <- value:
	default:
		r.logger.Warn("frame buffer full; dropping frame", "value", fmt.Sprintf("0x%08X", value))
	}
}

// Read blocks until the next 32-bit frame is available, or the context is
// done. Use a context with a deadline to poll.
func (r *Reader) Read(ctx context.Context) (uint32, error) {
	select {
	case value := <-r.frames:
		return value, nil
	case <-ctx.Done():
		//nolint:wrapcheck // Callers match on context errors directly.
		return 0, ctx.Err()
	}
}

// Close releases the data lines and stops frame assembly. Pending frames
// already read from the hardware remain readable.
func (r *Reader) Close() error {
	r.mx.Lock()
	if r.closed {
		r.mx.Unlock()
		return nil
	}
	r.closed = true
	if r.gapTimer != nil {
		r.gapTimer.Stop()
	}
	r.mx.Unlock()

	if err := r.lines.Close(); err != nil {
		return fmt.Errorf("failed releasing Wiegand data lines: %w", err)
	}

	return nil
}
