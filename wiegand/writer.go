package wiegand

import (
	"fmt"
	"sync"
	"time"

	gtypes "go.faceguard.dev/faceguard/gpio/types"
)

// Writer default line offsets (BCM numbering) and timing. The outputs
// drive optocouplers, so by default a high GPIO level produces the active
// (low) pulse on the controller side.
const (
	DefaultTxD0Pin    = 22
	DefaultTxD1Pin    = 23
	DefaultPulseWidth = 80 * time.Microsecond
	DefaultBitSpacing = 2 * time.Millisecond

	minPulseWidth = 20 * time.Microsecond
	minBitSpacing = 200 * time.Microsecond
)

// Writer emits Wiegand frames towards the door controller: each bit is an
// active pulse on D0 (zero) or D1 (one), MSB first.
type Writer struct {
	pulse      time.Duration
	spacing    time.Duration
	activeHigh bool

	mx     sync.Mutex
	d0, d1 gtypes.Line
}

// NewWriter claims the transmit lines on the given chip, idle (controller
// lines high).
func NewWriter(chip gtypes.Chip, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		pulse:      DefaultPulseWidth,
		spacing:    DefaultBitSpacing,
		activeHigh: true,
	}
	d0Pin, d1Pin := DefaultTxD0Pin, DefaultTxD1Pin
	cfg := &writerConfig{d0: &d0Pin, d1: &d1Pin, w: w}
	for _, opt := range opts {
		opt(cfg)
	}
	w.pulse = max(w.pulse, minPulseWidth)
	w.spacing = max(w.spacing, minBitSpacing)

	idle := w.level(false)
	d0, err := chip.RequestOutput(d0Pin, idle)
	if err != nil {
		return nil, fmt.Errorf("failed claiming Wiegand TX D0 line: %w", err)
	}
	d1, err := chip.RequestOutput(d1Pin, idle)
	if err != nil {
		_ = d0.Close()
		return nil, fmt.Errorf("failed claiming Wiegand TX D1 line: %w", err)
	}
	w.d0, w.d1 = d0, d1

	return w, nil
}

// level translates pulse state to the GPIO level, honoring the polarity of
// the output driver.
func (w *Writer) level(active bool) int {
	if active == w.activeHigh {
		return 1
	}
	return 0
}

// SendW32 sends exactly 32 raw data bits, MSB first, no parity added.
func (w *Writer) SendW32(value uint32) error {
	return w.send(value, FrameBits)
}

// SendW32Parity sends the 30 low data bits of value wrapped in a 1-30-1
// parity frame.
func (w *Writer) SendW32Parity(value uint32) error {
	return w.send(EncodeParity1301(value), FrameBits)
}

func (w *Writer) send(frame uint32, nbits int) error {
	w.mx.Lock()
	defer w.mx.Unlock()
	if w.d0 == nil {
		return fmt.Errorf("wiegand writer is closed")
	}

	for i := nbits - 1; i >= 0; i-- {
		line := w.d0
		if frame>>i&1 == 1 {
			line = w.d1
		}
		if err := w.pulseBit(line); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) pulseBit(line gtypes.Line) error {
	if err := line.SetValue(w.level(true)); err != nil {
		return fmt.Errorf("failed driving Wiegand TX line: %w", err)
	}
	time.Sleep(w.pulse)
	if err := line.SetValue(w.level(false)); err != nil {
		return fmt.Errorf("failed idling Wiegand TX line: %w", err)
	}
	time.Sleep(w.spacing)

	return nil
}

// Close releases the transmit lines.
func (w *Writer) Close() error {
	w.mx.Lock()
	defer w.mx.Unlock()
	if w.d0 == nil {
		return nil
	}

	err0 := w.d0.Close()
	err1 := w.d1.Close()
	w.d0, w.d1 = nil, nil
	if err0 != nil {
		return fmt.Errorf("failed releasing Wiegand TX D0 line: %w", err0)
	}
	if err1 != nil {
		return fmt.Errorf("failed releasing Wiegand TX D1 line: %w", err1)
	}

	return nil
}
