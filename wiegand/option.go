package wiegand

import (
	"log/slog"
	"time"
)

// ReaderOption is a function that allows configuring the Reader.
type ReaderOption func(*Reader)

// WithDataPins sets the D0/D1 line offsets used by the Reader.
func WithDataPins(d0, d1 int) ReaderOption {
	return func(r *Reader) {
		r.d0 = d0
		r.d1 = d1
	}
}

// WithGap sets the inter-bit timeout that ends a frame.
func WithGap(gap time.Duration) ReaderOption {
	return func(r *Reader) {
		if gap > 0 {
			r.gap = gap
		}
	}
}

// WithLogger sets the logger used by the Reader.
func WithLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

type writerConfig struct {
	d0, d1 *int
	w      *Writer
}

// WriterOption is a function that allows configuring the Writer.
type WriterOption func(*writerConfig)

// WithTxPins sets the D0/D1 transmit line offsets used by the Writer.
func WithTxPins(d0, d1 int) WriterOption {
	return func(c *writerConfig) {
		*c.d0 = d0
		*c.d1 = d1
	}
}

// WithPulseWidth sets the active pulse width. Values below the hardware
// minimum are clamped.
func WithPulseWidth(d time.Duration) WriterOption {
	return func(c *writerConfig) {
		c.w.pulse = d
	}
}

// WithBitSpacing sets the inter-bit spacing. Values below the hardware
// minimum are clamped.
func WithBitSpacing(d time.Duration) WriterOption {
	return func(c *writerConfig) {
		c.w.spacing = d
	}
}

// WithActiveHigh sets the output polarity. When true (the default), a high
// GPIO level turns the opto driver on, pulling the controller line low.
func WithActiveHigh(activeHigh bool) WriterOption {
	return func(c *writerConfig) {
		c.w.activeHigh = activeHigh
	}
}
