// Package cdev implements the GPIO boundary on top of the Linux GPIO
// character device (/dev/gpiochipN).
package cdev

import (
	"fmt"
	"io"

	"github.com/warthog618/go-gpiocdev"

	gtypes "go.faceguard.dev/faceguard/gpio/types"
)

// Chip wraps a gpiocdev chip.
type Chip struct {
	chip *gpiocdev.Chip
}

var _ gtypes.Chip = (*Chip)(nil)

// Open opens the GPIO chip with the given index.
func Open(chip int) (gtypes.Chip, error) {
	c, err := gpiocdev.NewChip(fmt.Sprintf("gpiochip%d", chip), gpiocdev.WithConsumer("faceguard"))
	if err != nil {
		return nil, fmt.Errorf("failed opening gpiochip%d: %w", chip, err)
	}
	return &Chip{chip: c}, nil
}

// WatchFalling requests the given offsets as pulled-up inputs with
// falling-edge detection. The Wiegand data lines are open-collector, so
// pull-ups are required and the data pulses are the falling edges.
func (c *Chip) WatchFalling(handler gtypes.EventHandler, offsets ...int) (io.Closer, error) {
	lines, err := c.chip.RequestLines(offsets,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			handler(gtypes.Event{Offset: evt.Offset, Timestamp: evt.Timestamp})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed requesting input lines %v: %w", offsets, err)
	}

	return lines, nil
}

// RequestOutput requests a single output line with an initial value.
func (c *Chip) RequestOutput(offset, initial int) (gtypes.Line, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsOutput(initial))
	if err != nil {
		return nil, fmt.Errorf("failed requesting output line %d: %w", offset, err)
	}

	return line, nil
}

// Close releases the chip.
func (c *Chip) Close() error {
	//nolint:wrapcheck // This is fine.
	return c.chip.Close()
}
