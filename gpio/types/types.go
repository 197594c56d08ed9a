package types

import (
	"fmt"
	"io"
	"time"
)

// ChipType are the supported GPIO chip implementations.
type ChipType string

// All supported GPIO chip implementations.
const (
	ChipMock ChipType = "mock"
	ChipCdev ChipType = "cdev"
)

// ChipTypeFromString returns a valid ChipType for the given string, or an
// error if the value is invalid.
func ChipTypeFromString(val string) (ChipType, error) {
	switch ChipType(val) {
	case ChipMock:
		return ChipMock, nil
	case ChipCdev:
		return ChipCdev, nil
	}
	return "", fmt.Errorf("unsupported GPIO chip type '%s'", val)
}

// Event is a falling-edge event on a watched input line.
type Event struct {
	// Offset is the line offset on the chip the event occurred on.
	Offset int
	// Timestamp is the best estimate of the time of the event, relative to an
	// unspecified monotonic epoch.
	Timestamp time.Duration
}

// EventHandler receives edge events. It is called from the chip's event
// goroutine and must not block.
type EventHandler func(Event)

// Line is a requested GPIO output line.
type Line interface {
	// SetValue sets the line to active (1) or inactive (0).
	SetValue(value int) error
	// Close releases the line.
	Close() error
}

// Chip is the boundary to a GPIO character device (/dev/gpiochipN).
type Chip interface {
	// WatchFalling requests the given line offsets as pulled-up inputs and
	// delivers falling-edge events to the handler. The returned closer
	// releases the lines and stops event delivery.
	WatchFalling(handler EventHandler, offsets ...int) (io.Closer, error)

	// RequestOutput requests a single output line with an initial value.
	RequestOutput(offset, initial int) (Line, error)

	// Close releases the chip. Lines requested from it must be closed first.
	Close() error
}

// Opener opens a GPIO chip by index.
type Opener func(chip int) (Chip, error)
