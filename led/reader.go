package led

import (
	"fmt"
	"sync"
	"time"

	gtypes "go.faceguard.dev/faceguard/gpio/types"
)

// Reader LED default line offsets (BCM numbering).
const (
	DefaultRedPin   = 5
	DefaultGreenPin = 6
)

// ReaderLEDs drives the discrete red/green indicator LEDs on the card
// reader through opto-isolated output lines.
type ReaderLEDs struct {
	mx    sync.Mutex
	red   gtypes.Line
	green gtypes.Line
	timer *time.Timer
}

// NewReaderLEDs claims the indicator lines on the given chip, idle off.
func NewReaderLEDs(chip gtypes.Chip, redPin, greenPin int) (*ReaderLEDs, error) {
	red, err := chip.RequestOutput(redPin, 0)
	if err != nil {
		return nil, fmt.Errorf("failed claiming red LED line: %w", err)
	}
	green, err := chip.RequestOutput(greenPin, 0)
	if err != nil {
		_ = red.Close()
		return nil, fmt.Errorf("failed claiming green LED line: %w", err)
	}

	return &ReaderLEDs{red: red, green: green}, nil
}

// GreenOn lights the green LED and turns both off after the duration.
func (r *ReaderLEDs) GreenOn(d time.Duration) error {
	return r.on(r.green, d)
}

// RedOn lights the red LED and turns both off after the duration.
func (r *ReaderLEDs) RedOn(d time.Duration) error {
	return r.on(r.red, d)
}

func (r *ReaderLEDs) on(line gtypes.Line, d time.Duration) error {
	r.mx.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(d, func() { _ = r.AllOff() })
	r.mx.Unlock()

	if err := line.SetValue(1); err != nil {
		return fmt.Errorf("failed lighting reader LED: %w", err)
	}

	return nil
}

// AllOff turns both LEDs off.
func (r *ReaderLEDs) AllOff() error {
	errG := r.green.SetValue(0)
	errR := r.red.SetValue(0)
	if errG != nil {
		return fmt.Errorf("failed turning off green LED: %w", errG)
	}
	if errR != nil {
		return fmt.Errorf("failed turning off red LED: %w", errR)
	}

	return nil
}

// Close cancels pending timers, turns the LEDs off and releases the lines.
func (r *ReaderLEDs) Close() error {
	r.mx.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mx.Unlock()

	if err := r.AllOff(); err != nil {
		return err
	}

	errG := r.green.Close()
	errR := r.red.Close()
	if errG != nil {
		return fmt.Errorf("failed releasing green LED line: %w", errG)
	}
	if errR != nil {
		return fmt.Errorf("failed releasing red LED line: %w", errR)
	}

	return nil
}
