package guard

import (
	"errors"
	"time"

	"go.faceguard.dev/faceguard/led"
)

// Feedback signals access decisions on the LED panel and the discrete reader
// LEDs. Either may be nil if the hardware isn't present.
type Feedback struct {
	panel  *led.Controller
	reader *led.ReaderLEDs
	flash  time.Duration
}

// NewFeedback creates LED feedback. The flash duration applies to the reader
// LEDs; the panel uses its own configured flash duration.
func NewFeedback(panel *led.Controller, reader *led.ReaderLEDs, flash time.Duration) *Feedback {
	if flash <= 0 {
		flash = led.DefaultFlash
	}

	return &Feedback{panel: panel, reader: reader, flash: flash}
}

// Grant flashes green on all LEDs.
func (f *Feedback) Grant() error {
	var errs []error
	if f.panel != nil {
		errs = append(errs, f.panel.FlashGreen())
	}
	if f.reader != nil {
		errs = append(errs, f.reader.GreenOn(f.flash))
	}

	return errors.Join(errs...)
}

// Deny flashes red on all LEDs.
func (f *Feedback) Deny() error {
	var errs []error
	if f.panel != nil {
		errs = append(errs, f.panel.FlashRed())
	}
	if f.reader != nil {
		errs = append(errs, f.reader.RedOn(f.flash))
	}

	return errors.Join(errs...)
}

// Close turns all LEDs off and releases them.
func (f *Feedback) Close() error {
	var errs []error
	if f.panel != nil {
		errs = append(errs, f.panel.Close())
	}
	if f.reader != nil {
		errs = append(errs, f.reader.Close())
	}

	return errors.Join(errs...)
}
