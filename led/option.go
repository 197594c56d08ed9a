package led

import "time"

// ControllerOption is a function that allows configuring the Controller.
type ControllerOption func(*Controller)

// WithPixels sets the number of pixels on the panel.
func WithPixels(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.pixels = n
		}
	}
}

// WithFlash sets the duration of feedback flashes.
func WithFlash(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.flash = d
		}
	}
}
