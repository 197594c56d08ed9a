// Package led drives the authentication feedback LEDs: the addressable
// pixel panel around the camera, and the discrete red/green indicator LEDs
// on the card reader.
package led

import (
	"fmt"
	"sync"
	"time"
)

// Panel defaults. Pixels 6..12 sit behind the camera cutout and are left
// dark; feedback uses the two visible side segments.
const (
	DefaultPixels     = 19
	DefaultBrightness = 0.6
	DefaultFlash      = 3 * time.Second

	segmentSize = 6
)

// Color is an RGB pixel value.
type Color struct {
	R, G, B uint8
}

var (
	green = Color{G: 255}
	red   = Color{R: 255}
	off   = Color{}
)

// Strip is the boundary to an addressable LED strip. The concrete driver
// is board-specific (the panel hardware is a NeoPixel ring); MemoryStrip
// implements it for tests and simulation.
type Strip interface {
	// Set stages the color of a single pixel.
	Set(i int, c Color) error
	// Fill stages the color of all pixels.
	Fill(c Color) error
	// Show pushes the staged pixel values to the hardware.
	Show() error
	Close() error
}

// Controller drives the pixel panel with timed feedback flashes.
type Controller struct {
	strip  Strip
	pixels int
	flash  time.Duration

	mx    sync.Mutex
	timer *time.Timer
}

// NewController returns a Controller for the given strip, starting with
// all pixels off.
func NewController(strip Strip, opts ...ControllerOption) (*Controller, error) {
	c := &Controller{
		strip:  strip,
		pixels: DefaultPixels,
		flash:  DefaultFlash,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.Off(); err != nil {
		return nil, fmt.Errorf("failed initializing LED panel: %w", err)
	}

	return c, nil
}

// Off turns off all pixels.
func (c *Controller) Off() error {
	if err := c.strip.Fill(off); err != nil {
		return fmt.Errorf("failed clearing LED panel: %w", err)
	}
	//nolint:wrapcheck // This is fine.
	return c.strip.Show()
}

// Green lights the side segments green (success indicator).
func (c *Controller) Green() error {
	return c.segments(green)
}

// Red lights the side segments red (failure indicator).
func (c *Controller) Red() error {
	return c.segments(red)
}

func (c *Controller) segments(col Color) error {
	for i := 0; i < segmentSize && i < c.pixels; i++ {
		if err := c.strip.Set(i, col); err != nil {
			return fmt.Errorf("failed setting pixel %d: %w", i, err)
		}
	}
	for i := c.pixels - segmentSize; i < c.pixels; i++ {
		if i < 0 {
			continue
		}
		if err := c.strip.Set(i, col); err != nil {
			return fmt.Errorf("failed setting pixel %d: %w", i, err)
		}
	}
	//nolint:wrapcheck // This is fine.
	return c.strip.Show()
}

// FlashGreen lights the segments green and turns them off after the
// configured flash duration, canceling any pending flash.
func (c *Controller) FlashGreen() error {
	return c.flashColor(c.Green)
}

// FlashRed lights the segments red and turns them off after the configured
// flash duration, canceling any pending flash.
func (c *Controller) FlashRed() error {
	return c.flashColor(c.Red)
}

func (c *Controller) flashColor(on func() error) error {
	c.mx.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.flash, func() { _ = c.Off() })
	c.mx.Unlock()

	return on()
}

// Close cancels pending flashes, turns the panel off and releases the strip.
func (c *Controller) Close() error {
	c.mx.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mx.Unlock()

	if err := c.Off(); err != nil {
		return err
	}
	//nolint:wrapcheck // This is fine.
	return c.strip.Close()
}
