package led_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.faceguard.dev/faceguard/gpio/mock"
	"go.faceguard.dev/faceguard/led"
)

func segmentPixels(pixels []led.Color) (lit []int) {
	for i, p := range pixels {
		if p != (led.Color{}) {
			lit = append(lit, i)
		}
	}
	return lit
}

func TestControllerSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		light  func(c *led.Controller) error
		expCol led.Color
	}{
		{
			name:   "ok/green",
			light:  func(c *led.Controller) error { return c.Green() },
			expCol: led.Color{G: 255},
		},
		{
			name:   "ok/red",
			light:  func(c *led.Controller) error { return c.Red() },
			expCol: led.Color{R: 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			strip := led.NewMemoryStrip(led.DefaultPixels)
			c, err := led.NewController(strip)
			require.NoError(t, err)

			require.NoError(t, tt.light(c))

			pixels := strip.Pixels()
			// Only the two visible side segments light up; the pixels behind
			// the camera cutout stay dark.
			assert.Equal(t,
				[]int{0, 1, 2, 3, 4, 5, 13, 14, 15, 16, 17, 18},
				segmentPixels(pixels))
			for _, i := range segmentPixels(pixels) {
				assert.Equal(t, tt.expCol, pixels[i])
			}
		})
	}
}

func TestControllerFlashTurnsOff(t *testing.T) {
	t.Parallel()

	strip := led.NewMemoryStrip(led.DefaultPixels)
	c, err := led.NewController(strip, led.WithFlash(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, c.FlashGreen())
	assert.NotEmpty(t, segmentPixels(strip.Pixels()))

	assert.Eventually(t, func() bool {
		return len(segmentPixels(strip.Pixels())) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestControllerFlashCancelsPrevious(t *testing.T) {
	t.Parallel()

	strip := led.NewMemoryStrip(led.DefaultPixels)
	c, err := led.NewController(strip, led.WithFlash(50*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, c.FlashRed())
	// A second flash replaces the first one's off timer.
	require.NoError(t, c.FlashGreen())

	assert.Eventually(t, func() bool {
		return len(segmentPixels(strip.Pixels())) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestControllerClose(t *testing.T) {
	t.Parallel()

	strip := led.NewMemoryStrip(led.DefaultPixels)
	c, err := led.NewController(strip)
	require.NoError(t, err)

	require.NoError(t, c.Green())
	require.NoError(t, c.Close())

	assert.Empty(t, segmentPixels(strip.Pixels()))
	assert.True(t, strip.Closed())
}

func TestReaderLEDs(t *testing.T) {
	t.Parallel()

	chip := mock.New()
	leds, err := led.NewReaderLEDs(chip, led.DefaultRedPin, led.DefaultGreenPin)
	require.NoError(t, err)
	t.Cleanup(func() { _ = leds.Close() })

	require.NoError(t, leds.GreenOn(20*time.Millisecond))
	assert.Equal(t, 1, chip.Value(led.DefaultGreenPin))
	assert.Equal(t, 0, chip.Value(led.DefaultRedPin))

	assert.Eventually(t, func() bool {
		return chip.Value(led.DefaultGreenPin) == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, leds.RedOn(time.Hour))
	assert.Equal(t, 1, chip.Value(led.DefaultRedPin))
	require.NoError(t, leds.AllOff())
	assert.Equal(t, 0, chip.Value(led.DefaultRedPin))
}
