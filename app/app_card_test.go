package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	gpiomock "go.faceguard.dev/faceguard/gpio/mock"
	gtypes "go.faceguard.dev/faceguard/gpio/types"
	"go.faceguard.dev/faceguard/wiegand"
)

func TestAppCardReadIntegration(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 10*time.Second)
	defer cancel()

	chip := gpiomock.New()
	app, err := newTestApp(tctx,
		WithGPIOOpener(func(_ int) (gtypes.Chip, error) {
			return chip, nil
		}),
	)
	h(assert.NoError(t, err))

	err = initTestDB(app.ctx, nil)
	h(assert.NoError(t, err))

	// Swipe the card once the reader is waiting: 32 falling edges, zeros on
	// D0 and ones on D1, 1ms apart so they fall within the inter-bit gap.
	promptCh := make(chan string)
	app.stdout.waitFor("Present a card", 0, promptCh)
	go func() {
		select {
		case <-promptCh:
		case <-tctx.Done():
			return
		}
		const card = uint32(1110447364)
		at := time.Millisecond
		for i := wiegand.FrameBits - 1; i >= 0; i-- {
			offset := wiegand.DefaultD0Pin
			if card>>uint(i)&1 == 1 {
				offset = wiegand.DefaultD1Pin
			}
			chip.InjectFalling(offset, at)
			at += time.Millisecond
		}
	}()

	err = app.Run("card", "read", "--timeout", "5s")
	h(assert.NoError(t, err))
	h(assert.Contains(t, app.stdout.String(), "Card ID: 1110447364 (0x42301504)"))
}

func TestAppCardSendIntegration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		expErr   string
		expFrame uint32
	}{
		{
			name:     "ok/plain",
			args:     []string{"send", "1110447364"},
			expFrame: 1110447364,
		},
		{
			name:     "ok/parity",
			args:     []string{"send", "1110447364", "--parity"},
			expFrame: wiegand.EncodeParity1301(1110447364),
		},
		{
			name:   "err/invalid_id",
			args:   []string{"send", "not-a-card"},
			expErr: "invalid card ID 'not-a-card'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tctx, cancel, h := newTestContext(t, 10*time.Second)
			defer cancel()

			chip := gpiomock.New()
			app, err := newTestApp(tctx,
				WithGPIOOpener(func(_ int) (gtypes.Chip, error) {
					return chip, nil
				}),
			)
			h(assert.NoError(t, err))

			err = initTestDB(app.ctx, nil)
			h(assert.NoError(t, err))

			args := append([]string{"card"}, tt.args...)
			err = app.Run(args...)

			if tt.expErr != "" {
				h(assert.ErrorContains(t, err, tt.expErr))
				h(assert.Empty(t, chip.Writes()))
				return
			}

			h(assert.NoError(t, err))
			h(assert.Contains(t, app.stdout.String(), "Sent card ID 1110447364"))

			// Each bit is an active pulse followed by a return to idle on
			// the line matching its value.
			expWrites := make([]gpiomock.Write, 0, wiegand.FrameBits*2)
			for i := wiegand.FrameBits - 1; i >= 0; i-- {
				offset := wiegand.DefaultTxD0Pin
				if tt.expFrame>>uint(i)&1 == 1 {
					offset = wiegand.DefaultTxD1Pin
				}
				expWrites = append(expWrites,
					gpiomock.Write{Offset: offset, Value: 1},
					gpiomock.Write{Offset: offset, Value: 0},
				)
			}
			h(assert.Equal(t, expWrites, chip.Writes()))
		})
	}
}
