package wiegand_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.faceguard.dev/faceguard/gpio/mock"
	"go.faceguard.dev/faceguard/wiegand"
)

// injectFrame delivers the 32 bits of value as falling edges with 1ms
// inter-bit spacing, starting at the given timestamp.
func injectFrame(chip *mock.Chip, value uint32, start time.Duration, d0, d1 int) {
	for i := 31; i >= 0; i-- {
		pin := d0
		if value>>i&1 == 1 {
			pin = d1
		}
		chip.InjectFalling(pin, start)
		start += time.Millisecond
	}
}

func TestReaderRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		inject func(chip *mock.Chip)
		exp    []uint32
	}{
		{
			name: "ok/single_frame",
			inject: func(chip *mock.Chip) {
				injectFrame(chip, 0xDEADBEEF, 0, wiegand.DefaultD0Pin, wiegand.DefaultD1Pin)
			},
			exp: []uint32{0xDEADBEEF},
		},
		{
			name: "ok/two_frames_separated_by_gap",
			inject: func(chip *mock.Chip) {
				injectFrame(chip, 1110447364, 0, wiegand.DefaultD0Pin, wiegand.DefaultD1Pin)
				// Second frame starts well past the 30ms gap.
				injectFrame(chip, 1241789444, 200*time.Millisecond, wiegand.DefaultD0Pin, wiegand.DefaultD1Pin)
			},
			exp: []uint32{1110447364, 1241789444},
		},
		{
			name: "ok/short_frame_discarded",
			inject: func(chip *mock.Chip) {
				// 8 bits only, then a valid frame after the gap.
				var ts time.Duration
				for i := 0; i < 8; i++ {
					chip.InjectFalling(wiegand.DefaultD1Pin, ts)
					ts += time.Millisecond
				}
				injectFrame(chip, 42, ts+100*time.Millisecond, wiegand.DefaultD0Pin, wiegand.DefaultD1Pin)
			},
			exp: []uint32{42},
		},
		{
			name: "ok/all_zero_bits",
			inject: func(chip *mock.Chip) {
				injectFrame(chip, 0, 0, wiegand.DefaultD0Pin, wiegand.DefaultD1Pin)
			},
			exp: []uint32{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chip := mock.New()
			reader, err := wiegand.NewReader(chip,
				wiegand.WithLogger(slog.New(slog.DiscardHandler)))
			require.NoError(t, err)
			t.Cleanup(func() { _ = reader.Close() })

			tt.inject(chip)

			for _, exp := range tt.exp {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				value, err := reader.Read(ctx)
				cancel()
				require.NoError(t, err)
				assert.Equal(t, exp, value)
			}
		})
	}
}

func TestReaderReadTimeout(t *testing.T) {
	t.Parallel()

	chip := mock.New()
	reader, err := wiegand.NewReader(chip,
		wiegand.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = reader.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReaderCustomPins(t *testing.T) {
	t.Parallel()

	chip := mock.New()
	reader, err := wiegand.NewReader(chip,
		wiegand.WithDataPins(5, 6),
		wiegand.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	injectFrame(chip, 0xCAFEF00D, 0, 5, 6)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	value, err := reader.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEF00D), value)
}
