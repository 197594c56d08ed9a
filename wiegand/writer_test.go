package wiegand_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.faceguard.dev/faceguard/gpio/mock"
	"go.faceguard.dev/faceguard/wiegand"
)

// decodeWrites reconstructs the transmitted frame from the recorded output
// writes: each bit is an active/idle pair on D0 (zero) or D1 (one).
func decodeWrites(t *testing.T, writes []mock.Write, d0, d1 int) uint32 {
	t.Helper()
	require.Equal(t, 0, len(writes)%2, "writes must come in active/idle pairs")

	var value uint32
	for i := 0; i < len(writes); i += 2 {
		active, idle := writes[i], writes[i+1]
		require.Equal(t, active.Offset, idle.Offset)
		require.Equal(t, 1, active.Value)
		require.Equal(t, 0, idle.Value)

		value <<= 1
		switch active.Offset {
		case d1:
			value |= 1
		case d0:
		default:
			t.Fatalf("write on unexpected offset %d", active.Offset)
		}
	}
	return value
}

func TestWriterSendW32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value uint32
	}{
		{name: "ok/pattern", value: 0xDEADBEEF},
		{name: "ok/zero", value: 0},
		{name: "ok/all_ones", value: 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chip := mock.New()
			writer, err := wiegand.NewWriter(chip,
				// Keep the test fast; the writer clamps to hardware minimums.
				wiegand.WithPulseWidth(time.Microsecond),
				wiegand.WithBitSpacing(time.Microsecond),
			)
			require.NoError(t, err)
			t.Cleanup(func() { _ = writer.Close() })

			// Claiming the lines drives them idle once each; skip those writes.
			claimed := len(chip.Writes())

			require.NoError(t, writer.SendW32(tt.value))

			writes := chip.Writes()[claimed:]
			assert.Len(t, writes, wiegand.FrameBits*2)
			assert.Equal(t, tt.value,
				decodeWrites(t, writes, wiegand.DefaultTxD0Pin, wiegand.DefaultTxD1Pin))
		})
	}
}

func TestWriterSendW32Parity(t *testing.T) {
	t.Parallel()

	chip := mock.New()
	writer, err := wiegand.NewWriter(chip,
		wiegand.WithPulseWidth(time.Microsecond),
		wiegand.WithBitSpacing(time.Microsecond),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	claimed := len(chip.Writes())

	require.NoError(t, writer.SendW32Parity(42))

	frame := decodeWrites(t, chip.Writes()[claimed:],
		wiegand.DefaultTxD0Pin, wiegand.DefaultTxD1Pin)
	data, ok := wiegand.DecodeParity1301(frame)
	assert.True(t, ok)
	assert.Equal(t, uint32(42), data)
}

func TestWriterActiveLow(t *testing.T) {
	t.Parallel()

	chip := mock.New()
	writer, err := wiegand.NewWriter(chip,
		wiegand.WithActiveHigh(false),
		wiegand.WithPulseWidth(time.Microsecond),
		wiegand.WithBitSpacing(time.Microsecond),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	// Idle level is 1 when active-low.
	assert.Equal(t, 1, chip.Value(wiegand.DefaultTxD0Pin))
	assert.Equal(t, 1, chip.Value(wiegand.DefaultTxD1Pin))

	claimed := len(chip.Writes())
	require.NoError(t, writer.SendW32(1))

	writes := chip.Writes()[claimed:]
	require.Len(t, writes, wiegand.FrameBits*2)
	// Active pulse drives the line to 0.
	assert.Equal(t, 0, writes[0].Value)
	assert.Equal(t, 1, writes[1].Value)
}

func TestWriterClosed(t *testing.T) {
	t.Parallel()

	chip := mock.New()
	writer, err := wiegand.NewWriter(chip)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close()) // idempotent

	err = writer.SendW32(1)
	assert.ErrorContains(t, err, "closed")
}

func TestWriterClaimFailure(t *testing.T) {
	t.Parallel()

	chip := mock.New()
	chip.SetFailError(errors.New("line busy"))

	_, err := wiegand.NewWriter(chip)
	require.Error(t, err)
	assert.ErrorContains(t, err, "line busy")
}
