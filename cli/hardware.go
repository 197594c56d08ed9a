package cli

import (
	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	"go.faceguard.dev/faceguard/facedev"
	gtypes "go.faceguard.dev/faceguard/gpio/types"
	"go.faceguard.dev/faceguard/led"
	"go.faceguard.dev/faceguard/wiegand"
)

// openChip opens the configured GPIO chip.
func openChip(appCtx *actx.Context) (gtypes.Chip, error) {
	chip, err := appCtx.GPIOOpen(appCtx.Config.Reader.Chip.V)
	if err != nil {
		return nil, aerrors.NewWithCause("failed opening GPIO chip", err,
			"chip", appCtx.Config.Reader.Chip.V)
	}

	return chip, nil
}

// newReader builds the Wiegand reader from configuration.
func newReader(appCtx *actx.Context, chip gtypes.Chip) (*wiegand.Reader, error) {
	cfg := appCtx.Config.Reader

	return wiegand.NewReader(chip,
		wiegand.WithDataPins(cfg.D0Pin.V, cfg.D1Pin.V),
		wiegand.WithGap(cfg.Gap.V),
		wiegand.WithLogger(appCtx.Logger),
	)
}

// newWriter builds the Wiegand transmitter from configuration.
func newWriter(appCtx *actx.Context, chip gtypes.Chip) (*wiegand.Writer, error) {
	cfg := appCtx.Config.Transmitter

	return wiegand.NewWriter(chip,
		wiegand.WithTxPins(cfg.D0Pin.V, cfg.D1Pin.V),
		wiegand.WithPulseWidth(cfg.Pulse.V),
		wiegand.WithBitSpacing(cfg.Space.V),
		wiegand.WithActiveHigh(cfg.ActiveHigh.V),
	)
}

// newPanel builds the LED panel controller, or returns nil if no panel strip
// is available.
func newPanel(appCtx *actx.Context) (*led.Controller, error) {
	if appCtx.LEDStrip == nil {
		return nil, nil //nolint:nilnil // Absence of a panel is not an error.
	}

	return led.NewController(appCtx.LEDStrip,
		led.WithPixels(appCtx.Config.LED.Pixels.V),
		led.WithFlash(appCtx.Config.LED.Flash.V),
	)
}

// newReaderLEDs builds the discrete reader LEDs from configuration.
func newReaderLEDs(appCtx *actx.Context, chip gtypes.Chip) (*led.ReaderLEDs, error) {
	cfg := appCtx.Config.LED

	return led.NewReaderLEDs(chip, cfg.RedPin.V, cfg.GreenPin.V)
}

// openDevice opens the face authentication device on the configured or
// discovered serial port.
func openDevice(appCtx *actx.Context) (facedev.Authenticator, error) {
	explicit := ""
	if appCtx.Config.Device.Port.Valid {
		explicit = appCtx.Config.Device.Port.V
	}
	port, discovered := facedev.ResolvePort(explicit)
	if discovered {
		appCtx.Logger.Debug("discovered camera port", "port", port)
	}

	device, err := appCtx.DeviceOpen(port)
	if err != nil {
		return nil, aerrors.NewWithCause("failed opening camera device", err, "port", port)
	}

	return device, nil
}
