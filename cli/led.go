package cli

import (
	"fmt"
	"time"

	actx "go.faceguard.dev/faceguard/app/context"
)

// The LED command runs LED hardware checks.
type LED struct {
	Test struct {
		Hold time.Duration `default:"1s" help:"How long to hold each color."`
	} `kong:"cmd,help='Cycle the panel and reader LEDs through their colors.'"`
}

// Run the led command.
func (c *LED) Run(appCtx *actx.Context) error {
	chip, err := openChip(appCtx)
	if err != nil {
		return err
	}
	defer chip.Close()

	panel, err := newPanel(appCtx)
	if err != nil {
		return err
	}
	readerLEDs, err := newReaderLEDs(appCtx, chip)
	if err != nil {
		return err
	}
	defer readerLEDs.Close()

	fmt.Fprintln(appCtx.Stdout, "green")
	if panel != nil {
		if err = panel.Green(); err != nil {
			return err
		}
	}
	if err = readerLEDs.GreenOn(c.Test.Hold); err != nil {
		return err
	}
	time.Sleep(c.Test.Hold)

	fmt.Fprintln(appCtx.Stdout, "red")
	if panel != nil {
		if err = panel.Red(); err != nil {
			return err
		}
	}
	if err = readerLEDs.RedOn(c.Test.Hold); err != nil {
		return err
	}
	time.Sleep(c.Test.Hold)

	fmt.Fprintln(appCtx.Stdout, "off")
	if panel != nil {
		if err = panel.Close(); err != nil {
			return err
		}
	}

	return nil
}
