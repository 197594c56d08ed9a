package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alecthomas/kong"

	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
)

// The Card command runs Wiegand hardware checks.
type Card struct {
	Read struct {
		Timeout time.Duration `default:"10s" help:"How long to wait for a card."`
	} `kong:"cmd,help='Wait for a card read and print its ID.'"`
	Send struct {
		ID     string `arg:"" help:"The decimal card ID to transmit."`
		Parity bool   `help:"Wrap the ID in a parity frame."`
	} `kong:"cmd,help='Transmit a card ID to the door controller.'"`
}

// Run the card command.
func (c *Card) Run(kctx *kong.Context, appCtx *actx.Context) error {
	chip, err := openChip(appCtx)
	if err != nil {
		return err
	}
	defer chip.Close()

	switch kctx.Args[1] {
	case "read":
		reader, err := newReader(appCtx, chip)
		if err != nil {
			return err
		}
		defer reader.Close()

		fmt.Fprintln(appCtx.Stdout, "Present a card to the reader...")
		ctx, cancel := context.WithTimeout(appCtx.Ctx, c.Read.Timeout)
		defer cancel()

		card, err := reader.Read(ctx)
		if errors.Is(err, context.DeadlineExceeded) {
			return aerrors.NewWith("no card read",
				"timeout", c.Read.Timeout.String())
		} else if err != nil {
			return err
		}

		fmt.Fprintf(appCtx.Stdout, "Card ID: %d (0x%08X)\n", card, card)
	case "send":
		value, err := strconv.ParseUint(c.Send.ID, 10, 32)
		if err != nil {
			return aerrors.NewWith(fmt.Sprintf("invalid card ID '%s'", c.Send.ID),
				"hint", "card IDs are decimal 32-bit values")
		}

		writer, err := newWriter(appCtx, chip)
		if err != nil {
			return err
		}
		defer writer.Close()

		if c.Send.Parity {
			err = writer.SendW32Parity(uint32(value))
		} else {
			err = writer.SendW32(uint32(value))
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(appCtx.Stdout, "Sent card ID %d\n", value)
	}

	return nil
}
