package guard

import (
	"log/slog"
	"time"
)

// Default guard timing parameters.
const (
	DefaultPollTimeout = 500 * time.Millisecond
	DefaultCooldown    = 2 * time.Second
)

// Option is a function that allows configuring the Guard.
type Option func(*Guard) error

// WithWriter sets the Wiegand transmitter used to forward accepted card IDs
// to the door controller. Without a writer access is still decided and
// recorded, but the door is not signalled.
func WithWriter(writer CardWriter) Option {
	return func(g *Guard) error {
		g.writer = writer
		return nil
	}
}

// WithFeedback sets the LED feedback used to signal decisions.
func WithFeedback(feedback *Feedback) Option {
	return func(g *Guard) error {
		g.feedback = feedback
		return nil
	}
}

// WithPollTimeout sets the timeout of a single card read attempt.
func WithPollTimeout(timeout time.Duration) Option {
	return func(g *Guard) error {
		g.pollTimeout = timeout
		return nil
	}
}

// WithCooldown sets the period during which repeated reads of the same card
// are ignored.
func WithCooldown(cooldown time.Duration) Option {
	return func(g *Guard) error {
		g.cooldown = cooldown
		return nil
	}
}

// WithParity wraps transmitted card IDs in a parity frame.
func WithParity(parity bool) Option {
	return func(g *Guard) error {
		g.parity = parity
		return nil
	}
}

// WithTimeNow sets the time source used by the Guard.
func WithTimeNow(timeNow func() time.Time) Option {
	return func(g *Guard) error {
		g.timeNow = timeNow
		return nil
	}
}

// WithLogger sets the logger used by the Guard.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) error {
		g.logger = logger.With("component", "guard")
		return nil
	}
}

// DefaultOptions returns the default Guard options.
func DefaultOptions() []Option {
	return []Option{
		WithPollTimeout(DefaultPollTimeout),
		WithCooldown(DefaultCooldown),
		WithTimeNow(time.Now),
		WithLogger(slog.Default()),
	}
}
