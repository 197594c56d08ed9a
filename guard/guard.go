// Package guard runs the access control pipeline: it monitors the Wiegand
// card reader, verifies the cardholder's face against their enrolled
// faceprints, and on success forwards the card ID to the door controller.
package guard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.faceguard.dev/faceguard/db/models"
	"go.faceguard.dev/faceguard/db/types"
	"go.faceguard.dev/faceguard/facedev"
)

// CardReader delivers raw card frames from the Wiegand reader.
type CardReader interface {
	Read(ctx context.Context) (uint32, error)
	Close() error
}

// CardWriter forwards card frames to the door controller.
type CardWriter interface {
	SendW32(value uint32) error
	SendW32Parity(value uint32) error
	Close() error
}

// Result is the outcome of a single authentication attempt.
type Result struct {
	CardID  string
	User    *models.User
	Granted bool
	Reason  string
	Score   sql.NullInt64
}

// Guard coordinates the card reader, the face authentication device and the
// door controller.
type Guard struct {
	querier  types.Querier
	reader   CardReader
	writer   CardWriter
	device   facedev.Authenticator
	feedback *Feedback
	logger   *slog.Logger
	timeNow  func() time.Time

	pollTimeout time.Duration
	cooldown    time.Duration
	parity      bool

	lastCard   uint32
	lastCardAt time.Time
}

// New returns a new Guard instance.
func New(querier types.Querier, reader CardReader, device facedev.Authenticator, opts ...Option) (*Guard, error) {
	if querier == nil {
		return nil, fmt.Errorf("database querier is required")
	}
	if device == nil {
		return nil, fmt.Errorf("face device implementation is required")
	}

	g := &Guard{querier: querier, reader: reader, device: device}

	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Run monitors the card reader until the context is done. Each card read
// triggers the authentication pipeline; repeated reads of the same card
// within the cooldown period are ignored.
func (g *Guard) Run(ctx context.Context) error {
	if g.reader == nil {
		return fmt.Errorf("card reader implementation is required")
	}
	g.logger.Info("guard started")

	for {
		readCtx, cancel := context.WithTimeout(ctx, g.pollTimeout)
		card, err := g.reader.Read(readCtx)
		cancel()
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			if ctx.Err() != nil {
				g.logger.Info("guard stopped")
				return nil
			}
			continue
		case errors.Is(err, context.Canceled):
			g.logger.Info("guard stopped")
			return nil
		case err != nil:
			return fmt.Errorf("failed reading card: %w", err)
		}

		now := g.timeNow()
		if card == g.lastCard && now.Sub(g.lastCardAt) < g.cooldown {
			g.logger.Debug("ignoring repeated card read", "card_id", card)
			continue
		}
		g.lastCard, g.lastCardAt = card, now

		g.AuthenticateCard(ctx, card)
	}
}

// AuthenticateCard runs the authentication pipeline for a single card read:
// user lookup, faceprint extraction and matching, door signalling and event
// recording.
func (g *Guard) AuthenticateCard(ctx context.Context, card uint32) *Result {
	res := &Result{CardID: strconv.FormatUint(uint64(card), 10)}
	logger := g.logger.With("card_id", res.CardID)

	user := &models.User{CardID: res.CardID}
	err := user.Load(ctx, g.querier)
	var noResErr types.NoResultError
	switch {
	case errors.As(err, &noResErr):
		g.deny(ctx, res, "card not registered")
		return res
	case err != nil:
		logger.Error("failed loading user", "error", err)
		g.deny(ctx, res, "user lookup failed")
		return res
	}
	res.User = user
	logger = logger.With("user", user.Name)

	if user.Faceprints == nil {
		g.deny(ctx, res, "no enrolled faceprints")
		return res
	}

	status, probe, err := g.device.ExtractFaceprints(ctx, nil)
	if err != nil {
		logger.Error("failed extracting faceprints", "error", err)
		g.deny(ctx, res, "camera error")
		return res
	}
	if status != facedev.StatusSuccess {
		g.deny(ctx, res, status.String())
		return res
	}
	if probe == nil {
		logger.Error("device reported success without faceprints")
		g.deny(ctx, res, "camera error")
		return res
	}

	match, updated, err := g.device.MatchFaceprints(probe, user.Faceprints)
	if err != nil {
		logger.Error("failed matching faceprints", "error", err)
		g.deny(ctx, res, "match error")
		return res
	}
	res.Score = sql.NullInt64{Int64: int64(match.Score), Valid: true}

	if !match.Success {
		g.deny(ctx, res, "face not recognized")
		return res
	}

	if updated != nil {
		user.Faceprints = updated
		if err = user.Save(ctx, g.querier, true); err != nil {
			logger.Warn("failed saving updated faceprints", "error", err)
		}
	}

	g.grant(ctx, res, card)

	return res
}

// Identify extracts faceprints from the camera and matches them against all
// enrolled users, returning the best match. It is used by the interactive
// authentication mode, where no card read precedes the face check.
func (g *Guard) Identify(ctx context.Context, onHint facedev.HintFunc) (*Result, error) {
	res := &Result{}

	status, probe, err := g.device.ExtractFaceprints(ctx, onHint)
	if err != nil {
		return nil, fmt.Errorf("failed extracting faceprints: %w", err)
	}
	if status != facedev.StatusSuccess {
		res.Reason = status.String()
		return res, nil
	}
	if probe == nil {
		res.Reason = "camera error"
		return res, nil
	}

	users, err := models.Users(ctx, g.querier,
		&types.Filter{Where: "u.faceprints IS NOT NULL"})
	if err != nil {
		return nil, err
	}

	var best *models.User
	bestScore := -1
	for _, user := range users {
		match, _, err := g.device.MatchFaceprints(probe, user.Faceprints)
		if err != nil {
			return nil, fmt.Errorf("failed matching faceprints: %w", err)
		}
		if int(match.Score) > bestScore {
			bestScore = int(match.Score)
			best = nil
			if match.Success {
				best = user
			}
		}
	}

	if bestScore >= 0 {
		res.Score = sql.NullInt64{Int64: int64(bestScore), Valid: true}
	}
	if best != nil {
		res.User = best
		res.CardID = best.CardID
		res.Granted = true
	} else {
		res.Reason = "face not recognized"
	}

	return res, nil
}

// Close releases the hardware resources held by the guard.
func (g *Guard) Close() error {
	var errs []error
	if g.feedback != nil {
		errs = append(errs, g.feedback.Close())
	}
	if g.writer != nil {
		errs = append(errs, g.writer.Close())
	}
	if g.reader != nil {
		errs = append(errs, g.reader.Close())
	}
	errs = append(errs, g.device.Close())

	return errors.Join(errs...)
}

func (g *Guard) grant(ctx context.Context, res *Result, card uint32) {
	res.Granted = true

	if g.writer != nil {
		var err error
		if g.parity {
			err = g.writer.SendW32Parity(card)
		} else {
			err = g.writer.SendW32(card)
		}
		if err != nil {
			g.logger.Error("failed forwarding card to door controller", "error", err)
		}
	}
	if g.feedback != nil {
		if err := g.feedback.Grant(); err != nil {
			g.logger.Warn("failed signalling LEDs", "error", err)
		}
	}

	g.logger.Info("access granted",
		"card_id", res.CardID, "user", res.User.Name, "score", res.Score.Int64)
	g.record(ctx, res)
}

func (g *Guard) deny(ctx context.Context, res *Result, reason string) {
	res.Reason = reason

	if g.feedback != nil {
		if err := g.feedback.Deny(); err != nil {
			g.logger.Warn("failed signalling LEDs", "error", err)
		}
	}

	userName := ""
	if res.User != nil {
		userName = res.User.Name
	}
	g.logger.Info("access denied",
		"card_id", res.CardID, "user", userName, "reason", reason)
	g.record(ctx, res)
}

func (g *Guard) record(ctx context.Context, res *Result) {
	event := &models.Event{
		CardID:   res.CardID,
		Decision: models.DecisionDenied,
		Reason:   res.Reason,
		Score:    res.Score,
	}
	if res.Granted {
		event.Decision = models.DecisionGranted
	}
	if res.User != nil {
		event.UserName = res.User.Name
	}

	if err := event.Save(ctx, g.querier); err != nil {
		g.logger.Error("failed recording event", "error", err)
	}
}
