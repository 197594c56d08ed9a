package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nrednav/cuid2"

	"go.faceguard.dev/faceguard/db/types"
)

// Decision is the outcome of an authentication attempt.
type Decision string

// Authentication decisions.
const (
	DecisionGranted Decision = "granted"
	DecisionDenied  Decision = "denied"
)

// Event is a record of a single authentication attempt at the door.
type Event struct {
	ID        string
	CreatedAt time.Time
	CardID    string
	UserName  string
	Decision  Decision
	Reason    string
	Score     sql.NullInt64
}

// Save stores the event data in the database. Events are immutable, so unlike
// other models there is no update mode.
func (e *Event) Save(ctx context.Context, d types.Querier) error {
	if e.ID == "" {
		e.ID = cuid2.Generate()
	}
	timeNow := d.TimeNow().UTC()

	insertStmt := `INSERT INTO events
	(id, created_at, card_id, user_name, decision, reason, score)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := d.ExecContext(ctx, insertStmt,
		e.ID, timeNow, e.CardID, e.UserName, string(e.Decision), e.Reason, e.Score)
	if err != nil {
		return types.Err("event", fmt.Sprintf("ID '%s'", e.ID), err)
	}
	e.CreatedAt = timeNow

	return nil
}

// Events returns one or more events from the database, most recent first. An
// optional filter can be passed to limit the results.
func Events(ctx context.Context, d types.Querier, filter *types.Filter) (events []*Event, rerr error) {
	query := `SELECT e.id, e.created_at, e.card_id, e.user_name, e.decision, e.reason, e.score
		FROM events e %s
		ORDER BY e.created_at DESC%s`

	where := "1=1"
	args := []any{}
	limit := ""
	if filter != nil {
		if filter.Where != "" {
			where = filter.Where
			args = filter.Args
		}
		if filter.Limit > 0 {
			limit = fmt.Sprintf(" LIMIT %d", filter.Limit)
		}
	}

	query = fmt.Sprintf(query, fmt.Sprintf("WHERE %s", where), limit)

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "events", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing events rows: %w", err)
		}
	}()

	events = make([]*Event, 0)
	for rows.Next() {
		var (
			e        Event
			decision string
		)
		err = rows.Scan(&e.ID, &e.CreatedAt, &e.CardID, &e.UserName,
			&decision, &e.Reason, &e.Score)
		if err != nil {
			return nil, types.ScanError{ModelName: "event", Err: err}
		}
		e.Decision = Decision(decision)
		events = append(events, &e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over events rows: %w", err)
	}

	return events, nil
}
