package cli

import (
	"strconv"

	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	"go.faceguard.dev/faceguard/db/models"
	"go.faceguard.dev/faceguard/db/types"
)

// The Events command lists recent authentication events.
type Events struct {
	Limit int `default:"20" help:"Maximum number of events to show."`
}

// Run the events command.
func (c *Events) Run(appCtx *actx.Context) error {
	events, err := models.Events(appCtx.DB.NewContext(), appCtx.DB,
		&types.Filter{Limit: c.Limit})
	if err != nil {
		return aerrors.NewWithCause("failed listing events", err)
	}

	data := make([][]string, len(events))
	for i, event := range events {
		score := ""
		if event.Score.Valid {
			score = strconv.FormatInt(event.Score.Int64, 10)
		}
		data[i] = []string{
			event.CreatedAt.Format("2006-01-02 15:04:05"),
			event.CardID, event.UserName,
			string(event.Decision), event.Reason, score,
		}
	}

	if len(data) > 0 {
		header := []string{"Time", "Card ID", "User", "Decision", "Reason", "Score"}
		if err = renderTable(header, data, appCtx.Stdout); err != nil {
			return aerrors.NewWithCause("failed rendering table", err)
		}
	}

	return nil
}
