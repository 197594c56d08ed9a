package api

import (
	"net/http"
	"strconv"
	"time"

	"go.faceguard.dev/faceguard/db/models"
	"go.faceguard.dev/faceguard/db/types"
	"go.faceguard.dev/faceguard/web/server/api/util"
	wstypes "go.faceguard.dev/faceguard/web/server/types"
)

// DefaultEventLimit is the number of events returned when no limit is given.
const DefaultEventLimit = 50

// EventInfo describes a single authentication event.
type EventInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	CardID    string    `json:"card_id"`
	User      string    `json:"user,omitempty"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason,omitempty"`
	Score     *int64    `json:"score,omitempty"`
}

// EventsResponse is the response of the GET /events endpoint.
type EventsResponse struct {
	wstypes.Response
	Events []EventInfo `json:"events"`
}

// EventsGet lists authentication events, most recent first. The number of
// returned events can be set with the 'limit' query parameter.
func (h *Handler) EventsGet(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		if limit, err = strconv.Atoi(limitStr); err != nil || limit < 1 {
			_ = util.WriteJSON(w, wstypes.NewBadRequestError("invalid limit"))
			return
		}
	}

	events, err := models.Events(h.appCtx.DB.NewContext(), h.appCtx.DB,
		&types.Filter{Limit: limit})
	if err != nil {
		h.logger.Error("failed loading events", "error", err.Error())
		_ = util.WriteJSON(w, wstypes.NewInternalError("failed loading events"))
		return
	}

	resp := &EventsResponse{
		Response: *wstypes.NewResponse(http.StatusOK, nil),
		Events:   make([]EventInfo, 0, len(events)),
	}
	for _, event := range events {
		info := EventInfo{
			ID:        event.ID,
			CreatedAt: event.CreatedAt,
			CardID:    event.CardID,
			User:      event.UserName,
			Decision:  string(event.Decision),
			Reason:    event.Reason,
		}
		if event.Score.Valid {
			score := event.Score.Int64
			info.Score = &score
		}
		resp.Events = append(resp.Events, info)
	}

	_ = util.WriteJSON(w, resp)
}
