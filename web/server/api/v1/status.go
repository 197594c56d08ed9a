package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.faceguard.dev/faceguard/db/types"
	"go.faceguard.dev/faceguard/web/server/api/util"
	wstypes "go.faceguard.dev/faceguard/web/server/types"
)

// StatusResponse is the response of the GET /status endpoint.
type StatusResponse struct {
	wstypes.Response
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Device  string `json:"device"`
	Users   int    `json:"users"`
	Events  int    `json:"events"`
}

// StatusGet reports the service version, uptime, connected device and record
// counts.
func (h *Handler) StatusGet(w http.ResponseWriter, r *http.Request) {
	resp := &StatusResponse{
		Response: *wstypes.NewResponse(http.StatusOK, nil),
		Version:  h.appCtx.Version.String(),
		Uptime:   h.appCtx.TimeSource.Now().Sub(h.startedAt).Truncate(time.Second).String(),
		Device:   "none",
	}
	if h.appCtx.Device != nil {
		resp.Device = h.appCtx.Device.DeviceType().String()
	}

	ctx := h.appCtx.DB.NewContext()
	var err error
	if resp.Users, err = recordCount(ctx, h.appCtx.DB, "users"); err != nil {
		h.logger.Error("failed counting users", "error", err.Error())
		_ = util.WriteJSON(w, wstypes.NewInternalError("failed counting users"))
		return
	}
	if resp.Events, err = recordCount(ctx, h.appCtx.DB, "events"); err != nil {
		h.logger.Error("failed counting events", "error", err.Error())
		_ = util.WriteJSON(w, wstypes.NewInternalError("failed counting events"))
		return
	}

	_ = util.WriteJSON(w, resp)
}

func recordCount(ctx context.Context, d types.Querier, table string) (int, error) {
	var count int
	err := d.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed counting %s: %w", table, err)
	}

	return count, nil
}
