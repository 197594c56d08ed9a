package api

import (
	"log/slog"
	"net/http"
	"time"

	"go.faceguard.dev/faceguard/access"
	actx "go.faceguard.dev/faceguard/app/context"
	"go.faceguard.dev/faceguard/web/server/middleware"
)

// Handler is the API endpoint handler.
type Handler struct {
	appCtx    *actx.Context
	logger    *slog.Logger
	startedAt time.Time
}

// SetupHandlers configures the web API handlers.
func SetupHandlers(appCtx *actx.Context, logger *slog.Logger) http.Handler {
	h := Handler{
		appCtx:    appCtx,
		logger:    logger,
		startedAt: appCtx.TimeSource.Now(),
	}
	mux := http.NewServeMux()
	authn := middleware.Authn(appCtx, logger)

	mux.Handle("GET /status", middleware.Chain(
		authn, middleware.Authz(access.ActionViewStatus, logger),
		http.HandlerFunc(h.StatusGet)))
	mux.Handle("GET /users", middleware.Chain(
		authn, middleware.Authz(access.ActionViewUsers, logger),
		http.HandlerFunc(h.UsersGet)))
	mux.Handle("GET /events", middleware.Chain(
		authn, middleware.Authz(access.ActionViewEvents, logger),
		http.HandlerFunc(h.EventsGet)))

	return mux
}
