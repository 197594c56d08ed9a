package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	actx "go.faceguard.dev/faceguard/app/context"
	api "go.faceguard.dev/faceguard/web/server/api/v1"
	"go.faceguard.dev/faceguard/web/server/middleware"
)

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	logger *slog.Logger
}

// New returns a new web Server instance that will listen on addr. The status
// API is plain HTTP, meant for the appliance's loopback interface.
func New(appCtx *actx.Context, addr string) *Server {
	logger := appCtx.Logger.With("component", "web-server")
	srv := &Server{
		Server: &http.Server{
			Handler:           SetupHandlers(appCtx, logger),
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      time.Minute,
		},
		logger: logger,
	}

	return srv
}

// ListenAndServe starts the HTTP server. It stores the actual listen address,
// which is convenient when the address is dynamically determined by the
// system (e.g. ':0').
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	s.Addr = ln.Addr().String()
	s.logger.Info("started listener", "address", s.Addr)

	//nolint:wrapcheck // This is fine.
	return s.Serve(ln)
}

// SetupHandlers configures the server HTTP handlers.
func SetupHandlers(appCtx *actx.Context, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api.SetupHandlers(appCtx, logger)))

	logMux := middleware.Logger(logger)(mux)
	return logMux
}
