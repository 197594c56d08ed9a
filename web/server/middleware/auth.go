package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"go.faceguard.dev/faceguard/access"
	actx "go.faceguard.dev/faceguard/app/context"
	"go.faceguard.dev/faceguard/crypto"
	"go.faceguard.dev/faceguard/db/queries"
	"go.faceguard.dev/faceguard/web/common"
	"go.faceguard.dev/faceguard/web/server/api/util"
	"go.faceguard.dev/faceguard/web/server/types"
)

// Authn authenticates the API client from the bearer token in the
// Authorization header, comparing its hash against the token hash stored in
// the database. The API token is issued during initialization and grants
// admin-level access.
//
// If this fails, a response with status 401 Unauthorized is returned.
// Otherwise the request is allowed to proceed with the client's permission
// level stored in the request context.
func Authn(appCtx *actx.Context, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				_ = util.WriteJSON(w, types.NewUnauthorizedError("missing bearer token"))
				return
			}

			token, err := common.DecodeToken(strings.TrimSpace(tokenStr))
			if err != nil {
				_ = util.WriteJSON(w, types.NewUnauthorizedError("invalid token"))
				return
			}

			storedHash, err := queries.APITokenHash(appCtx.DB.NewContext(), appCtx.DB)
			if err != nil {
				logger.Warn("failed loading API token hash", "error", err.Error())
				_ = util.WriteJSON(w, types.NewUnauthorizedError("invalid token"))
				return
			}

			if subtle.ConstantTimeCompare(crypto.Hash("", token), storedHash) != 1 {
				_ = util.WriteJSON(w, types.NewUnauthorizedError("invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(),
				types.AuthPermissionKey, access.PermissionAdmin)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authz allows the request to proceed only if the authenticated client's
// permission level allows the given action.
func Authz(action string, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			perm, ok := r.Context().Value(types.AuthPermissionKey).(access.Permission)
			if !ok {
				_ = util.WriteJSON(w, types.NewForbiddenError("permission level unknown"))
				return
			}

			allowed, err := perm.Can(action, "*")
			if err != nil {
				logger.Warn("failed checking permission",
					"permission", perm, "action", action, "error", err.Error())
			}
			if !allowed {
				_ = util.WriteJSON(w, types.NewForbiddenError("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
