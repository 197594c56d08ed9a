package api

import (
	"net/http"
	"time"

	"go.faceguard.dev/faceguard/db/models"
	"go.faceguard.dev/faceguard/web/server/api/util"
	wstypes "go.faceguard.dev/faceguard/web/server/types"
)

// UserInfo describes a single enrolled user.
type UserInfo struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	CardID     string    `json:"card_id"`
	Permission string    `json:"permission"`
	Enrolled   bool      `json:"enrolled"`
	CreatedAt  time.Time `json:"created_at"`
}

// UsersResponse is the response of the GET /users endpoint.
type UsersResponse struct {
	wstypes.Response
	Users []UserInfo `json:"users"`
}

// UsersGet lists all enrolled users. Faceprints are never exposed, only
// whether the user has any.
func (h *Handler) UsersGet(w http.ResponseWriter, _ *http.Request) {
	users, err := models.Users(h.appCtx.DB.NewContext(), h.appCtx.DB, nil)
	if err != nil {
		h.logger.Error("failed loading users", "error", err.Error())
		_ = util.WriteJSON(w, wstypes.NewInternalError("failed loading users"))
		return
	}

	resp := &UsersResponse{
		Response: *wstypes.NewResponse(http.StatusOK, nil),
		Users:    make([]UserInfo, 0, len(users)),
	}
	for _, user := range users {
		resp.Users = append(resp.Users, UserInfo{
			ID:         user.ID,
			Name:       user.Name,
			CardID:     user.CardID,
			Permission: string(user.Permission),
			Enrolled:   user.Faceprints != nil,
			CreatedAt:  user.CreatedAt,
		})
	}

	_ = util.WriteJSON(w, resp)
}
