package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/middleware"
	"github.com/lnwboom/office-assets/service"
	"github.com/lnwboom/office-assets/utils"
)

type UserHandler struct {
	users *service.UserService
	responder
}

func NewUserHandler(users *service.UserService, tr *i18n.Translator, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, responder: responder{tr: tr, log: log}}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := h.users.List(r.Context(), q.Get("role"), q.Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// UpdateUser changes another user's role or status.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateUserInput
	if err := utils.ParseJSON(w, r, &in); err != nil {
		h.invalidPayload(w, r)
		return
	}
	session, _ := middleware.SessionFromContext(r.Context())

	user, err := h.users.Update(r.Context(), session, mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}
