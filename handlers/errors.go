package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/logger"
	"github.com/lnwboom/office-assets/service"
	"github.com/lnwboom/office-assets/utils"
)

type errorMapping struct {
	err    error
	status int
	key    string
}

var errorMappings = []errorMapping{
	{service.ErrMissingFields, http.StatusBadRequest, i18n.MissingFields},
	{service.ErrValidation, http.StatusBadRequest, i18n.ValidationError},
	{service.ErrDuplicateUsername, http.StatusBadRequest, i18n.DuplicateUsername},
	{service.ErrDuplicateEmail, http.StatusBadRequest, i18n.DuplicateEmail},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, i18n.InvalidCredentials},
	{service.ErrAccountInactive, http.StatusUnauthorized, i18n.AccountInactive},
	{service.ErrAccountPending, http.StatusUnauthorized, i18n.AccountPending},
	{service.ErrUnauthorized, http.StatusUnauthorized, i18n.Unauthorized},
	{service.ErrNotFound, http.StatusNotFound, i18n.NotFound},
	{service.ErrConflict, http.StatusConflict, i18n.Conflict},
}

// responder writes localized JSON errors.
type responder struct {
	tr  *i18n.Translator
	log *zap.Logger
}

func (rs responder) message(r *http.Request, key string) string {
	return rs.tr.FromRequest(r, key)
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := rs.message(r, m.key)
		if m.err == service.ErrValidation {
			if detail := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "); detail != err.Error() {
				msg += ": " + detail
			}
		}
		utils.RespondWithErrorCode(w, m.status, m.key, msg)
		return
	}

	logger.FromContext(r.Context(), rs.log).Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	utils.RespondWithErrorCode(w, http.StatusInternalServerError, i18n.ServerError, rs.message(r, i18n.ServerError))
}

func (rs responder) invalidPayload(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithErrorCode(w, http.StatusBadRequest, i18n.InvalidPayload, rs.message(r, i18n.InvalidPayload))
}

func (rs responder) unauthorized(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithErrorCode(w, http.StatusUnauthorized, i18n.Unauthorized, rs.message(r, i18n.Unauthorized))
}

// MessageResponse is returned by endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}
