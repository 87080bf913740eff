package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/middleware"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/service"
	"github.com/lnwboom/office-assets/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	User      models.Session `json:"user"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type AuthHandler struct {
	auth         *service.AuthService
	tokens       middleware.TokenValidator
	secureCookie bool
	responder
}

func NewAuthHandler(auth *service.AuthService, tokens middleware.TokenValidator, secureCookie bool, tr *i18n.Translator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, secureCookie: secureCookie, responder: responder{tr: tr, log: log}}
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.Expires = expires
		c.MaxAge = int(time.Until(expires).Seconds())
	}
	http.SetCookie(w, c)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.ParseJSON(w, r, &req); err != nil {
		h.invalidPayload(w, r)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.setCookie(w, res.Token, res.ExpiresAt)
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, "", time.Time{})
	utils.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: h.message(r, i18n.LoggedOut)})
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.Validate(middleware.TokenFromRequest(r))
	if err != nil {
		h.unauthorized(w, r)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, SessionResponse{User: claims.Session(), ExpiresAt: claims.ExpiresAt.Time})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := utils.ParseJSON(w, r, &in); err != nil {
		h.invalidPayload(w, r)
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, RegisterResponse{Message: h.message(r, i18n.RegisterSucceeded), User: user})
}
