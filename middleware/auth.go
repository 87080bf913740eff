package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/utils"
)

const (
	SessionCookie = "session_token"
	LoginPath     = "/login"
	HomePath      = "/dashboard"
)

// TokenValidator verifies a session token.
type TokenValidator interface {
	Validate(token string) (*utils.Claims, error)
}

// Auth holds the gates guarding pages and API routes.
type Auth struct {
	tokens TokenValidator
	tr     *i18n.Translator
}

func NewAuth(tokens TokenValidator, tr *i18n.Translator) *Auth {
	return &Auth{tokens: tokens, tr: tr}
}

// TokenFromRequest looks for a token in the session cookie, then the
// Authorization header. The token query parameter is only honoured on
// websocket upgrades, where browsers cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

func (a *Auth) session(r *http.Request) (models.Session, bool) {
	claims, err := a.tokens.Validate(TokenFromRequest(r))
	if err != nil {
		return models.Session{}, false
	}
	return claims.Session(), true
}

func (a *Auth) unauthorized(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithErrorCode(w, http.StatusUnauthorized, i18n.Unauthorized, a.tr.FromRequest(r, i18n.Unauthorized))
}

// APIAuth rejects requests without a valid session with 401.
func (a *Auth) APIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := a.session(r)
		if !ok {
			a.unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// PageGate redirects anonymous visitors to the login page and signed-in
// users away from it.
func (a *Auth) PageGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := a.session(r)
		if r.URL.Path == LoginPath {
			if ok {
				http.Redirect(w, r, HomePath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireRole must run after APIAuth.
func (a *Auth) RequireRole(role models.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := SessionFromContext(r.Context())
			if !ok || s.Role != role {
				a.unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
