// middleware/recovery.go
package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/logger"
	"github.com/lnwboom/office-assets/utils"
)

// Recovery turns a panic into a 500 JSON response.
func Recovery(log *zap.Logger, tr *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.FromContext(r.Context(), log).Error("panic recovered",
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					utils.RespondWithErrorCode(w, http.StatusInternalServerError, i18n.ServerError, tr.FromRequest(r, i18n.ServerError))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
