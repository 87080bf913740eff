package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/logger"
	"github.com/lnwboom/office-assets/middleware"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
	"github.com/lnwboom/office-assets/service"
	"github.com/lnwboom/office-assets/utils"
)

// Streamer attaches a websocket connection to the audit event stream.
type Streamer interface {
	Serve(conn *websocket.Conn, session models.Session)
}

type AuditHandler struct {
	audit    *service.AuditRecorder
	hub      Streamer
	upgrader websocket.Upgrader
	responder
}

// NewAuditHandler accepts websocket upgrades only from publicURL's origin or
// from clients that send no Origin header.
func NewAuditHandler(audit *service.AuditRecorder, hub Streamer, publicURL string, tr *i18n.Translator, log *zap.Logger) *AuditHandler {
	allowed := strings.TrimRight(publicURL, "/")
	return &AuditHandler{
		audit: audit,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if strings.EqualFold(origin, allowed) {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && strings.EqualFold(u.Host, r.Host)
			},
		},
		responder: responder{tr: tr, log: log},
	}
}

func parseInt64(q url.Values, key string) (int64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, service.ErrValidation
	}
	return n, nil
}

// ListAuditLogs handles GET /api/audit.
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseInt64(q, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	skip, err := parseInt64(q, "skip")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	logs, err := h.audit.List(r.Context(), repository.AuditFilter{
		EntityType: q.Get("entityType"),
		Action:     q.Get("action"),
		Limit:      limit,
		Skip:       skip,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, logs)
}

// Stream upgrades GET /api/ws and hands the connection to the hub.
func (h *AuditHandler) Stream(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.unauthorized(w, r)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logger.FromContext(r.Context(), h.log).Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	logger.FromContext(r.Context(), h.log).Info("websocket client connected",
		zap.String("user_id", session.ID),
		zap.String("role", string(session.Role)),
	)
	h.hub.Serve(conn, session)
}
