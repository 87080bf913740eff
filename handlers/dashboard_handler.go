package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/service"
	"github.com/lnwboom/office-assets/utils"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
	responder
}

func NewDashboardHandler(dashboard *service.DashboardService, tr *i18n.Translator, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, responder: responder{tr: tr, log: log}}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summary)
}
