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

type AssetHandler struct {
	assets *service.AssetService
	responder
}

func NewAssetHandler(assets *service.AssetService, tr *i18n.Translator, log *zap.Logger) *AssetHandler {
	return &AssetHandler{assets: assets, responder: responder{tr: tr, log: log}}
}

// ListAssets returns the filtered, sorted assets with status counts.
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.assets.List(r.Context(), service.ListAssetsInput{
		SortField: q.Get("sortField"),
		SortOrder: q.Get("sortOrder"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		DateField: q.Get("dateField"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAssetInput
	if err := utils.ParseJSON(w, r, &in); err != nil {
		h.invalidPayload(w, r)
		return
	}
	session, _ := middleware.SessionFromContext(r.Context())

	asset, err := h.assets.Create(r.Context(), session, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateAssetInput
	if err := utils.ParseJSON(w, r, &in); err != nil {
		h.invalidPayload(w, r)
		return
	}
	session, _ := middleware.SessionFromContext(r.Context())

	asset, err := h.assets.Update(r.Context(), session, mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	if err := h.assets.Delete(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: h.message(r, i18n.AssetDeleted)})
}
