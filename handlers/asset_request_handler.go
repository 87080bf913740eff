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

type AssetRequestHandler struct {
	requests *service.AssetRequestService
	responder
}

func NewAssetRequestHandler(requests *service.AssetRequestService, tr *i18n.Translator, log *zap.Logger) *AssetRequestHandler {
	return &AssetRequestHandler{requests: requests, responder: responder{tr: tr, log: log}}
}

func (h *AssetRequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in service.CreateRequestInput
	if err := utils.ParseJSON(w, r, &in); err != nil {
		h.invalidPayload(w, r)
		return
	}
	session, _ := middleware.SessionFromContext(r.Context())

	req, err := h.requests.Create(r.Context(), session, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, req)
}

// ListRequests returns every request for admins and the caller's own otherwise.
func (h *AssetRequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	session, _ := middleware.SessionFromContext(r.Context())

	reqs, err := h.requests.List(r.Context(), session, service.ListRequestsInput{
		Status:      q.Get("status"),
		RequestType: q.Get("requestType"),
		AssetID:     q.Get("assetId"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reqs)
}

func (h *AssetRequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	req, err := h.requests.Get(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, req)
}

func (h *AssetRequestHandler) ProcessRequest(w http.ResponseWriter, r *http.Request) {
	var in service.ProcessRequestInput
	if err := utils.ParseJSON(w, r, &in); err != nil {
		h.invalidPayload(w, r)
		return
	}
	session, _ := middleware.SessionFromContext(r.Context())

	req, err := h.requests.Process(r.Context(), session, mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, req)
}

func (h *AssetRequestHandler) CompleteRequest(w http.ResponseWriter, r *http.Request) {
	var in service.CompleteRequestInput
	if r.ContentLength != 0 {
		if err := utils.ParseJSON(w, r, &in); err != nil {
			h.invalidPayload(w, r)
			return
		}
	}
	session, _ := middleware.SessionFromContext(r.Context())

	req, err := h.requests.Complete(r.Context(), session, mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, req)
}
