package routes

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/handlers"
	"github.com/lnwboom/office-assets/i18n"
	"github.com/lnwboom/office-assets/middleware"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/utils"
)

// HTTP method groups
var (
	MethodsGetOnly  = []string{http.MethodGet}
	MethodsPostOnly = []string{http.MethodPost}
	MethodsPutOnly  = []string{http.MethodPut}
	MethodsPage     = []string{http.MethodGet, http.MethodHead}
)

// Route grouping constants
const (
	PathAPI     = "/api"
	PathAuth    = "/api/auth"
	PathHealth  = "/health"
	PathMetrics = "/metrics"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Assets    *handlers.AssetHandler
	Requests  *handlers.AssetRequestHandler
	Users     *handlers.UserHandler
	Dashboard *handlers.DashboardHandler
	Audit     *handlers.AuditHandler
	Health    *handlers.HealthHandler
	Static    http.Handler
	Metrics   http.Handler
}

// Options carries the cross-cutting middleware.
type Options struct {
	Auth        *middleware.Auth
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Translator  *i18n.Translator
	Logger      *zap.Logger
	PublicURL   string
}

func notAPI(r *http.Request, _ *mux.RouteMatch) bool {
	return r.URL.Path != PathAPI && !strings.HasPrefix(r.URL.Path, PathAPI+"/")
}

// RegisterRoutes mounts every route on r. Public auth endpoints are
// registered before the gated /api tree so they win the prefix match.
func RegisterRoutes(r *mux.Router, h Handlers, o Options) {
	r.Use(o.Metrics.Handler())

	// ====================
	// INFRASTRUCTURE (Public)
	// ====================
	r.HandleFunc(PathHealth, h.Health.HealthCheck).Methods(MethodsPage...)
	if h.Metrics != nil {
		r.Handle(PathMetrics, h.Metrics).Methods(MethodsGetOnly...)
	}

	// ====================
	// AUTHENTICATION ROUTES (Public, rate limited)
	// ====================
	authRouter := r.PathPrefix(PathAuth).Subrouter()
	authRouter.Use(o.RateLimiter.Middleware)
	authRouter.HandleFunc("/login", h.Auth.Login).Methods(MethodsPostOnly...)
	authRouter.HandleFunc("/logout", h.Auth.Logout).Methods(MethodsPostOnly...)
	authRouter.HandleFunc("/register", h.Auth.Register).Methods(MethodsPostOnly...)
	authRouter.Handle("/session", o.Auth.APIAuth(http.HandlerFunc(h.Auth.Session))).Methods(MethodsGetOnly...)

	// ====================
	// PROTECTED API ROUTES (Any session)
	// ====================
	apiRouter := r.PathPrefix(PathAPI).Subrouter()
	apiRouter.Use(o.Auth.APIAuth)

	apiRouter.HandleFunc("/assets", h.Assets.ListAssets).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets/{id}", h.Assets.GetAsset).Methods(MethodsGetOnly...)

	apiRouter.HandleFunc("/requests", h.Requests.ListRequests).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/requests", h.Requests.CreateRequest).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/requests/{id}", h.Requests.GetRequest).Methods(MethodsGetOnly...)

	apiRouter.HandleFunc("/dashboard/summary", h.Dashboard.Summary).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/ws", h.Audit.Stream).Methods(MethodsGetOnly...)

	// ====================
	// ADMIN ROUTES
	// ====================
	adminRouter := apiRouter.NewRoute().Subrouter()
	adminRouter.Use(o.Auth.RequireRole(models.RoleAdmin))

	adminRouter.HandleFunc("/assets", h.Assets.CreateAsset).Methods(MethodsPostOnly...)
	adminRouter.HandleFunc("/assets/{id}", h.Assets.UpdateAsset).Methods(MethodsPutOnly...)
	adminRouter.HandleFunc("/assets/{id}", h.Assets.DeleteAsset).Methods(http.MethodDelete)

	adminRouter.HandleFunc("/requests/{id}/process", h.Requests.ProcessRequest).Methods(MethodsPutOnly...)
	adminRouter.HandleFunc("/requests/{id}/complete", h.Requests.CompleteRequest).Methods(MethodsPutOnly...)

	adminRouter.HandleFunc("/users", h.Users.ListUsers).Methods(MethodsGetOnly...)
	adminRouter.HandleFunc("/users/{id}", h.Users.UpdateUser).Methods(http.MethodPatch)

	adminRouter.HandleFunc("/audit", h.Audit.ListAuditLogs).Methods(MethodsGetOnly...)

	// ====================
	// PAGES (catch-all, gated)
	// ====================
	if h.Static != nil {
		r.PathPrefix("/").MatcherFunc(notAPI).Methods(MethodsPage...).Handler(o.Auth.PageGate(h.Static))
	}

	notFound := func(w http.ResponseWriter, req *http.Request) {
		utils.RespondWithErrorCode(w, http.StatusNotFound, i18n.NotFound, o.Translator.FromRequest(req, i18n.NotFound))
	}
	r.NotFoundHandler = http.HandlerFunc(notFound)
}

// NewRouter builds the router and wraps it in the global middleware chain.
func NewRouter(h Handlers, o Options) http.Handler {
	r := mux.NewRouter()
	RegisterRoutes(r, h, o)

	var handler http.Handler = r
	handler = middleware.CORS(o.PublicURL)(handler)
	handler = middleware.Recovery(o.Logger, o.Translator)(handler)
	handler = middleware.Logging(o.Logger)(handler)
	handler = middleware.RequestID(handler)
	return handler
}
