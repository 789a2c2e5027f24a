package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aurorahq/standardauth/internal/auth/service"
	"github.com/aurorahq/standardauth/internal/auth/store"
	"github.com/aurorahq/standardauth/internal/observability/metrics"
	"github.com/aurorahq/standardauth/pkg/httpx"
	"github.com/aurorahq/standardauth/pkg/slogx"
	"github.com/aurorahq/standardauth/pkg/tokenx"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer       *tokenx.Issuer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService      *service.AuthService
	AccountService   *service.AccountService
	DirectoryService *service.DirectoryService
}

func NewRouter(
	issuer *tokenx.Issuer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.HTTPMetricsMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerAccounts()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{
		AuthService: r.AuthService,
		Issuer:      r.issuer,
	}

	// Rate limited by IP + login form field to slow brute force.
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(h,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "login"),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{AccountService: r.AccountService}

	// POST /v1/accounts - administrative account creation
	r.Mux.Handle("POST /v1/accounts",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.issuer),
			requireTenantAdmin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// PUT /v1/accounts/{id}/password - owner or admin
	r.Mux.Handle("PUT /v1/accounts/{id}/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.issuer),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// DELETE /v1/accounts/{id} - owner or admin
	r.Mux.Handle("DELETE /v1/accounts/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.issuer),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /v1/users/{id}/accounts - owner or admin
	r.Mux.Handle("GET /v1/users/{id}/accounts",
		httpx.Chain(http.HandlerFunc(h.HandleListUserAccounts),
			httpx.AuthnMiddleware(r.issuer),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
