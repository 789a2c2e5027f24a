package http

import (
	"net/http"

	"github.com/aurorahq/standardauth/internal/auth/domain"
	"github.com/aurorahq/standardauth/pkg/httpx"
)

// requesterFromRequest rebuilds the caller's identity from the claims the
// authn middleware stored in the request context.
func requesterFromRequest(r *http.Request) domain.Requester {
	return domain.Requester{
		UserID: httpx.UserIDFromContext(r.Context()),
		Role:   domain.ParseRole(httpx.RoleFromContext(r.Context())),
	}
}

// requireTenantAdmin rejects callers below TenantAdmin. Runs after the authn
// middleware, so an unparseable role degrades to Anonymous and is refused.
func requireTenantAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requesterFromRequest(r).Elevated() {
			httpx.WriteError(w, http.StatusForbidden, "access_denied", "administrative role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
