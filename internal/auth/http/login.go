package http

import (
	"errors"
	"net/http"

	"github.com/aurorahq/standardauth/internal/auth/service"
	"github.com/aurorahq/standardauth/internal/observability/metrics"
	"github.com/aurorahq/standardauth/pkg/httpx"
	"github.com/aurorahq/standardauth/pkg/slogx"
	"github.com/aurorahq/standardauth/pkg/tokenx"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Issuer      *tokenx.Issuer
}

// LoginResponse carries the minted session token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	login := r.FormValue("login")
	password := r.FormValue("password")
	rememberMe := r.FormValue("remember_me") == "true"

	if login == "" || password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "login and password are required")
		return
	}

	seed, err := h.AuthService.Login(ctx, login, password, rememberMe)
	if err != nil {
		metrics.ObserveLogin("failure")
		if errors.Is(err, service.ErrAuthenticationFailed) {
			// One refusal for unknown login, wrong password, disabled account.
			httpx.WriteError(w, http.StatusUnauthorized, "authentication_failed", "Invalid login or password")
			return
		}
		log.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Unable to process login")
		return
	}

	token, err := h.Issuer.Issue(tokenx.Seed{
		UserID:     seed.UserID,
		AccountID:  seed.AccountID,
		Role:       seed.Role.String(),
		RememberMe: seed.RememberMe,
	})
	if err != nil {
		log.Error("session token issue failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Unable to issue session token")
		return
	}

	ttl := h.Issuer.SessionTTL
	if seed.RememberMe {
		ttl = h.Issuer.RememberTTL
	}

	metrics.ObserveLogin("success")
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	})
}
