package http

import (
	"errors"
	"net/http"

	"github.com/aurorahq/standardauth/internal/auth/service"
	"github.com/aurorahq/standardauth/internal/observability/metrics"
	"github.com/aurorahq/standardauth/pkg/httpx"
	"github.com/aurorahq/standardauth/pkg/slogx"
)

type AccountsHandler struct {
	AccountService *service.AccountService
}

// CreateAccountResponse returns the identifiers of a freshly registered
// account.
type CreateAccountResponse struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
	Login     string `json:"login"`
}

// ChangePasswordResponse reports a completed password change. Bypassed is
// true when a SuperAdmin changed the password without the current one.
type ChangePasswordResponse struct {
	AccountID string `json:"account_id"`
	Bypassed  bool   `json:"current_password_check_bypassed,omitempty"`
}

// HandleCreate registers a new account on behalf of a user. Administrative
// endpoint; the role gate runs in middleware.
func (h *AccountsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	tenantID := r.FormValue("tenant_id")
	userID := r.FormValue("user_id")
	login := r.FormValue("login")
	password := r.FormValue("password")

	account, err := h.AccountService.Register(ctx, tenantID, userID, login, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "login and password are required")
		case errors.Is(err, service.ErrAccountExists):
			metrics.ObserveAccountOperation("register", "conflict")
			httpx.WriteError(w, http.StatusConflict, "account_exists", "An account with this login already exists")
		case errors.Is(err, service.ErrCannotCreateAccount):
			httpx.WriteError(w, http.StatusUnprocessableEntity, "cannot_create_account", "Owning user could not be resolved")
		default:
			log.Error("account create failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Unable to create account")
		}
		return
	}

	metrics.ObserveAccountOperation("register", "success")
	httpx.WriteJSON(w, http.StatusCreated, CreateAccountResponse{
		AccountID: account.ID,
		UserID:    account.UserID,
		Login:     account.Login,
	})
}

// HandleChangePassword replaces an account's password. Owners must supply
// the current password; SuperAdmins may omit it.
func (h *AccountsHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	accountID := r.PathValue("id")
	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	requester := requesterFromRequest(r)

	bypassed, err := h.AccountService.ChangePassword(ctx, accountID, current, next, requester)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordRejected):
			httpx.WriteError(w, http.StatusBadRequest, "password_rejected", "New password must not be empty")
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Account not found")
		case errors.Is(err, service.ErrAccessDenied):
			metrics.ObserveAccountOperation("change_password", "denied")
			httpx.WriteError(w, http.StatusForbidden, "access_denied", "Not authorized to manage this account")
		case errors.Is(err, service.ErrWrongCurrentPassword):
			metrics.ObserveAccountOperation("change_password", "wrong_current")
			httpx.WriteError(w, http.StatusForbidden, "wrong_current_password", "Current password does not match")
		default:
			log.Error("password change failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Unable to change password")
		}
		return
	}

	metrics.ObserveAccountOperation("change_password", "success")
	httpx.WriteJSON(w, http.StatusOK, ChangePasswordResponse{
		AccountID: accountID,
		Bypassed:  bypassed,
	})
}

// HandleDelete removes a single account.
func (h *AccountsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := r.PathValue("id")
	requester := requesterFromRequest(r)

	if err := h.AccountService.Delete(ctx, accountID, requester); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Account not found")
		case errors.Is(err, service.ErrAccessDenied):
			metrics.ObserveAccountOperation("delete", "denied")
			httpx.WriteError(w, http.StatusForbidden, "access_denied", "Not authorized to delete this account")
		default:
			log.Error("account delete failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Unable to delete account")
		}
		return
	}

	metrics.ObserveAccountOperation("delete", "success")
	w.WriteHeader(http.StatusNoContent)
}

// HandleListUserAccounts lists a user's accounts as id/login pairs.
func (h *AccountsHandler) HandleListUserAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := r.PathValue("id")
	requester := requesterFromRequest(r)

	accounts, err := h.AccountService.UserAccounts(ctx, userID, requester)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			httpx.WriteError(w, http.StatusForbidden, "access_denied", "Not authorized to list this user's accounts")
		default:
			log.Error("account list failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Unable to list accounts")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accounts)
}
