package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aurorahq/standardauth/internal/auth/domain"
	"github.com/aurorahq/standardauth/internal/auth/service"
	"github.com/aurorahq/standardauth/internal/auth/store/drivers/sqlite"
	"github.com/aurorahq/standardauth/pkg/cipherx"
	"github.com/aurorahq/standardauth/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	Router   *Router
	Issuer   *tokenx.Issuer
	Accounts *service.AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	cipher := cipherx.New("handler-test-secret")
	accounts := &service.AccountService{Store: st, Cipher: cipher}
	directory := &service.DirectoryService{Store: st, Accounts: accounts}
	accounts.Users = directory

	issuer := &tokenx.Issuer{
		Secret:      []byte("handler-test-token-secret"),
		Issuer:      "standardauth-test",
		SessionTTL:  time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
	}

	router := NewRouter(issuer, "test", st, slog.New(slog.DiscardHandler))
	router.AuthService = &service.AuthService{Store: st, Cipher: cipher}
	router.AccountService = accounts
	router.DirectoryService = directory
	router.ApplyRoutes()

	return &testEnv{Router: router, Issuer: issuer, Accounts: accounts}
}

func (e *testEnv) token(t *testing.T, userID string, role domain.Role) string {
	t.Helper()
	token, err := e.Issuer.Issue(tokenx.Seed{UserID: userID, AccountID: "acct", Role: role.String()})
	require.NoError(t, err)
	return token
}

func (e *testEnv) postForm(path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) do(method, path, token string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Accounts.Register(ctx, "t", "", "alice", "secret1")
	require.NoError(t, err)

	t.Run("success mints a bearer token", func(t *testing.T) {
		rec := env.postForm("/v1/login", "", url.Values{
			"login":    {"alice"},
			"password": {"secret1"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Bearer", resp.TokenType)
		require.EqualValues(t, 3600, resp.ExpiresIn)

		claims, err := env.Issuer.Verify(resp.AccessToken)
		require.NoError(t, err)
		require.Equal(t, domain.RoleNormalUser.String(), claims.Role)
	})

	t.Run("remember me extends expiry", func(t *testing.T) {
		rec := env.postForm("/v1/login", "", url.Values{
			"login":       {"alice"},
			"password":    {"secret1"},
			"remember_me": {"true"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.EqualValues(t, 30*24*3600, resp.ExpiresIn)
	})

	t.Run("bad credentials and unknown login look the same", func(t *testing.T) {
		wrongPw := env.postForm("/v1/login", "", url.Values{
			"login":    {"alice"},
			"password": {"nope"},
		})
		unknown := env.postForm("/v1/login", "", url.Values{
			"login":    {"bob"},
			"password": {"nope"},
		})
		require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
		require.Equal(t, http.StatusUnauthorized, unknown.Code)
		require.JSONEq(t, wrongPw.Body.String(), unknown.Body.String())
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		rec := env.postForm("/v1/login", "", url.Values{"login": {"alice"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateAccountEndpoint(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"tenant_id": {"t1"},
		"login":     {"bob"},
		"password":  {"pw"},
	}

	t.Run("requires bearer token", func(t *testing.T) {
		rec := env.postForm("/v1/accounts", "", form)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("requires administrative role", func(t *testing.T) {
		rec := env.postForm("/v1/accounts", env.token(t, "u1", domain.RoleNormalUser), form)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin creates account", func(t *testing.T) {
		rec := env.postForm("/v1/accounts", env.token(t, "admin", domain.RoleTenantAdmin), form)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp CreateAccountResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "bob", resp.Login)
		require.NotEmpty(t, resp.AccountID)
		require.NotEmpty(t, resp.UserID)
	})

	t.Run("duplicate login conflicts", func(t *testing.T) {
		rec := env.postForm("/v1/accounts", env.token(t, "admin", domain.RoleTenantAdmin), form)
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestPasswordAndDeleteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account, err := env.Accounts.Register(ctx, "t", "", "alice", "secret1")
	require.NoError(t, err)
	ownerToken := env.token(t, account.UserID, domain.RoleNormalUser)

	t.Run("owner changes password", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/v1/accounts/"+account.ID+"/password", ownerToken, url.Values{
			"current_password": {"secret1"},
			"new_password":     {"secret2"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		login := env.postForm("/v1/login", "", url.Values{
			"login":    {"alice"},
			"password": {"secret2"},
		})
		require.Equal(t, http.StatusOK, login.Code)
	})

	t.Run("wrong current password refused", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/v1/accounts/"+account.ID+"/password", ownerToken, url.Values{
			"current_password": {"stale"},
			"new_password":     {"secret3"},
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		rec := env.do(http.MethodDelete, "/v1/accounts/"+account.ID, env.token(t, "stranger", domain.RoleNormalUser), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner deletes, then not found", func(t *testing.T) {
		rec := env.do(http.MethodDelete, "/v1/accounts/"+account.ID, ownerToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(http.MethodDelete, "/v1/accounts/"+account.ID, ownerToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListUserAccountsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account, err := env.Accounts.Register(ctx, "t", "", "alice", "pw")
	require.NoError(t, err)

	t.Run("owner lists own accounts", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/users/"+account.UserID+"/accounts", env.token(t, account.UserID, domain.RoleNormalUser), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []domain.AccountSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		require.Equal(t, "alice", list[0].Login)
	})

	t.Run("stranger denied", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/users/"+account.UserID+"/accounts", env.token(t, "stranger", domain.RoleNormalUser), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "ok", resp.Checks.Database)
}
