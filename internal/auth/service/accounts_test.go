package service

import (
	"context"
	"testing"

	"github.com/aurorahq/standardauth/internal/auth/domain"
	"github.com/aurorahq/standardauth/internal/auth/store"
	"github.com/aurorahq/standardauth/internal/auth/store/drivers/sqlite"
	"github.com/aurorahq/standardauth/pkg/cipherx"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	Store     store.Store
	Auth      *AuthService
	Accounts  *AccountService
	Directory *DirectoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	cipher := cipherx.New("fixture-secret")

	accounts := &AccountService{Store: st, Cipher: cipher}
	directory := &DirectoryService{Store: st, Accounts: accounts}
	accounts.Users = directory

	return &fixture{
		Store:     st,
		Auth:      &AuthService{Store: st, Cipher: cipher},
		Accounts:  accounts,
		Directory: directory,
	}
}

func (f *fixture) owner(t *testing.T, ctx context.Context, account domain.Account) domain.Requester {
	t.Helper()
	user, err := f.Store.Users().GetUserByID(ctx, account.UserID)
	require.NoError(t, err)
	return domain.Requester{UserID: user.ID, Role: user.Role}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("creates account and owning user", func(t *testing.T) {
		account, err := f.Accounts.Register(ctx, "tenant-1", "", "alice", "secret1")
		require.NoError(t, err)
		require.NotEmpty(t, account.ID)
		require.NotEmpty(t, account.UserID)
		require.NotEqual(t, "secret1", account.EncryptedPassword)

		user, err := f.Store.Users().GetUserByPublicID(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, account.UserID, user.ID)
		require.Equal(t, domain.RoleNormalUser, user.Role)
	})

	t.Run("duplicate login leaves exactly one row", func(t *testing.T) {
		_, err := f.Accounts.Register(ctx, "tenant-1", "", "alice", "other")
		require.ErrorIs(t, err, ErrAccountExists)

		accounts, err := f.Store.Accounts().ListAccountsByUser(ctx, mustUserID(t, f, ctx, "alice"))
		require.NoError(t, err)
		require.Len(t, accounts, 1)
	})

	t.Run("explicit user id must exist", func(t *testing.T) {
		_, err := f.Accounts.Register(ctx, "tenant-1", "no-such-user", "bob", "pw")
		require.ErrorIs(t, err, ErrCannotCreateAccount)
	})

	t.Run("empty inputs rejected", func(t *testing.T) {
		_, err := f.Accounts.Register(ctx, "tenant-1", "", "", "pw")
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = f.Accounts.Register(ctx, "tenant-1", "", "carol", "")
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	account, err := f.Accounts.Register(ctx, "t", "", "alice", "secret1")
	require.NoError(t, err)

	t.Run("correct credentials yield a seed", func(t *testing.T) {
		seed, err := f.Auth.Login(ctx, "alice", "secret1", true)
		require.NoError(t, err)
		require.Equal(t, account.ID, seed.AccountID)
		require.Equal(t, account.UserID, seed.UserID)
		require.Equal(t, domain.RoleNormalUser, seed.Role)
		require.True(t, seed.RememberMe)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		_, err := f.Auth.Login(ctx, "alice", "secret2", false)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("unknown login fails identically", func(t *testing.T) {
		_, err := f.Auth.Login(ctx, "nobody", "secret1", false)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("disabled account fails identically", func(t *testing.T) {
		stored, err := f.Store.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		stored.Disabled = true
		require.NoError(t, f.Store.Accounts().UpdateAccount(ctx, stored))

		_, err = f.Auth.Login(ctx, "alice", "secret1", false)
		require.ErrorIs(t, err, ErrAuthenticationFailed)

		stored.Disabled = false
		require.NoError(t, f.Store.Accounts().UpdateAccount(ctx, stored))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	account, err := f.Accounts.Register(ctx, "t", "", "alice", "secret1")
	require.NoError(t, err)
	owner := f.owner(t, ctx, account)

	t.Run("empty new password rejected before mutation", func(t *testing.T) {
		_, err := f.Accounts.ChangePassword(ctx, account.ID, "secret1", "", owner)
		require.ErrorIs(t, err, ErrPasswordRejected)
	})

	t.Run("wrong current password leaves ciphertext unchanged", func(t *testing.T) {
		before, err := f.Store.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)

		_, err = f.Accounts.ChangePassword(ctx, account.ID, "not-it", "secret2", owner)
		require.ErrorIs(t, err, ErrWrongCurrentPassword)

		after, err := f.Store.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, before.EncryptedPassword, after.EncryptedPassword)
	})

	t.Run("stranger denied", func(t *testing.T) {
		stranger := domain.Requester{UserID: "someone-else", Role: domain.RoleNormalUser}
		_, err := f.Accounts.ChangePassword(ctx, account.ID, "secret1", "secret2", stranger)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("old password stops working after change", func(t *testing.T) {
		bypassed, err := f.Accounts.ChangePassword(ctx, account.ID, "secret1", "secret2", owner)
		require.NoError(t, err)
		require.False(t, bypassed)

		_, err = f.Auth.Login(ctx, "alice", "secret1", false)
		require.ErrorIs(t, err, ErrAuthenticationFailed)

		seed, err := f.Auth.Login(ctx, "alice", "secret2", false)
		require.NoError(t, err)
		require.Equal(t, account.ID, seed.AccountID)

		got, err := f.Store.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.False(t, got.LastModified.IsZero())
	})

	t.Run("super admin bypasses current password check", func(t *testing.T) {
		admin := domain.Requester{UserID: "admin", Role: domain.RoleSuperAdmin}
		bypassed, err := f.Accounts.ChangePassword(ctx, account.ID, "", "secret3", admin)
		require.NoError(t, err)
		require.True(t, bypassed)

		_, err = f.Auth.Login(ctx, "alice", "secret3", false)
		require.NoError(t, err)
	})

	t.Run("missing account reported as not found", func(t *testing.T) {
		_, err := f.Accounts.ChangePassword(ctx, "missing", "a", "b", owner)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	account, err := f.Accounts.Register(ctx, "t", "", "alice", "pw")
	require.NoError(t, err)
	owner := f.owner(t, ctx, account)

	t.Run("stranger denied, not found for admins", func(t *testing.T) {
		stranger := domain.Requester{UserID: "someone-else", Role: domain.RoleNormalUser}
		require.ErrorIs(t, f.Accounts.Delete(ctx, account.ID, stranger), ErrAccessDenied)

		admin := domain.Requester{Role: domain.RoleTenantAdmin}
		require.ErrorIs(t, f.Accounts.Delete(ctx, "missing", admin), ErrNotFound)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, f.Accounts.Delete(ctx, account.ID, owner))
		require.ErrorIs(t, f.Accounts.Delete(ctx, account.ID, owner), ErrNotFound)
	})
}

func TestCascadeDeleteForUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.Accounts.Register(ctx, "t", "", "alice", "pw")
	require.NoError(t, err)
	_, err = f.Accounts.Register(ctx, "t", first.UserID, "alice-work", "pw")
	require.NoError(t, err)

	require.NoError(t, f.Accounts.CascadeDeleteForUser(ctx, first.UserID))

	remaining, err := f.Store.Accounts().ListAccountsByUser(ctx, first.UserID)
	require.NoError(t, err)
	require.Empty(t, remaining)

	// Second run is a no-op, not an error.
	require.NoError(t, f.Accounts.CascadeDeleteForUser(ctx, first.UserID))
}

func TestUserAccounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	account, err := f.Accounts.Register(ctx, "t", "", "alice", "pw1")
	require.NoError(t, err)
	_, err = f.Accounts.Register(ctx, "t", account.UserID, "alice-work", "pw2")
	require.NoError(t, err)
	owner := f.owner(t, ctx, account)

	t.Run("owner sees id and login only", func(t *testing.T) {
		list, err := f.Accounts.UserAccounts(ctx, account.UserID, owner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "alice", list[0].Login)
		require.Equal(t, "alice-work", list[1].Login)
	})

	t.Run("admin sees any user's accounts", func(t *testing.T) {
		admin := domain.Requester{UserID: "other", Role: domain.RoleTenantAdmin}
		list, err := f.Accounts.UserAccounts(ctx, account.UserID, admin)
		require.NoError(t, err)
		require.Len(t, list, 2)
	})

	t.Run("stranger denied", func(t *testing.T) {
		stranger := domain.Requester{UserID: "other", Role: domain.RoleNormalUser}
		_, err := f.Accounts.UserAccounts(ctx, account.UserID, stranger)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("privileged export attaches plaintext", func(t *testing.T) {
		exports, err := f.Accounts.UserAccountsWithPasswords(ctx, account.UserID)
		require.NoError(t, err)
		require.Len(t, exports, 2)
		require.Equal(t, "pw1", exports[0].Password)
		require.Equal(t, "pw2", exports[1].Password)
	})
}

func TestDirectoryDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	account, err := f.Accounts.Register(ctx, "t", "", "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, f.Directory.DeleteUser(ctx, account.UserID))

	_, err = f.Store.Users().GetUserByID(ctx, account.UserID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.Store.Accounts().GetAccountByID(ctx, account.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Idempotent.
	require.NoError(t, f.Directory.DeleteUser(ctx, account.UserID))
}

func TestAccountUsedToAuthorize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	account, err := f.Accounts.Register(ctx, "t", "", "alice", "pw")
	require.NoError(t, err)

	got, err := f.Auth.AccountUsedToAuthorize(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)

	stored, err := f.Store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	stored.Disabled = true
	require.NoError(t, f.Store.Accounts().UpdateAccount(ctx, stored))

	_, err = f.Auth.AccountUsedToAuthorize(ctx, "alice")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.Auth.AccountUsedToAuthorize(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func mustUserID(t *testing.T, f *fixture, ctx context.Context, publicID string) string {
	t.Helper()
	user, err := f.Store.Users().GetUserByPublicID(ctx, publicID)
	require.NoError(t, err)
	return user.ID
}
