package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/aurorahq/standardauth/internal/auth/domain"
	"github.com/aurorahq/standardauth/internal/auth/store"
	"github.com/aurorahq/standardauth/pkg/cipherx"
	"github.com/aurorahq/standardauth/pkg/idx"
	"github.com/aurorahq/standardauth/pkg/slogx"
)

// UserResolver is the user-management collaborator consumed during
// registration. It is injected as a typed interface; the service never
// reaches into user management any other way.
type UserResolver interface {
	// ResolveOrCreateUser returns the user with the given public identifier,
	// creating one when none exists.
	ResolveOrCreateUser(ctx context.Context, tenantID, publicID string) (domain.User, error)

	// GetUser returns an existing user by id.
	GetUser(ctx context.Context, userID string) (domain.User, error)
}

// AccountService owns the account lifecycle: registration, password change,
// deletion, listing. Authorization decisions are made here from the
// requester's identity and role; the policy itself (who holds which role) is
// the host's concern.
type AccountService struct {
	Store  store.Store
	Cipher *cipherx.Cipher
	Users  UserResolver
}

// Register creates a new credential account. When userID is empty the owning
// user is resolved or created by public identifier derived from the login.
//
// The login-exists probe runs before any user is created so a failed
// registration never leaves an orphaned user behind. The probe is advisory
// only: the store's unique index on login is what actually serializes
// concurrent registrations for the same login.
func (s *AccountService) Register(ctx context.Context, tenantID, userID, login, password string) (domain.Account, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return domain.Account{}, ErrInvalidInput
	}

	taken, err := s.Store.Accounts().LoginExists(ctx, login)
	if err != nil {
		return domain.Account{}, err
	}
	if taken {
		return domain.Account{}, ErrAccountExists
	}

	var user domain.User
	if userID == "" {
		user, err = s.Users.ResolveOrCreateUser(ctx, tenantID, login)
	} else {
		user, err = s.Users.GetUser(ctx, userID)
	}
	if err != nil {
		return domain.Account{}, ErrCannotCreateAccount
	}
	if user.ID == "" {
		return domain.Account{}, ErrCannotCreateAccount
	}

	encrypted, err := s.Cipher.Encrypt(login, password)
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		ID:                idx.New().String(),
		UserID:            user.ID,
		Login:             login,
		EncryptedPassword: encrypted,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrAccountExists
		}
		return domain.Account{}, err
	}

	return account, nil
}

// ChangePassword replaces the stored password after verifying the current
// one. SuperAdmin requesters skip the current-password check; the returned
// bool reports whether the check was bypassed so callers can audit it.
//
// An empty new password is rejected before any read or write. A failed check
// leaves the stored ciphertext untouched.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string, requester domain.Requester) (bool, error) {
	if newPassword == "" {
		return false, ErrPasswordRejected
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	if !s.canManage(account, requester) {
		return false, ErrAccessDenied
	}

	bypassed := requester.Role.AtLeast(domain.RoleSuperAdmin)
	if !bypassed {
		stored, err := s.Cipher.Decrypt(account.Login, account.EncryptedPassword)
		if err != nil {
			return false, ErrWrongCurrentPassword
		}
		if subtle.ConstantTimeCompare([]byte(stored), []byte(currentPassword)) != 1 {
			return false, ErrWrongCurrentPassword
		}
	}

	encrypted, err := s.Cipher.Encrypt(account.Login, newPassword)
	if err != nil {
		return false, err
	}

	account.EncryptedPassword = encrypted
	account.LastModified = time.Now().UTC()
	if err := s.Store.Accounts().UpdateAccount(ctx, account); err != nil {
		return false, err
	}

	return bypassed, nil
}

// Delete removes a single account. The requester must own it or hold an
// administrative role; denial is reported distinctly from absence.
func (s *AccountService) Delete(ctx context.Context, accountID string, requester domain.Requester) error {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !s.canManage(account, requester) {
		return ErrAccessDenied
	}

	if err := s.Store.Accounts().DeleteAccount(ctx, account.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// CascadeDeleteForUser removes every account owned by a user being deleted.
// Individual failures are logged and skipped so one bad row cannot strand
// the rest of the cascade. Running it again after the owner is gone deletes
// nothing and succeeds.
func (s *AccountService) CascadeDeleteForUser(ctx context.Context, userID string) error {
	log := slogx.FromContext(ctx)

	accounts, err := s.Store.Accounts().ListAccountsByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		if err := s.Store.Accounts().DeleteAccount(ctx, account.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error("cascade delete failed for account", "account_id", account.ID, "user_id", userID, "error", err)
		}
	}
	return nil
}

// UserAccounts lists the accounts a user owns as id/login pairs. The
// requester must be the owner or hold an administrative role.
func (s *AccountService) UserAccounts(ctx context.Context, userID string, requester domain.Requester) ([]domain.AccountSummary, error) {
	if requester.UserID != userID && !requester.Elevated() {
		return nil, ErrAccessDenied
	}

	accounts, err := s.Store.Accounts().ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, domain.AccountSummary{ID: account.ID, Login: account.Login})
	}
	return summaries, nil
}

// UserAccountsWithPasswords is the privileged export variant with decrypted
// passwords attached. No authorization happens here; the caller is a trusted
// cross-module integration, not an end user.
func (s *AccountService) UserAccountsWithPasswords(ctx context.Context, userID string) ([]domain.AccountExport, error) {
	log := slogx.FromContext(ctx)

	accounts, err := s.Store.Accounts().ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	exports := make([]domain.AccountExport, 0, len(accounts))
	for _, account := range accounts {
		password, err := s.Cipher.Decrypt(account.Login, account.EncryptedPassword)
		if err != nil {
			// Export what we can; an undecryptable row ships without a secret.
			log.Warn("export: stored password undecryptable", "account_id", account.ID)
			password = ""
		}
		exports = append(exports, domain.AccountExport{ID: account.ID, Login: account.Login, Password: password})
	}
	return exports, nil
}

func (s *AccountService) canManage(account domain.Account, requester domain.Requester) bool {
	if requester.Elevated() {
		return true
	}
	return requester.UserID != "" && requester.UserID == account.UserID
}
