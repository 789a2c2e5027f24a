package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/aurorahq/standardauth/internal/auth/domain"
	"github.com/aurorahq/standardauth/internal/auth/store"
	"github.com/aurorahq/standardauth/pkg/cipherx"
	"github.com/aurorahq/standardauth/pkg/slogx"
)

// AuthService verifies login/password credentials and produces the session
// seed handed to the token issuer. It never mints tokens itself.
type AuthService struct {
	Store  store.Store
	Cipher *cipherx.Cipher
}

// Login checks the credential pair and returns a session seed on success.
// Every miss, including a disabled account, surfaces as
// ErrAuthenticationFailed with no further detail.
func (s *AuthService) Login(ctx context.Context, login, password string, rememberMe bool) (domain.SessionSeed, error) {
	log := slogx.FromContext(ctx)

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return domain.SessionSeed{}, ErrAuthenticationFailed
	}

	account, err := s.Store.Accounts().GetAccountByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.SessionSeed{}, ErrAuthenticationFailed
		}
		return domain.SessionSeed{}, err
	}

	if account.Disabled {
		return domain.SessionSeed{}, ErrAuthenticationFailed
	}

	stored, err := s.Cipher.Decrypt(account.Login, account.EncryptedPassword)
	if err != nil {
		// Undecryptable ciphertext is a failed credential check, not a crash.
		log.Warn("stored password undecryptable", "account_id", account.ID)
		return domain.SessionSeed{}, ErrAuthenticationFailed
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return domain.SessionSeed{}, ErrAuthenticationFailed
	}

	role := domain.RoleAnonymous
	if account.UserID != "" {
		user, err := s.Store.Users().GetUserByID(ctx, account.UserID)
		switch {
		case err == nil:
			role = user.Role
		case errors.Is(err, store.ErrNotFound):
			// Orphaned account; the housekeeping sweep will collect it, but
			// until then the credential itself is still valid.
			log.Warn("account owner missing", "account_id", account.ID, "user_id", account.UserID)
		default:
			return domain.SessionSeed{}, err
		}
	}

	return domain.SessionSeed{
		UserID:     account.UserID,
		AccountID:  account.ID,
		Role:       role,
		RememberMe: rememberMe,
	}, nil
}

// AccountUsedToAuthorize returns the account a login would authenticate
// against, skipping disabled records. Used by privileged host integrations
// that need to know which credential record backs a login.
func (s *AuthService) AccountUsedToAuthorize(ctx context.Context, login string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNotFound
		}
		return domain.Account{}, err
	}
	if account.Disabled {
		return domain.Account{}, ErrNotFound
	}
	return account, nil
}
