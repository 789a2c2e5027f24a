package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aurorahq/standardauth/internal/auth/domain"
	"github.com/aurorahq/standardauth/internal/auth/store"
	"github.com/aurorahq/standardauth/pkg/idx"
)

// DirectoryService is the built-in user-management collaborator. It stands in
// for the host's user module: owning users are resolved or created during
// registration, and deleting a user triggers the account cascade directly
// instead of going through a broadcast event.
type DirectoryService struct {
	Store    store.Store
	Accounts *AccountService
}

var _ UserResolver = (*DirectoryService)(nil)

// ResolveOrCreateUser returns the user with the given public identifier,
// creating a NormalUser record when none exists. Concurrent creates for the
// same public id are serialized by the store's unique index; the loser
// re-reads the winner's row.
func (s *DirectoryService) ResolveOrCreateUser(ctx context.Context, tenantID, publicID string) (domain.User, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return domain.User{}, ErrInvalidInput
	}

	user, err := s.Store.Users().GetUserByPublicID(ctx, publicID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	user = domain.User{
		ID:       idx.New().String(),
		PublicID: publicID,
		TenantID: tenantID,
		Role:     domain.RoleNormalUser,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.Store.Users().GetUserByPublicID(ctx, publicID)
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetUser returns an existing user by id.
func (s *DirectoryService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// DeleteUser removes a user and cascades over their accounts. The cascade
// runs first so an interrupted delete leaves an account-less user rather
// than orphaned accounts. Deleting an already-deleted user is a no-op.
func (s *DirectoryService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.Accounts.CascadeDeleteForUser(ctx, userID); err != nil {
		return err
	}

	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
