package sqlite

import (
	"context"

	"github.com/aurorahq/standardauth/internal/auth/domain"
	"github.com/aurorahq/standardauth/internal/auth/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, public_id, tenant_id, role, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	ts := now()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, public_id, tenant_id, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.PublicID, u.TenantID, string(u.Role), ts, ts,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByPublicID(ctx context.Context, publicID string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE public_id = ?`, publicID)
	return scanUser(row)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := s.Scan(&u.ID, &u.PublicID, &u.TenantID, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.ParseRole(role)
	return u, nil
}
